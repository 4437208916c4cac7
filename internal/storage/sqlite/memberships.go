package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// querier is the subset of *sql.DB and *sql.Tx the ledger primitives need.
// Callers combining a grant or revoke with other mutations pass a
// transaction; single-statement probes may run directly on the pool.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ledger addresses one of the two membership tables. Both ledgers share the
// same shape: a (user_id, resource_id) composite primary key.
type ledger struct {
	table       string
	resourceCol string
}

var (
	listLedger  = ledger{table: "users_lists", resourceCol: "list_id"}
	groupLedger = ledger{table: "users_groups", resourceCol: "group_id"}
)

// grant inserts a membership row. Granting an existing membership is a
// no-op success: INSERT OR IGNORE lets the composite primary key absorb
// both repeated calls and concurrent duplicate grants.
func (l ledger) grant(ctx context.Context, q querier, userID, resourceID string) error {
	query := fmt.Sprintf("INSERT OR IGNORE INTO %s (user_id, %s) VALUES (?, ?)", l.table, l.resourceCol)
	if _, err := q.ExecContext(ctx, query, userID, resourceID); err != nil {
		return fmt.Errorf("failed to grant membership: %w", err)
	}
	return nil
}

// revoke deletes a specific membership row. Reports whether a row was
// actually removed; absence is not an error at this layer.
func (l ledger) revoke(ctx context.Context, q querier, userID, resourceID string) (bool, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE user_id = ? AND %s = ?", l.table, l.resourceCol)
	res, err := q.ExecContext(ctx, query, userID, resourceID)
	if err != nil {
		return false, fmt.Errorf("failed to revoke membership: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// revokeAllExceptOwner deletes every membership row for the resource except
// the owner's. The owner's row is only ever removed by resource deletion.
func (l ledger) revokeAllExceptOwner(ctx context.Context, q querier, resourceID, ownerID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ? AND user_id != ?", l.table, l.resourceCol)
	if _, err := q.ExecContext(ctx, query, resourceID, ownerID); err != nil {
		return fmt.Errorf("failed to revoke memberships: %w", err)
	}
	return nil
}

// revokeAll deletes every membership row for the resource, owner included.
// Used by resource teardown.
func (l ledger) revokeAll(ctx context.Context, q querier, resourceID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", l.table, l.resourceCol)
	if _, err := q.ExecContext(ctx, query, resourceID); err != nil {
		return fmt.Errorf("failed to revoke memberships: %w", err)
	}
	return nil
}

// exists reports whether a membership row is present.
func (l ledger) exists(ctx context.Context, q querier, userID, resourceID string) (bool, error) {
	query := fmt.Sprintf("SELECT user_id FROM %s WHERE user_id = ? AND %s = ?", l.table, l.resourceCol)
	var id string
	err := q.QueryRowContext(ctx, query, userID, resourceID).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to probe membership: %w", err)
	}
	return true, nil
}

// members returns id, name and email of every user holding a membership row
// for the resource.
func (l ledger) members(ctx context.Context, q querier, resourceID string) (*sql.Rows, error) {
	query := fmt.Sprintf(
		"SELECT users.id, users.name, users.email FROM users INNER JOIN %s ON users.id = %s.user_id WHERE %s = ?",
		l.table, l.table, l.resourceCol,
	)
	return q.QueryContext(ctx, query, resourceID)
}
