// Package models defines the core domain entities for ListMaster.
//
// The engine tracks four kinds of rows: Users, Lists, Groups, and the two
// membership ledgers binding users to lists and groups. Ownership is fixed
// at creation: every list and group references exactly one owner, and the
// owner always holds a membership row for it.
//
// List elements are an opaque serialized payload (typically JSON). The
// engine stores and copies them verbatim; it never interprets the contents.
package models
