package service

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/listmasterapp/listmaster/internal/models"
	"github.com/listmasterapp/listmaster/internal/notify"
	"github.com/listmasterapp/listmaster/internal/storage"
)

// ListService handles list lifecycle and sharing endpoints.
type ListService struct {
	store    storage.Store
	notifier notify.Notifier
}

// NewListService creates a new ListService with the given storage backend
// and notifier.
func NewListService(store storage.Store, notifier notify.Notifier) *ListService {
	return &ListService{store: store, notifier: notifier}
}

// RegisterRoutes attaches the list endpoints to mux. All routes assume the
// auth middleware has already populated the request context.
func (s *ListService) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /lists/add_list", s.handleAddList)
	mux.HandleFunc("POST /lists/share_list", s.handleShareList)
	mux.HandleFunc("POST /lists/copy_list", s.handleCopyList)
	mux.HandleFunc("POST /lists/duplicate_list", s.handleDuplicateList)
	mux.HandleFunc("PUT /lists/update_list_title", s.handleUpdateTitle)
	mux.HandleFunc("PUT /lists/update_list_elements", s.handleUpdateElements)
	mux.HandleFunc("DELETE /lists/delete_list", s.handleDeleteList)
	mux.HandleFunc("DELETE /lists/delete_list_share", s.handleRevokeAllShares)
	mux.HandleFunc("DELETE /lists/cancel_share_for_user", s.handleRevokeShare)
	mux.HandleFunc("GET /lists/get_list", s.handleGetList)
	mux.HandleFunc("GET /lists/get_all_user_lists", s.handleGetAllUserLists)
	mux.HandleFunc("GET /lists/get_all_list_users", s.handleGetAllListUsers)
}

type listCreateRequest struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Title    string `json:"title"`
	Elements string `json:"elements"`
}

func (s *ListService) handleAddList(w http.ResponseWriter, r *http.Request) {
	const op = "list_create"
	var req listCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.UserID == "" || req.Title == "" {
		writeInvalid(w, op, "user_id and title are required")
		return
	}
	if !authorized(r, req.UserID) {
		writeUnauthorized(w, op)
		return
	}

	list := &models.List{
		ID:       req.ID,
		Title:    req.Title,
		Elements: req.Elements,
		OwnerID:  req.UserID,
	}
	if err := s.store.CreateList(r.Context(), list); err != nil {
		writeDomainError(w, op, err)
		return
	}

	slog.Info("list created", "list_id", list.ID, "owner_id", list.OwnerID)
	recordOK(op)
	writeJSON(w, http.StatusOK, list)
}

type listShareRequest struct {
	OwnerID      string `json:"user_owner_id"`
	ListID       string `json:"list_id"`
	NewUserEmail string `json:"new_user_email"`
}

func (s *ListService) handleShareList(w http.ResponseWriter, r *http.Request) {
	const op = "list_share"
	var req listShareRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.OwnerID == "" || req.ListID == "" || req.NewUserEmail == "" {
		writeInvalid(w, op, "user_owner_id, list_id and new_user_email are required")
		return
	}
	if !authorized(r, req.OwnerID) {
		writeUnauthorized(w, op)
		return
	}

	target, err := s.store.ShareList(r.Context(), req.ListID, req.NewUserEmail)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}

	s.notifyAboutList(r, req.ListID, req.OwnerID, target.Email, "A list was shared with you", "now has access to")
	slog.Info("list shared", "list_id", req.ListID, "target_user_id", target.ID)
	recordOK(op)
	writeJSON(w, http.StatusOK, statusMessage{Message: "OK"})
}

type listCopyRequest struct {
	OwnerID      string `json:"user_owner_id"`
	ListID       string `json:"list_id"`
	NewUserEmail string `json:"new_user_email"`
	NewListID    string `json:"new_list_id"`
}

func (s *ListService) handleCopyList(w http.ResponseWriter, r *http.Request) {
	const op = "list_copy"
	var req listCopyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.OwnerID == "" || req.ListID == "" || req.NewUserEmail == "" || req.NewListID == "" {
		writeInvalid(w, op, "user_owner_id, list_id, new_user_email and new_list_id are required")
		return
	}
	if !authorized(r, req.OwnerID) {
		writeUnauthorized(w, op)
		return
	}

	target, err := s.store.CopyList(r.Context(), req.ListID, req.NewUserEmail, req.NewListID)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}

	s.notifyAboutList(r, req.ListID, req.OwnerID, target.Email, "A list was copied to you", "received a copy of")
	slog.Info("list copied", "list_id", req.ListID, "new_list_id", req.NewListID, "target_user_id", target.ID)
	recordOK(op)
	writeJSON(w, http.StatusOK, statusMessage{Message: "OK"})
}

type listDuplicateRequest struct {
	UserID    string `json:"user_id"`
	ListID    string `json:"list_id"`
	NewListID string `json:"new_list_id"`
}

func (s *ListService) handleDuplicateList(w http.ResponseWriter, r *http.Request) {
	const op = "list_duplicate"
	var req listDuplicateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.UserID == "" || req.ListID == "" || req.NewListID == "" {
		writeInvalid(w, op, "user_id, list_id and new_list_id are required")
		return
	}
	if !authorized(r, req.UserID) {
		writeUnauthorized(w, op)
		return
	}

	if err := s.store.DuplicateList(r.Context(), req.ListID, req.UserID, req.NewListID); err != nil {
		writeDomainError(w, op, err)
		return
	}

	slog.Info("list duplicated", "list_id", req.ListID, "new_list_id", req.NewListID, "user_id", req.UserID)
	recordOK(op)
	writeJSON(w, http.StatusOK, statusMessage{Message: "OK"})
}

type listUpdateTitleRequest struct {
	UserID string `json:"user_id"`
	ID     string `json:"id"`
	Title  string `json:"title"`
}

func (s *ListService) handleUpdateTitle(w http.ResponseWriter, r *http.Request) {
	const op = "list_update_title"
	var req listUpdateTitleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.UserID == "" || req.ID == "" || req.Title == "" {
		writeInvalid(w, op, "user_id, id and title are required")
		return
	}
	if !authorized(r, req.UserID) {
		writeUnauthorized(w, op)
		return
	}

	if err := s.store.UpdateListTitle(r.Context(), req.ID, req.Title); err != nil {
		writeDomainError(w, op, err)
		return
	}
	recordOK(op)
	writeJSON(w, http.StatusOK, statusMessage{Message: "OK"})
}

type listUpdateElementsRequest struct {
	UserID   string `json:"user_id"`
	ID       string `json:"id"`
	Elements string `json:"elements"`
}

func (s *ListService) handleUpdateElements(w http.ResponseWriter, r *http.Request) {
	const op = "list_update_elements"
	var req listUpdateElementsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.UserID == "" || req.ID == "" {
		writeInvalid(w, op, "user_id and id are required")
		return
	}
	if !authorized(r, req.UserID) {
		writeUnauthorized(w, op)
		return
	}

	if err := s.store.UpdateListElements(r.Context(), req.ID, req.Elements); err != nil {
		writeDomainError(w, op, err)
		return
	}
	recordOK(op)
	writeJSON(w, http.StatusOK, statusMessage{Message: "OK"})
}

func (s *ListService) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	const op = "list_delete"
	userID := r.URL.Query().Get("user_id")
	listID := r.URL.Query().Get("id")
	if userID == "" || listID == "" {
		writeInvalid(w, op, "user_id and id are required")
		return
	}
	if !authorized(r, userID) {
		writeUnauthorized(w, op)
		return
	}

	if err := s.store.DeleteList(r.Context(), listID, userID); err != nil {
		writeDomainError(w, op, err)
		return
	}

	slog.Info("list deleted or left", "list_id", listID, "user_id", userID)
	recordOK(op)
	writeJSON(w, http.StatusOK, statusMessage{Message: "OK"})
}

func (s *ListService) handleRevokeAllShares(w http.ResponseWriter, r *http.Request) {
	const op = "list_revoke_all"
	userID := r.URL.Query().Get("user_id")
	listID := r.URL.Query().Get("list_id")
	if userID == "" || listID == "" {
		writeInvalid(w, op, "user_id and list_id are required")
		return
	}
	if !authorized(r, userID) {
		writeUnauthorized(w, op)
		return
	}

	if err := s.store.RevokeAllShares(r.Context(), listID, userID); err != nil {
		writeDomainError(w, op, err)
		return
	}

	slog.Info("list shares revoked", "list_id", listID, "owner_id", userID)
	recordOK(op)
	writeJSON(w, http.StatusOK, statusMessage{Message: "OK"})
}

func (s *ListService) handleRevokeShare(w http.ResponseWriter, r *http.Request) {
	const op = "list_revoke_one"
	ownerID := r.URL.Query().Get("owner_id")
	targetID := r.URL.Query().Get("user_id")
	listID := r.URL.Query().Get("list_id")
	if ownerID == "" || targetID == "" || listID == "" {
		writeInvalid(w, op, "owner_id, user_id and list_id are required")
		return
	}
	if !authorized(r, ownerID) {
		writeUnauthorized(w, op)
		return
	}

	// Resolve the target's email before the row disappears.
	target, err := s.store.GetUserByID(r.Context(), targetID)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}

	if err := s.store.RevokeShare(r.Context(), listID, targetID); err != nil {
		writeDomainError(w, op, err)
		return
	}

	s.notifyAboutList(r, listID, ownerID, target.Email, "Your access to a list was revoked", "no longer has access to")
	slog.Info("list share revoked", "list_id", listID, "target_user_id", targetID)
	recordOK(op)
	writeJSON(w, http.StatusOK, statusMessage{Message: "OK"})
}

func (s *ListService) handleGetList(w http.ResponseWriter, r *http.Request) {
	const op = "list_get"
	userID := r.URL.Query().Get("user_id")
	listID := r.URL.Query().Get("list_id")
	if userID == "" || listID == "" {
		writeInvalid(w, op, "user_id and list_id are required")
		return
	}
	if !authorized(r, userID) {
		writeUnauthorized(w, op)
		return
	}

	list, err := s.store.GetList(r.Context(), listID, userID)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	recordOK(op)
	writeJSON(w, http.StatusOK, list)
}

func (s *ListService) handleGetAllUserLists(w http.ResponseWriter, r *http.Request) {
	const op = "list_list_all"
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeInvalid(w, op, "user_id is required")
		return
	}
	if !authorized(r, userID) {
		writeUnauthorized(w, op)
		return
	}

	lists, err := s.store.ListsForUser(r.Context(), userID)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	if lists == nil {
		lists = []*models.List{}
	}
	recordOK(op)
	writeJSON(w, http.StatusOK, lists)
}

func (s *ListService) handleGetAllListUsers(w http.ResponseWriter, r *http.Request) {
	const op = "list_members"
	userID := r.URL.Query().Get("user_id")
	listID := r.URL.Query().Get("list_id")
	if userID == "" || listID == "" {
		writeInvalid(w, op, "user_id and list_id are required")
		return
	}
	if !authorized(r, userID) {
		writeUnauthorized(w, op)
		return
	}

	members, err := s.store.ListMembers(r.Context(), listID)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	recordOK(op)
	writeJSON(w, http.StatusOK, members)
}

// notifyAboutList fires a post-commit notification carrying the list title.
// The mutation has already committed; a delivery failure is logged inside
// notify.Async and never surfaces to the caller.
func (s *ListService) notifyAboutList(r *http.Request, listID, requesterID, toEmail, subject, verb string) {
	list, err := s.store.GetList(r.Context(), listID, requesterID)
	title := listID
	if err == nil {
		title = list.Title
	}
	notify.Async(s.notifier, toEmail, subject,
		fmt.Sprintf("Your account %s the list %q.", verb, title))
}
