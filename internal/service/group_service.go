package service

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/listmasterapp/listmaster/internal/models"
	"github.com/listmasterapp/listmaster/internal/notify"
	"github.com/listmasterapp/listmaster/internal/storage"
)

// GroupService handles group lifecycle and membership endpoints.
type GroupService struct {
	store    storage.Store
	notifier notify.Notifier
}

// NewGroupService creates a new GroupService with the given storage backend
// and notifier.
func NewGroupService(store storage.Store, notifier notify.Notifier) *GroupService {
	return &GroupService{store: store, notifier: notifier}
}

// RegisterRoutes attaches the group endpoints to mux.
func (s *GroupService) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /groups/add_group", s.handleAddGroup)
	mux.HandleFunc("PUT /groups/update_group_title", s.handleUpdateTitle)
	mux.HandleFunc("DELETE /groups/delete_group", s.handleDeleteGroup)
	mux.HandleFunc("POST /groups/add_group_member", s.handleAddMember)
	mux.HandleFunc("DELETE /groups/delete_group_member", s.handleRemoveMember)
	mux.HandleFunc("GET /groups/get_all_user_groups", s.handleGetAllUserGroups)
	mux.HandleFunc("GET /groups/get_all_group_members", s.handleGetMembers)
}

type groupCreateRequest struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	OwnerID string `json:"owner_id"`
}

func (s *GroupService) handleAddGroup(w http.ResponseWriter, r *http.Request) {
	const op = "group_create"
	var req groupCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.OwnerID == "" || req.Title == "" {
		writeInvalid(w, op, "owner_id and title are required")
		return
	}
	if !authorized(r, req.OwnerID) {
		writeUnauthorized(w, op)
		return
	}

	group := &models.Group{
		ID:      req.ID,
		Title:   req.Title,
		OwnerID: req.OwnerID,
	}
	if err := s.store.CreateGroup(r.Context(), group); err != nil {
		writeDomainError(w, op, err)
		return
	}

	slog.Info("group created", "group_id", group.ID, "owner_id", group.OwnerID)
	recordOK(op)
	writeJSON(w, http.StatusOK, group)
}

type groupUpdateTitleRequest struct {
	UserID string `json:"user_id"`
	ID     string `json:"id"`
	Title  string `json:"title"`
}

func (s *GroupService) handleUpdateTitle(w http.ResponseWriter, r *http.Request) {
	const op = "group_update_title"
	var req groupUpdateTitleRequest
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

	if err := s.store.UpdateGroupTitle(r.Context(), req.ID, req.Title); err != nil {
		writeDomainError(w, op, err)
		return
	}
	recordOK(op)
	writeJSON(w, http.StatusOK, statusMessage{Message: "OK"})
}

func (s *GroupService) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	const op = "group_delete"
	userID := r.URL.Query().Get("user_id")
	groupID := r.URL.Query().Get("group_id")
	if userID == "" || groupID == "" {
		writeInvalid(w, op, "user_id and group_id are required")
		return
	}
	if !authorized(r, userID) {
		writeUnauthorized(w, op)
		return
	}

	if err := s.store.DeleteGroup(r.Context(), groupID, userID); err != nil {
		writeDomainError(w, op, err)
		return
	}

	slog.Info("group deleted", "group_id", groupID, "owner_id", userID)
	recordOK(op)
	writeJSON(w, http.StatusOK, statusMessage{Message: "OK"})
}

type groupMemberAddRequest struct {
	UserID         string `json:"user_id"`
	GroupID        string `json:"group_id"`
	UserToAddEmail string `json:"user_to_add_email"`
}

func (s *GroupService) handleAddMember(w http.ResponseWriter, r *http.Request) {
	const op = "group_add_member"
	var req groupMemberAddRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.UserID == "" || req.GroupID == "" || req.UserToAddEmail == "" {
		writeInvalid(w, op, "user_id, group_id and user_to_add_email are required")
		return
	}
	if !authorized(r, req.UserID) {
		writeUnauthorized(w, op)
		return
	}

	target, err := s.store.AddGroupMember(r.Context(), req.GroupID, req.UserToAddEmail)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}

	s.notifyAboutGroup(r, req.GroupID, target.ID, target.Email, "You were added to a group")
	slog.Info("group member added", "group_id", req.GroupID, "target_user_id", target.ID)
	recordOK(op)
	writeJSON(w, http.StatusOK, statusMessage{Message: "OK"})
}

func (s *GroupService) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	const op = "group_remove_member"
	userID := r.URL.Query().Get("user_id")
	groupID := r.URL.Query().Get("group_id")
	targetID := r.URL.Query().Get("user_to_delete_id")
	if userID == "" || groupID == "" || targetID == "" {
		writeInvalid(w, op, "user_id, group_id and user_to_delete_id are required")
		return
	}
	if !authorized(r, userID) {
		writeUnauthorized(w, op)
		return
	}

	if err := s.store.RemoveGroupMember(r.Context(), groupID, targetID); err != nil {
		writeDomainError(w, op, err)
		return
	}

	slog.Info("group member removed", "group_id", groupID, "target_user_id", targetID)
	recordOK(op)
	writeJSON(w, http.StatusOK, statusMessage{Message: "OK"})
}

func (s *GroupService) handleGetAllUserGroups(w http.ResponseWriter, r *http.Request) {
	const op = "group_list_all"
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeInvalid(w, op, "user_id is required")
		return
	}
	if !authorized(r, userID) {
		writeUnauthorized(w, op)
		return
	}

	groups, err := s.store.GroupsForUser(r.Context(), userID)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	if groups == nil {
		groups = []*models.Group{}
	}
	recordOK(op)
	writeJSON(w, http.StatusOK, groups)
}

func (s *GroupService) handleGetMembers(w http.ResponseWriter, r *http.Request) {
	const op = "group_members"
	userID := r.URL.Query().Get("user_id")
	groupID := r.URL.Query().Get("group_id")
	if userID == "" || groupID == "" {
		writeInvalid(w, op, "user_id and group_id are required")
		return
	}
	if !authorized(r, userID) {
		writeUnauthorized(w, op)
		return
	}

	members, err := s.store.GroupMembers(r.Context(), groupID)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	recordOK(op)
	writeJSON(w, http.StatusOK, members)
}

// notifyAboutGroup fires a post-commit notification carrying the group
// title. The target is a member by the time this runs, so the title is
// resolved through their own group listing; if that fails the id is used.
func (s *GroupService) notifyAboutGroup(r *http.Request, groupID, targetUserID, toEmail, subject string) {
	title := groupID
	if groups, err := s.store.GroupsForUser(r.Context(), targetUserID); err == nil {
		for _, g := range groups {
			if g.ID == groupID {
				title = g.Title
				break
			}
		}
	}
	notify.Async(s.notifier, toEmail, subject,
		fmt.Sprintf("Group %q membership changed for your account.", title))
}
