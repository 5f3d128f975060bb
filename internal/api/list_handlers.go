package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/medialogapp/medialog-server/internal/domain"
	"github.com/medialogapp/medialog-server/internal/http/response"
	"github.com/medialogapp/medialog-server/internal/service"
)

// handleAddToList adds a media item to the caller's list, reconciling type
// and progress along the way.
func (s *Server) handleAddToList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	var req service.AddToListRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	item, err := s.library.AddToList(ctx, userID, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, item, s.logger)
}

// handleGetUserList returns the caller's full list.
func (s *Server) handleGetUserList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := s.library.GetUserList(ctx, getUserID(ctx))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	// An empty list is a list, not an absence.
	if items == nil {
		items = []*domain.ListItem{}
	}
	response.Success(w, items, s.logger)
}

// handleUpdateListItem mutates status, rating, or notes on an owned entry.
func (s *Server) handleUpdateListItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "List item ID is required", s.logger)
		return
	}

	var req service.UpdateListItemRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	item, err := s.library.UpdateListItem(ctx, userID, id, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, item, s.logger)
}

// handleRemoveFromList deletes an owned entry.
func (s *Server) handleRemoveFromList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)

	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "List item ID is required", s.logger)
		return
	}

	if err := s.library.RemoveFromList(ctx, userID, id); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}
