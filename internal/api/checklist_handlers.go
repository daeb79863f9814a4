package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tickstack/tickstack-server/internal/domain"
	"github.com/tickstack/tickstack-server/internal/http/response"
)

// SaveChecklistRequest represents the request body for upserting a checklist.
// PendingCount can never exceed TotalItems: pending items are a subset of
// all items.
type SaveChecklistRequest struct {
	Title        string `json:"title" validate:"required,max=200"`
	TotalItems   int    `json:"total_items" validate:"gte=0"`
	PendingCount int    `json:"pending_count" validate:"gte=0,ltefield=TotalItems"`
}

// handleListChecklists returns every checklist of the authenticated principal.
func (s *Server) handleListChecklists(w http.ResponseWriter, r *http.Request) {
	checklists, err := s.checklists.FetchChecklists(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, checklists, s.logger)
}

// handleGetChecklist returns a single checklist by ID.
func (s *Server) handleGetChecklist(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")
	if listID == "" {
		response.BadRequest(w, "Checklist ID is required", s.logger)
		return
	}

	checklist, err := s.checklists.FetchChecklist(r.Context(), listID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, checklist, s.logger)
}

// handleSaveChecklist upserts a checklist, fully replacing any existing
// document with the same ID.
func (s *Server) handleSaveChecklist(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")
	if listID == "" {
		response.BadRequest(w, "Checklist ID is required", s.logger)
		return
	}

	var req SaveChecklistRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	checklist := &domain.Checklist{
		ListID:       listID,
		Title:        req.Title,
		TotalItems:   req.TotalItems,
		PendingCount: req.PendingCount,
	}

	if err := s.checklists.SaveChecklist(r.Context(), checklist); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, checklist, s.logger)
}

// handleDeleteChecklist removes a checklist. The item cascade runs in the
// background; this returns as soon as the document itself is gone.
func (s *Server) handleDeleteChecklist(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")
	if listID == "" {
		response.BadRequest(w, "Checklist ID is required", s.logger)
		return
	}

	if err := s.checklists.DeleteChecklist(r.Context(), &domain.Checklist{ListID: listID}); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleNextChecklistID reserves the next checklist ID for the principal.
func (s *Server) handleNextChecklistID(w http.ResponseWriter, r *http.Request) {
	next, err := s.checklists.NextChecklistID(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]string{"list_id": next}, s.logger)
}
