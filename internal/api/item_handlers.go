package api

import (
	"encoding/json/v2"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tickstack/tickstack-server/internal/domain"
	"github.com/tickstack/tickstack-server/internal/http/response"
	"github.com/tickstack/tickstack-server/internal/store"
)

var errMultiplePredicates = errors.New("at most one of remind, repeat, checked may be given")

// SaveItemRequest represents the request body for upserting a checklist item.
type SaveItemRequest struct {
	Title        string    `json:"title" validate:"required,max=500"`
	DueDate      time.Time `json:"due_date"`
	IsChecked    bool      `json:"is_checked"`
	ShouldRemind bool      `json:"should_remind"`
	ShouldRepeat bool      `json:"should_repeat"`
}

// handleListItems returns the items of one checklist, optionally filtered
// by a boolean flag (?remind=, ?repeat=, ?checked=).
func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")
	if listID == "" {
		response.BadRequest(w, "Checklist ID is required", s.logger)
		return
	}

	pred, err := parseItemPredicate(r)
	if err != nil {
		response.BadRequest(w, err.Error(), s.logger)
		return
	}

	items, err := s.items.FetchItems(r.Context(), listID, pred)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, items, s.logger)
}

// handleGetItem returns one item together with its parent checklist.
func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")
	itemID := chi.URLParam(r, "itemID")
	if listID == "" || itemID == "" {
		response.BadRequest(w, "Checklist and item IDs are required", s.logger)
		return
	}

	item, checklist, err := s.items.FetchItemWithParent(r.Context(), itemID, listID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]any{
		"item":      item,
		"checklist": checklist,
	}, s.logger)
}

// handleSaveItem upserts an item and reconciles its reminder schedule.
func (s *Server) handleSaveItem(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")
	itemID := chi.URLParam(r, "itemID")
	if listID == "" || itemID == "" {
		response.BadRequest(w, "Checklist and item IDs are required", s.logger)
		return
	}

	var req SaveItemRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	item := &domain.ChecklistItem{
		ItemID:       itemID,
		ListID:       listID,
		Title:        req.Title,
		DueDate:      req.DueDate,
		IsChecked:    req.IsChecked,
		ShouldRemind: req.ShouldRemind,
		ShouldRepeat: req.ShouldRepeat,
	}

	if err := s.items.SaveItem(r.Context(), item); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, item, s.logger)
}

// handleDeleteItem removes an item, folding its removal into the parent's
// counters and clearing any reminder schedule.
func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")
	itemID := chi.URLParam(r, "itemID")
	if listID == "" || itemID == "" {
		response.BadRequest(w, "Checklist and item IDs are required", s.logger)
		return
	}

	item, checklist, err := s.items.FetchItemWithParent(r.Context(), itemID, listID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	if err := s.items.DeleteItem(r.Context(), item, checklist); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleNextItemID reserves the next item ID for the principal.
func (s *Server) handleNextItemID(w http.ResponseWriter, r *http.Request) {
	next, err := s.items.NextItemID(r.Context())
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]string{"item_id": next}, s.logger)
}

// parseItemPredicate builds an optional flag filter from query parameters.
// At most one flag may be given.
func parseItemPredicate(r *http.Request) (*store.Predicate, error) {
	params := []struct {
		name  string
		where func(bool) *store.Predicate
	}{
		{"remind", store.WhereRemind},
		{"repeat", store.WhereRepeat},
		{"checked", store.WhereChecked},
	}

	var pred *store.Predicate
	for _, p := range params {
		raw := r.URL.Query().Get(p.name)
		if raw == "" {
			continue
		}
		if pred != nil {
			return nil, errMultiplePredicates
		}
		pred = p.where(raw == "true" || raw == "1")
	}
	return pred, nil
}
