package handler

import (
	"net/http"

	"github.com/storefront-kit/catalog-dashboard/internal/catalog"
	"github.com/storefront-kit/catalog-dashboard/internal/view"
)

func (h *Handler) getView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toViewResponse(h.ctrl.View(), h.ctrl.LoadFailed()))
}

func (h *Handler) setSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
		// Debounce routes the term through the controller's quiet
		// period instead of applying it immediately, for surfaces that
		// forward raw keystrokes.
		Debounce bool `json:"debounce"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Debounce {
		h.ctrl.SearchInput(req.Query)
		w.WriteHeader(http.StatusAccepted)
		return
	}
	h.ctrl.SetSearch(req.Query)
	h.getView(w, r)
}

func (h *Handler) setSort(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Field string `json:"field"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	switch view.SortField(req.Field) {
	case view.SortByTitle, view.SortByPrice:
	default:
		writeError(w, r, &catalog.ValidationError{Field: "field", Reason: "must be title or price"})
		return
	}
	h.ctrl.ToggleSort(view.SortField(req.Field))
	h.getView(w, r)
}

func (h *Handler) setPage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Page int `json:"page"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	h.ctrl.SetPage(req.Page)
	h.getView(w, r)
}

func (h *Handler) setPageSize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Size int `json:"size"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Size <= 0 {
		writeError(w, r, &catalog.ValidationError{Field: "size", Reason: "must be a positive number"})
		return
	}
	h.ctrl.SetPageSize(req.Size)
	h.getView(w, r)
}

func (h *Handler) clearSelection(w http.ResponseWriter, r *http.Request) {
	h.ctrl.ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}
