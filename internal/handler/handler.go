// Package handler exposes the dashboard controller over HTTP for the
// browser-resident frontend: the derived view, the view controls, the
// create/update workflows, CSV export, and a server-sent-events stream
// of controller events.
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/storefront-kit/catalog-dashboard/internal/catalog"
	"github.com/storefront-kit/catalog-dashboard/internal/dashboard"
	"github.com/storefront-kit/catalog-dashboard/internal/export"
	"github.com/storefront-kit/catalog-dashboard/internal/remote"
	"github.com/storefront-kit/catalog-dashboard/internal/view"
)

// Handler serves the dashboard API.
type Handler struct {
	ctrl *dashboard.Controller
}

// New constructs a Handler around the controller.
func New(ctrl *dashboard.Controller) *Handler {
	return &Handler{ctrl: ctrl}
}

// Routes builds the chi router for the /api surface.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/view", h.getView)
		r.Put("/view/search", h.setSearch)
		r.Put("/view/sort", h.setSort)
		r.Put("/view/page", h.setPage)
		r.Put("/view/page-size", h.setPageSize)
		r.Delete("/view/selection", h.clearSelection)

		r.Get("/products/{id}", h.getProduct)
		r.Put("/products/{id}", h.updateProduct)
		r.Post("/products", h.createProduct)

		r.Get("/categories", h.getCategories)
		r.Get("/export", h.exportCSV)
		r.Get("/events", h.events)
	})
	return r
}

// --- Response shapes ---

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type categoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type productResponse struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Price       float64          `json:"price"`
	Description string           `json:"description"`
	Category    categoryResponse `json:"category"`
	Images      []string         `json:"images"`
	CreatedAt   string           `json:"createdAt,omitempty"`
	UpdatedAt   string           `json:"updatedAt,omitempty"`
}

type sortResponse struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

type viewResponse struct {
	Items      []productResponse `json:"items"`
	Page       int               `json:"page"`
	TotalPages int               `json:"totalPages"`
	PageSize   int               `json:"pageSize"`
	TotalItems int               `json:"totalItems"`
	RangeStart int               `json:"rangeStart"`
	RangeEnd   int               `json:"rangeEnd"`
	Empty      bool              `json:"empty"`
	LoadFailed bool              `json:"loadFailed"`
	SearchTerm string            `json:"searchTerm"`
	Sort       *sortResponse     `json:"sort,omitempty"`
}

func toProductResponse(p catalog.Product) productResponse {
	out := productResponse{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price.InexactFloat64(),
		Description: p.Description,
		Category:    categoryResponse{ID: p.Category.ID, Name: p.Category.Name},
		Images:      p.Images,
	}
	if !p.CreatedAt.IsZero() {
		out.CreatedAt = p.CreatedAt.Format(time.RFC3339)
	}
	if !p.UpdatedAt.IsZero() {
		out.UpdatedAt = p.UpdatedAt.Format(time.RFC3339)
	}
	return out
}

func toViewResponse(v view.View, loadFailed bool) viewResponse {
	items := make([]productResponse, len(v.Items))
	for i, p := range v.Items {
		items[i] = toProductResponse(p)
	}
	out := viewResponse{
		Items:      items,
		Page:       v.Page,
		TotalPages: v.TotalPages,
		PageSize:   v.PageSize,
		TotalItems: v.TotalItems,
		RangeStart: v.RangeStart,
		RangeEnd:   v.RangeEnd,
		Empty:      v.Empty,
		LoadFailed: loadFailed,
		SearchTerm: v.SearchTerm,
	}
	if v.Sort != nil {
		out.Sort = &sortResponse{Field: string(v.Sort.Field), Direction: string(v.Sort.Direction)}
	}
	return out
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &catalog.ValidationError{Field: "body", Reason: "malformed JSON"}
	}
	return nil
}

// writeError maps the domain error taxonomy to HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr   *catalog.ValidationError
		nfErr  *catalog.NotFoundError
		netErr *remote.NetworkError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &nfErr):
		status = http.StatusNotFound
	case errors.As(err, &netErr):
		status = http.StatusBadGateway
	case errors.Is(err, dashboard.ErrSuperseded):
		status = http.StatusConflict
	case errors.Is(err, export.ErrEmptyExport):
		status = http.StatusUnprocessableEntity
	default:
		zctx.From(r.Context()).Error("Unhandled error", zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Code: status, Message: err.Error()})
}
