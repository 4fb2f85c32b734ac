package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/storefront-kit/catalog-dashboard/internal/export"
)

// exportCSV streams the selected catalog scope as a CSV download,
// optionally gzip-compressed with ?compress=gzip.
func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	scopeParam := r.URL.Query().Get("scope")
	if scopeParam == "" {
		scopeParam = string(export.ScopeCatalog)
	}
	scope, err := export.ParseScope(scopeParam)
	if err != nil {
		writeError(w, r, err)
		return
	}

	products, err := h.ctrl.ExportProducts(scope)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.Filename(scope, time.Now())))

	if r.URL.Query().Get("compress") == "gzip" {
		w.Header().Set("Content-Encoding", "gzip")
		err = export.WriteCSVGzip(w, products)
	} else {
		err = export.WriteCSV(w, products)
	}
	if err != nil {
		// Headers are already on the wire; all we can do is log.
		zctx.From(r.Context()).Error("Export write failed", zap.Error(err))
	}
}
