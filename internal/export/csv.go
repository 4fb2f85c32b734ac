// Package export renders catalog slices as CSV documents for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"

	"github.com/storefront-kit/catalog-dashboard/internal/catalog"
)

// Scope selects which slice of the catalog an export covers.
type Scope string

const (
	// ScopePage exports only the rows visible on the current page.
	ScopePage Scope = "page"
	// ScopeFiltered exports the whole filtered and sorted set.
	ScopeFiltered Scope = "filtered"
	// ScopeCatalog exports the entire catalog in insertion order.
	ScopeCatalog Scope = "catalog"
)

// ErrEmptyExport is returned when the selected scope contains no
// products. Callers surface it as a warning, not a failure.
var ErrEmptyExport = errors.New("nothing to export")

// ParseScope validates a scope string from a request or flag.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopePage, ScopeFiltered, ScopeCatalog:
		return Scope(s), nil
	}
	return "", errors.Errorf("unknown export scope %q", s)
}

// utf8BOM keeps spreadsheet applications from misreading UTF-8 titles.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var header = []string{"ID", "Title", "Price (USD)", "Category", "Description", "Image URL", "Created At"}

// WriteCSV writes the products as a UTF-8 CSV document with a leading
// byte-order marker. Text fields are quoted with internal quotes
// doubled per RFC 4180; numeric fields are written bare.
func WriteCSV(w io.Writer, products []catalog.Product) error {
	if len(products) == 0 {
		return ErrEmptyExport
	}
	if _, err := w.Write(utf8BOM); err != nil {
		return errors.Wrap(err, "write BOM")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "write header")
	}
	for _, p := range products {
		createdAt := ""
		if !p.CreatedAt.IsZero() {
			createdAt = p.CreatedAt.Format(time.RFC3339)
		}
		record := []string{
			strconv.FormatInt(p.ID, 10),
			p.Title,
			p.Price.StringFixed(2),
			p.Category.Name,
			p.Description,
			p.FirstImage(),
			createdAt,
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrapf(err, "write product %d", p.ID)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, "flush csv")
	}
	return nil
}

// WriteCSVGzip writes the CSV document through a parallel gzip writer.
func WriteCSVGzip(w io.Writer, products []catalog.Product) error {
	zw := pgzip.NewWriter(w)
	if err := WriteCSV(zw, products); err != nil {
		_ = zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return errors.Wrap(err, "close gzip writer")
	}
	return nil
}

// Filename builds the download name for an export taken at t.
func Filename(scope Scope, t time.Time) string {
	return fmt.Sprintf("%s_%s.csv", scope, t.Format("20060102_150405"))
}
