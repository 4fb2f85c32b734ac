package dashboard

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/storefront-kit/catalog-dashboard/internal/catalog"
	"github.com/storefront-kit/catalog-dashboard/internal/remote"
)

// ErrSuperseded is returned when a workflow response arrives after a
// newer submission of the same kind has already been issued. The stale
// response is discarded rather than applied last-writer-wins.
var ErrSuperseded = errors.New("superseded by a newer request")

// UpdateInput holds the editable form fields for a product update.
type UpdateInput struct {
	Title       string   `json:"title" validate:"required"`
	Price       float64  `json:"price" validate:"gte=0"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
}

// CreateInput holds the form fields for a new product.
type CreateInput struct {
	Title       string   `json:"title" validate:"required"`
	Price       float64  `json:"price" validate:"gte=0"`
	Description string   `json:"description"`
	CategoryID  int64    `json:"categoryId" validate:"required,gt=0"`
	Images      []string `json:"images"`
}

// Load fetches the product catalog and the category list concurrently
// and replaces the cached set. A products failure leaves the catalog
// empty and latches the error state; a categories failure only
// produces a warning. The session stays interactive either way.
func (c *Controller) Load(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "dashboard.Load")
	defer span.End()

	c.mu.Lock()
	c.loadGen++
	gen := c.loadGen
	c.busy.Loading = true
	c.mu.Unlock()
	c.publishView()

	var (
		products   []catalog.Product
		categories []catalog.Category
		catErr     error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = c.client.List(gctx)
		return err
	})
	g.Go(func() error {
		categories, catErr = c.client.Categories(gctx)
		return nil
	})
	err := g.Wait()

	c.mu.Lock()
	if gen != c.loadGen {
		c.mu.Unlock()
		return ErrSuperseded
	}
	c.busy.Loading = false
	if err != nil {
		c.state.ReplaceCatalog(nil)
		c.loadFailed = true
		c.mu.Unlock()
		c.lg.Warn("Catalog load failed", zap.Error(err))
		c.notify(SeverityError, "Failed to load catalog: "+err.Error())
		c.publishView()
		return err
	}
	c.loadFailed = false
	c.state.ReplaceCatalog(products)
	if catErr == nil {
		c.categories = categories
	}
	c.mu.Unlock()

	if catErr != nil {
		c.lg.Warn("Category load failed", zap.Error(catErr))
		c.notify(SeverityWarning, "Failed to load categories: "+catErr.Error())
	}
	c.publishView()
	return nil
}

// UpdateProduct runs the update workflow: local validation, remote
// call, then merging the server response into the catalog entry by
// identifier. Search, sort, and pagination survive the merge. On any
// failure the catalog is left untouched.
func (c *Controller) UpdateProduct(ctx context.Context, id int64, in UpdateInput) (catalog.Product, error) {
	ctx, span := c.tracer.Start(ctx, "dashboard.UpdateProduct")
	defer span.End()

	if err := c.validate.Struct(in); err != nil {
		verr := asValidationError(err)
		c.notify(SeverityWarning, verr.Error())
		return catalog.Product{}, verr
	}

	c.mu.Lock()
	if c.state.IndexByID(id) < 0 {
		c.mu.Unlock()
		nfErr := &catalog.NotFoundError{ID: id}
		c.notify(SeverityWarning, nfErr.Error())
		return catalog.Product{}, nfErr
	}
	c.updateGen++
	gen := c.updateGen
	c.busy.Updating = true
	c.mu.Unlock()
	c.publishView()

	resp, err := c.client.Update(ctx, id, remote.UpdateRequest{
		Title:       in.Title,
		Price:       decimal.NewFromFloat(in.Price),
		Description: in.Description,
		Images:      in.Images,
	})

	c.mu.Lock()
	if gen != c.updateGen {
		c.mu.Unlock()
		return catalog.Product{}, ErrSuperseded
	}
	c.busy.Updating = false
	if err != nil {
		c.mu.Unlock()
		c.countMutation(ctx, "update", false)
		c.notify(SeverityError, "Failed to update product: "+err.Error())
		c.publishView()
		return catalog.Product{}, err
	}
	idx := c.state.IndexByID(id)
	if idx < 0 {
		// The catalog was replaced while the request was in flight.
		c.mu.Unlock()
		return catalog.Product{}, ErrSuperseded
	}
	merged := mergeProduct(c.state.Catalog[idx], resp)
	c.state.Catalog[idx] = merged
	c.mu.Unlock()

	c.countMutation(ctx, "update", true)
	c.notify(SeveritySuccess, "Product updated")
	c.publishView()
	return merged, nil
}

// CreateProduct runs the creation workflow. On success the new record
// is prepended to the catalog, pagination returns to the first page,
// and the active sort is cleared so the record is visible at the top.
// On failure the caller keeps its creation surface open for retry.
func (c *Controller) CreateProduct(ctx context.Context, in CreateInput) (catalog.Product, error) {
	ctx, span := c.tracer.Start(ctx, "dashboard.CreateProduct")
	defer span.End()

	if err := c.validate.Struct(in); err != nil {
		verr := asValidationError(err)
		c.notify(SeverityWarning, verr.Error())
		return catalog.Product{}, verr
	}

	c.mu.Lock()
	c.createGen++
	gen := c.createGen
	c.busy.Creating = true
	c.mu.Unlock()
	c.publishView()

	created, err := c.client.Create(ctx, remote.CreateRequest{
		Title:       in.Title,
		Price:       decimal.NewFromFloat(in.Price),
		Description: in.Description,
		CategoryID:  in.CategoryID,
		Images:      in.Images,
	})

	c.mu.Lock()
	if gen != c.createGen {
		c.mu.Unlock()
		return catalog.Product{}, ErrSuperseded
	}
	c.busy.Creating = false
	if err != nil {
		c.mu.Unlock()
		c.countMutation(ctx, "create", false)
		c.notify(SeverityError, "Failed to create product: "+err.Error())
		c.publishView()
		return catalog.Product{}, err
	}
	c.state.Prepend(created)
	c.mu.Unlock()

	c.countMutation(ctx, "create", true)
	c.notify(SeveritySuccess, "Product created")
	c.publishView()
	return created, nil
}

// mergeProduct folds a possibly partial server response into the local
// record. Fields present in the response win; zero-valued response
// fields keep the local value, except the price, which the request
// always carries and the server always echoes.
func mergeProduct(local, resp catalog.Product) catalog.Product {
	out := local
	out.Price = resp.Price
	if resp.Title != "" {
		out.Title = resp.Title
	}
	if resp.Description != "" {
		out.Description = resp.Description
	}
	if resp.Images != nil {
		out.Images = resp.Images
	}
	if resp.Category.ID != 0 {
		out.Category = resp.Category
	}
	if !resp.CreatedAt.IsZero() {
		out.CreatedAt = resp.CreatedAt
	}
	if !resp.UpdatedAt.IsZero() {
		out.UpdatedAt = resp.UpdatedAt
	}
	return out
}

// asValidationError converts a validator/v10 error into the domain
// *catalog.ValidationError with a form-friendly message.
func asValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	reason := "is invalid"
	switch {
	case field == "categoryid":
		return &catalog.ValidationError{Field: "category", Reason: "must be selected"}
	case fe.Tag() == "required":
		reason = "must not be empty"
	case fe.Tag() == "gte" || fe.Tag() == "gt":
		reason = "must be a non-negative number"
	}
	return &catalog.ValidationError{Field: field, Reason: reason}
}
