// Package dashboard implements the controller that owns the view
// state, runs the create/update workflows against the remote catalog,
// and notifies subscribed presentation surfaces of every state change.
package dashboard

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/storefront-kit/catalog-dashboard/internal/catalog"
	"github.com/storefront-kit/catalog-dashboard/internal/export"
	"github.com/storefront-kit/catalog-dashboard/internal/remote"
	"github.com/storefront-kit/catalog-dashboard/internal/view"
)

// CatalogClient is the remote collaborator surface the controller
// depends on.
type CatalogClient interface {
	List(ctx context.Context) ([]catalog.Product, error)
	Categories(ctx context.Context) ([]catalog.Category, error)
	Update(ctx context.Context, id int64, req remote.UpdateRequest) (catalog.Product, error)
	Create(ctx context.Context, req remote.CreateRequest) (catalog.Product, error)
}

// Config holds the controller's tunables.
type Config struct {
	// PageSize is the initial number of rows per page.
	PageSize int
	// SearchDebounce is the quiet period applied to SearchInput.
	SearchDebounce time.Duration
	// TracerProvider and MeterProvider instrument workflows when set.
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// Controller owns one view.State instance. Every entry point takes the
// controller mutex, giving the same run-to-completion semantics as a
// single-threaded event loop. Multiple controllers are fully
// independent; there is no package-level state.
type Controller struct {
	mu         sync.Mutex
	state      *view.State
	categories []catalog.Category
	loadFailed bool
	busy       Busy

	// Generation counters tag in-flight requests per workflow kind.
	// A response whose generation no longer matches is discarded
	// instead of overwriting newer state.
	loadGen   uint64
	updateGen uint64
	createGen uint64

	client    CatalogClient
	notifier  *Notifier
	validate  *validator.Validate
	debounce  *Debouncer
	tracer    trace.Tracer
	mutations metric.Int64Counter
	lg        *zap.Logger
}

// New creates a Controller around the given remote client.
func New(client CatalogClient, lg *zap.Logger, cfg Config) (*Controller, error) {
	if cfg.SearchDebounce <= 0 {
		cfg.SearchDebounce = 300 * time.Millisecond
	}
	tp := cfg.TracerProvider
	if tp == nil {
		tp = tracenoop.NewTracerProvider()
	}
	mp := cfg.MeterProvider
	if mp == nil {
		mp = metricnoop.NewMeterProvider()
	}
	mutations, err := mp.Meter("catalog-dashboard").Int64Counter(
		"dashboard_mutations_total",
		metric.WithDescription("Outcomes of create and update workflows."),
	)
	if err != nil {
		return nil, err
	}
	return &Controller{
		state:     view.NewState(cfg.PageSize),
		client:    client,
		notifier:  NewNotifier(),
		validate:  validator.New(),
		debounce:  NewDebouncer(cfg.SearchDebounce),
		tracer:    tp.Tracer("catalog-dashboard"),
		mutations: mutations,
		lg:        lg,
	}, nil
}

// Subscribe registers a presentation surface for controller events.
func (c *Controller) Subscribe(buffer int) (<-chan Event, func()) {
	return c.notifier.Subscribe(buffer)
}

// View projects the current derived view.
func (c *Controller) View() view.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return view.Project(c.state)
}

// Categories returns the cached category list for the creation form.
func (c *Controller) Categories() []catalog.Category {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.categories)
}

// LoadFailed reports whether the last catalog load failed. It is the
// error state a surface renders instead of an empty table.
func (c *Controller) LoadFailed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadFailed
}

// SearchInput feeds a keystroke-level search term through the
// debouncer; only the last call within the quiet period recomputes the
// filter.
func (c *Controller) SearchInput(term string) {
	c.debounce.Trigger(func() { c.SetSearch(term) })
}

// SetSearch applies the search term immediately and resets pagination.
func (c *Controller) SetSearch(term string) {
	c.mu.Lock()
	c.state.SetSearch(term)
	c.mu.Unlock()
	c.publishView()
}

// ToggleSort applies or flips sorting on the given field.
func (c *Controller) ToggleSort(field view.SortField) {
	c.mu.Lock()
	c.state.ToggleSort(field)
	c.mu.Unlock()
	c.publishView()
}

// SetPage navigates to the given page.
func (c *Controller) SetPage(page int) {
	c.mu.Lock()
	c.state.SetPage(page)
	c.mu.Unlock()
	c.publishView()
}

// SetPageSize changes the rows per page and returns to the first page.
func (c *Controller) SetPageSize(size int) {
	c.mu.Lock()
	c.state.SetPageSize(size)
	c.mu.Unlock()
	c.publishView()
}

// Select opens a detail view for the given product. An identifier
// missing from the local catalog yields a *catalog.NotFoundError and a
// warning notification, with no state change.
func (c *Controller) Select(id int64) (catalog.Product, error) {
	c.mu.Lock()
	p, err := c.state.Select(id)
	c.mu.Unlock()
	if err != nil {
		c.notify(SeverityWarning, err.Error())
		return catalog.Product{}, err
	}
	return p, nil
}

// ClearSelection closes the detail view.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	c.state.ClearSelection()
	c.mu.Unlock()
}

// ExportProducts resolves an export scope against the current state.
// An empty selection yields export.ErrEmptyExport and a warning
// instead of a document.
func (c *Controller) ExportProducts(scope export.Scope) ([]catalog.Product, error) {
	c.mu.Lock()
	var items []catalog.Product
	switch scope {
	case export.ScopePage:
		items = slices.Clone(view.Project(c.state).Items)
	case export.ScopeFiltered:
		items = view.Collect(c.state)
	default:
		items = slices.Clone(c.state.Catalog)
	}
	c.mu.Unlock()

	if len(items) == 0 {
		c.notify(SeverityWarning, "No products to export")
		return nil, export.ErrEmptyExport
	}
	return items, nil
}

// Shutdown cancels pending debounced work.
func (c *Controller) Shutdown() {
	c.debounce.Stop()
}

func (c *Controller) publishView() {
	c.mu.Lock()
	v := view.Project(c.state)
	e := Event{Kind: EventView, View: &v, Busy: c.busy, LoadFailed: c.loadFailed}
	c.mu.Unlock()
	c.notifier.Publish(e)
}

func (c *Controller) notify(severity Severity, message string) {
	c.mu.Lock()
	busy := c.busy
	failed := c.loadFailed
	c.mu.Unlock()
	c.notifier.Publish(Event{
		Kind:       EventNotification,
		Busy:       busy,
		LoadFailed: failed,
		Notification: &Notification{
			ID:       uuid.New(),
			Severity: severity,
			Message:  message,
		},
	})
}

func (c *Controller) countMutation(ctx context.Context, workflow string, ok bool) {
	c.mutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("workflow", workflow),
		attribute.Bool("success", ok),
	))
}
