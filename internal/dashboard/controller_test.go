package dashboard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storefront-kit/catalog-dashboard/internal/catalog"
	"github.com/storefront-kit/catalog-dashboard/internal/export"
	"github.com/storefront-kit/catalog-dashboard/internal/remote"
	"github.com/storefront-kit/catalog-dashboard/internal/view"
)

// --- Mock client ---

type mockClient struct {
	mu          sync.Mutex
	products    []catalog.Product
	categories  []catalog.Category
	listErr     error
	catErr      error
	updateErr   error
	createErr   error
	created     catalog.Product
	updateCalls int
	createCalls int

	// updateHook, when set, replaces the default Update behaviour.
	updateHook func(id int64, req remote.UpdateRequest) (catalog.Product, error)
}

func (m *mockClient) List(_ context.Context) ([]catalog.Product, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.products, nil
}

func (m *mockClient) Categories(_ context.Context) ([]catalog.Category, error) {
	if m.catErr != nil {
		return nil, m.catErr
	}
	return m.categories, nil
}

func (m *mockClient) Update(_ context.Context, id int64, req remote.UpdateRequest) (catalog.Product, error) {
	m.mu.Lock()
	m.updateCalls++
	hook := m.updateHook
	m.mu.Unlock()
	if hook != nil {
		return hook(id, req)
	}
	if m.updateErr != nil {
		return catalog.Product{}, m.updateErr
	}
	return catalog.Product{
		ID:        id,
		Title:     req.Title,
		Price:     req.Price,
		UpdatedAt: time.Now(),
	}, nil
}

func (m *mockClient) Create(_ context.Context, req remote.CreateRequest) (catalog.Product, error) {
	m.mu.Lock()
	m.createCalls++
	m.mu.Unlock()
	if m.createErr != nil {
		return catalog.Product{}, m.createErr
	}
	created := m.created
	if created.ID == 0 {
		created = catalog.Product{ID: 101, Title: req.Title, Price: req.Price}
	}
	return created, nil
}

// --- Helpers ---

func testProduct(id int64, title, price string) catalog.Product {
	return catalog.Product{
		ID:       id,
		Title:    title,
		Price:    decimal.RequireFromString(price),
		Category: catalog.Category{ID: 1, Name: "Clothes"},
	}
}

func newController(t *testing.T, client *mockClient) *Controller {
	t.Helper()
	c, err := New(client, zap.NewNop(), Config{PageSize: 10})
	require.NoError(t, err)
	t.Cleanup(c.Shutdown)
	return c
}

func loadedController(t *testing.T, client *mockClient) *Controller {
	t.Helper()
	c := newController(t, client)
	require.NoError(t, c.Load(context.Background()))
	return c
}

// --- Load ---

func TestLoad_PopulatesCatalogAndCategories(t *testing.T) {
	client := &mockClient{
		products:   []catalog.Product{testProduct(1, "Red Shirt", "10")},
		categories: []catalog.Category{{ID: 1, Name: "Clothes"}},
	}
	c := loadedController(t, client)

	v := c.View()
	require.Len(t, v.Items, 1)
	assert.Equal(t, "Red Shirt", v.Items[0].Title)
	assert.False(t, c.LoadFailed())
	assert.Len(t, c.Categories(), 1)
}

func TestLoad_ProductsFailureLeavesCatalogEmpty(t *testing.T) {
	client := &mockClient{listErr: errors.New("connection refused")}
	c := newController(t, client)

	err := c.Load(context.Background())

	require.Error(t, err)
	assert.True(t, c.LoadFailed())
	v := c.View()
	assert.Empty(t, v.Items)
	assert.True(t, v.Empty)
}

func TestLoad_CategoryFailureIsOnlyAWarning(t *testing.T) {
	client := &mockClient{
		products: []catalog.Product{testProduct(1, "Red Shirt", "10")},
		catErr:   errors.New("categories unavailable"),
	}
	c := newController(t, client)

	events, cancel := c.Subscribe(16)
	defer cancel()

	require.NoError(t, c.Load(context.Background()))
	assert.False(t, c.LoadFailed())
	assert.Empty(t, c.Categories())

	warned := false
	for done := false; !done; {
		select {
		case e := <-events:
			if e.Kind == EventNotification && e.Notification.Severity == SeverityWarning {
				warned = true
				done = true
			}
		case <-time.After(time.Second):
			done = true
		}
	}
	assert.True(t, warned)
}

func TestLoad_RecoversAfterFailure(t *testing.T) {
	client := &mockClient{listErr: errors.New("boom")}
	c := newController(t, client)
	require.Error(t, c.Load(context.Background()))

	client.listErr = nil
	client.products = []catalog.Product{testProduct(1, "Red Shirt", "10")}
	require.NoError(t, c.Load(context.Background()))

	assert.False(t, c.LoadFailed())
	assert.Len(t, c.View().Items, 1)
}

// --- Update workflow ---

func TestUpdateProduct_NegativePriceRejectedBeforeNetwork(t *testing.T) {
	client := &mockClient{products: []catalog.Product{testProduct(7, "Red Shirt", "10")}}
	c := loadedController(t, client)

	_, err := c.UpdateProduct(context.Background(), 7, UpdateInput{Title: "Red Shirt", Price: -5})

	var verr *catalog.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "price", verr.Field)
	assert.Zero(t, client.updateCalls)
	assert.Equal(t, "Red Shirt", c.View().Items[0].Title)
}

func TestUpdateProduct_EmptyTitleRejectedBeforeNetwork(t *testing.T) {
	client := &mockClient{products: []catalog.Product{testProduct(7, "Red Shirt", "10")}}
	c := loadedController(t, client)

	_, err := c.UpdateProduct(context.Background(), 7, UpdateInput{Title: "", Price: 10})

	var verr *catalog.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)
	assert.Zero(t, client.updateCalls)
}

func TestUpdateProduct_UnknownID(t *testing.T) {
	client := &mockClient{products: []catalog.Product{testProduct(7, "Red Shirt", "10")}}
	c := loadedController(t, client)

	_, err := c.UpdateProduct(context.Background(), 42, UpdateInput{Title: "x", Price: 1})

	var nfErr *catalog.NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Zero(t, client.updateCalls)
}

func TestUpdateProduct_MergesServerResponse(t *testing.T) {
	local := testProduct(7, "Red Shirt", "10")
	local.Description = "local description"
	client := &mockClient{products: []catalog.Product{local}}
	c := loadedController(t, client)

	// Partial server response: no description, no category.
	merged, err := c.UpdateProduct(context.Background(), 7, UpdateInput{Title: "Crimson Shirt", Price: 12.5})

	require.NoError(t, err)
	assert.Equal(t, "Crimson Shirt", merged.Title)
	assert.True(t, decimal.RequireFromString("12.5").Equal(merged.Price))
	// Fields missing from the response keep their local values.
	assert.Equal(t, "local description", merged.Description)
	assert.Equal(t, "Clothes", merged.Category.Name)

	v := c.View()
	assert.Equal(t, "Crimson Shirt", v.Items[0].Title)
}

func TestUpdateProduct_PreservesSearchAndSort(t *testing.T) {
	client := &mockClient{products: []catalog.Product{
		testProduct(1, "Red Shirt", "30"),
		testProduct(2, "Striped Shirt", "10"),
		testProduct(3, "Blue Pants", "20"),
	}}
	c := loadedController(t, client)
	c.SetSearch("shirt")
	c.ToggleSort(view.SortByPrice)

	_, err := c.UpdateProduct(context.Background(), 1, UpdateInput{Title: "Red Shirt XL", Price: 30})
	require.NoError(t, err)

	v := c.View()
	assert.Equal(t, "shirt", v.SearchTerm)
	require.NotNil(t, v.Sort)
	assert.Equal(t, view.SortByPrice, v.Sort.Field)
	assert.Equal(t, []int64{2, 1}, []int64{v.Items[0].ID, v.Items[1].ID})
}

func TestUpdateProduct_RemoteFailureLeavesCatalogUnchanged(t *testing.T) {
	client := &mockClient{
		products:  []catalog.Product{testProduct(7, "Red Shirt", "10")},
		updateErr: &remote.NetworkError{Op: "update", StatusCode: 500},
	}
	c := loadedController(t, client)

	_, err := c.UpdateProduct(context.Background(), 7, UpdateInput{Title: "Changed", Price: 1})

	var netErr *remote.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, "Red Shirt", c.View().Items[0].Title)
	assert.False(t, c.View().Empty)
}

func TestUpdateProduct_StaleResponseDiscarded(t *testing.T) {
	client := &mockClient{products: []catalog.Product{testProduct(7, "Red Shirt", "10")}}
	c := loadedController(t, client)

	firstStarted := make(chan struct{})
	release := make(chan struct{})
	var calls int
	client.updateHook = func(id int64, req remote.UpdateRequest) (catalog.Product, error) {
		client.mu.Lock()
		calls++
		n := calls
		client.mu.Unlock()
		if n == 1 {
			close(firstStarted)
			<-release
		}
		return catalog.Product{ID: id, Title: req.Title, Price: req.Price}, nil
	}

	errCh := make(chan error, 1)
	go func() {
		_, err := c.UpdateProduct(context.Background(), 7, UpdateInput{Title: "First", Price: 1})
		errCh <- err
	}()

	<-firstStarted
	_, err := c.UpdateProduct(context.Background(), 7, UpdateInput{Title: "Second", Price: 2})
	require.NoError(t, err)

	close(release)
	require.ErrorIs(t, <-errCh, ErrSuperseded)

	// The slow first response never overwrites the newer state.
	assert.Equal(t, "Second", c.View().Items[0].Title)
}

// --- Create workflow ---

func TestCreateProduct_MissingCategoryRejected(t *testing.T) {
	client := &mockClient{}
	c := loadedController(t, client)

	_, err := c.CreateProduct(context.Background(), CreateInput{Title: "Hat", Price: 5})

	var verr *catalog.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "category", verr.Field)
	assert.Zero(t, client.createCalls)
}

func TestCreateProduct_SuccessPrependsAndResetsView(t *testing.T) {
	client := &mockClient{
		products: []catalog.Product{
			testProduct(1, "Red Shirt", "10"),
			testProduct(2, "Blue Pants", "20"),
		},
		created: testProduct(101, "New Hat", "5"),
	}
	c := loadedController(t, client)
	c.ToggleSort(view.SortByTitle)
	c.SetPage(2)

	created, err := c.CreateProduct(context.Background(), CreateInput{
		Title: "New Hat", Price: 5, CategoryID: 1,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(101), created.ID)

	v := c.View()
	assert.Equal(t, 1, v.Page)
	assert.Nil(t, v.Sort)
	assert.Equal(t, int64(101), v.Items[0].ID)
}

func TestCreateProduct_RemoteFailure(t *testing.T) {
	client := &mockClient{
		products:  []catalog.Product{testProduct(1, "Red Shirt", "10")},
		createErr: &remote.NetworkError{Op: "create", StatusCode: 502},
	}
	c := loadedController(t, client)

	_, err := c.CreateProduct(context.Background(), CreateInput{Title: "Hat", Price: 5, CategoryID: 1})

	require.Error(t, err)
	assert.Len(t, c.View().Items, 1)
}

// --- Selection, export, events ---

func TestSelect_UnknownIDNotifies(t *testing.T) {
	client := &mockClient{products: []catalog.Product{testProduct(1, "Red Shirt", "10")}}
	c := loadedController(t, client)

	events, cancel := c.Subscribe(4)
	defer cancel()

	_, err := c.Select(42)

	var nfErr *catalog.NotFoundError
	require.ErrorAs(t, err, &nfErr)

	select {
	case e := <-events:
		require.Equal(t, EventNotification, e.Kind)
		assert.Equal(t, SeverityWarning, e.Notification.Severity)
	case <-time.After(time.Second):
		t.Fatal("expected a notification event")
	}
}

func TestExportProducts_Scopes(t *testing.T) {
	client := &mockClient{products: []catalog.Product{
		testProduct(1, "Red Shirt", "30"),
		testProduct(2, "Striped Shirt", "10"),
		testProduct(3, "Blue Pants", "20"),
	}}
	c := loadedController(t, client)
	c.SetSearch("shirt")
	c.SetPageSize(1)

	page, err := c.ExportProducts(export.ScopePage)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	filtered, err := c.ExportProducts(export.ScopeFiltered)
	require.NoError(t, err)
	assert.Len(t, filtered, 2)

	all, err := c.ExportProducts(export.ScopeCatalog)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestExportProducts_EmptySelection(t *testing.T) {
	client := &mockClient{products: []catalog.Product{testProduct(1, "Red Shirt", "10")}}
	c := loadedController(t, client)
	c.SetSearch("nothing matches")

	_, err := c.ExportProducts(export.ScopeFiltered)

	require.ErrorIs(t, err, export.ErrEmptyExport)
}

func TestSubscribe_ReceivesViewEvents(t *testing.T) {
	client := &mockClient{products: []catalog.Product{testProduct(1, "Red Shirt", "10")}}
	c := loadedController(t, client)

	events, cancel := c.Subscribe(4)
	defer cancel()

	c.SetSearch("shirt")

	select {
	case e := <-events:
		require.Equal(t, EventView, e.Kind)
		require.NotNil(t, e.View)
		assert.Equal(t, "shirt", e.View.SearchTerm)
	case <-time.After(time.Second):
		t.Fatal("expected a view event")
	}
}
