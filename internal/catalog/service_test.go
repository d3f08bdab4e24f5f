package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/storefront/pkg/errors"

	"github.com/utafrali/storefront/internal/domain"
)

type stubFetcher struct {
	products []domain.Product
	err      error
	calls    int
}

func (f *stubFetcher) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

func testCatalog() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Oxford Shirt", Price: 999, Category: "Men", Brand: "Arrow"},
		{ID: 2, Name: "Summer Dress", Price: 1499, Category: "Women", Brand: "Zara"},
		{ID: 3, Name: "Denim Shirt", Price: 1299, Category: "Men", Brand: "Levis"},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestService_ListProducts(t *testing.T) {
	fetcher := &stubFetcher{products: testCatalog()}
	svc := NewService(fetcher, time.Minute, testLogger())

	products, err := svc.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 3)
}

func TestService_CachesWithinTTL(t *testing.T) {
	fetcher := &stubFetcher{products: testCatalog()}
	svc := NewService(fetcher, time.Minute, testLogger())
	ctx := context.Background()

	_, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	_, err = svc.ListProducts(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, fetcher.calls)
}

func TestService_ServesStaleOnRefreshFailure(t *testing.T) {
	fetcher := &stubFetcher{products: testCatalog()}
	svc := NewService(fetcher, -time.Second, testLogger())
	ctx := context.Background()

	_, err := svc.ListProducts(ctx)
	require.NoError(t, err)

	fetcher.err = errors.New("upstream down")
	products, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 3)
}

func TestService_ErrorWithoutSnapshot(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("upstream down")}
	svc := NewService(fetcher, time.Minute, testLogger())

	_, err := svc.ListProducts(context.Background())
	assert.Error(t, err)
}

func TestService_GetProduct(t *testing.T) {
	svc := NewService(&stubFetcher{products: testCatalog()}, time.Minute, testLogger())
	ctx := context.Background()

	p, err := svc.GetProduct(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Summer Dress", p.Name)

	_, err = svc.GetProduct(ctx, 99)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestService_ListByCategory(t *testing.T) {
	svc := NewService(&stubFetcher{products: testCatalog()}, time.Minute, testLogger())

	products, err := svc.ListByCategory(context.Background(), "men")
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestService_ListByBrand(t *testing.T) {
	svc := NewService(&stubFetcher{products: testCatalog()}, time.Minute, testLogger())

	products, err := svc.ListByBrand(context.Background(), "ZARA")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 2, products[0].ID)
}

func TestService_Search(t *testing.T) {
	svc := NewService(&stubFetcher{products: testCatalog()}, time.Minute, testLogger())
	ctx := context.Background()

	products, err := svc.Search(ctx, "shirt")
	require.NoError(t, err)
	assert.Len(t, products, 2)

	products, err = svc.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, products, 3)

	products, err = svc.Search(ctx, "nothing matches")
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestService_CategoriesAndBrands(t *testing.T) {
	svc := NewService(&stubFetcher{products: testCatalog()}, time.Minute, testLogger())
	ctx := context.Background()

	categories, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Men", "Women"}, categories)

	brands, err := svc.Brands(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Arrow", "Zara", "Levis"}, brands)
}
