package stock

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocktrack/internal/core/apperror"
	"stocktrack/internal/core/id"
	"stocktrack/internal/core/types"
	"stocktrack/internal/domain"
)

type fakeTxManager struct{}

func (f *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	products map[id.ID]*Product
}

func (f *fakeRepo) Create(ctx context.Context, p *Product) error {
	f.products[p.ID] = p
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, ownerID, productID id.ID) (*Product, error) {
	p, ok := f.products[productID]
	if !ok || p.OwnerID != ownerID {
		return nil, apperror.NewNotFound("stock", productID.String())
	}
	clone := *p
	return &clone, nil
}

func (f *fakeRepo) Update(ctx context.Context, ownerID id.ID, p *Product) error {
	existing, ok := f.products[p.ID]
	if !ok || existing.OwnerID != ownerID {
		return apperror.NewNotFound("stock", p.ID.String())
	}
	clone := *p
	f.products[p.ID] = &clone
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, ownerID, productID id.ID) error {
	p, ok := f.products[productID]
	if !ok || p.OwnerID != ownerID {
		return apperror.NewNotFound("stock", productID.String())
	}
	delete(f.products, productID)
	return nil
}

func (f *fakeRepo) List(ctx context.Context, ownerID id.ID, filter domain.ListFilter) (domain.ListResult[*Product], error) {
	var items []*Product
	for _, p := range f.products {
		if p.OwnerID == ownerID {
			clone := *p
			items = append(items, &clone)
		}
	}
	return domain.ListResult[*Product]{Items: items, TotalCount: int64(len(items))}, nil
}

func (f *fakeRepo) Exists(ctx context.Context, ownerID, productID id.ID) (bool, error) {
	p, ok := f.products[productID]
	return ok && p.OwnerID == ownerID, nil
}

func (f *fakeRepo) AddQuantity(ctx context.Context, ownerID, productID id.ID, delta int64) error {
	p, ok := f.products[productID]
	if !ok || p.OwnerID != ownerID {
		return apperror.NewNotFound("stock", productID.String())
	}
	p.Quantity += delta
	return nil
}

type recordedPoint struct {
	productID id.ID
	price     types.Money
}

type fakePrices struct {
	points []recordedPoint
}

func (f *fakePrices) AppendPoint(ctx context.Context, ownerID, productID id.ID, price types.Money, at time.Time) error {
	f.points = append(f.points, recordedPoint{productID: productID, price: price})
	return nil
}

type nopAudit struct{}

func (nopAudit) Record(ctx context.Context, entityType string, entityID id.ID, action string, changes map[string]any) error {
	return nil
}

func money(s string) types.Money {
	return decimal.RequireFromString(s)
}

func TestUpdate_PriceChangeAppendsHistoryPoint(t *testing.T) {
	ownerID := id.New()
	p := NewProduct(ownerID, "Rice 5kg", TypeFood, money("12.50"))

	repo := &fakeRepo{products: map[id.ID]*Product{p.ID: p}}
	prices := &fakePrices{}
	svc := NewService(repo, prices, &fakeTxManager{}, nopAudit{})

	updated, err := svc.Update(context.Background(), ownerID, p.ID, UpdateInput{
		Name:  "Rice 5kg",
		Type:  TypeFood,
		Price: money("13.20"),
	})
	require.NoError(t, err)

	assert.True(t, updated.Price.Equal(money("13.20")))
	require.Len(t, prices.points, 1)
	assert.Equal(t, p.ID, prices.points[0].productID)
	assert.True(t, prices.points[0].price.Equal(money("13.20")))
}

func TestUpdate_SamePriceSkipsHistoryPoint(t *testing.T) {
	ownerID := id.New()
	p := NewProduct(ownerID, "Rice 5kg", TypeFood, money("12.50"))

	repo := &fakeRepo{products: map[id.ID]*Product{p.ID: p}}
	prices := &fakePrices{}
	svc := NewService(repo, prices, &fakeTxManager{}, nopAudit{})

	updated, err := svc.Update(context.Background(), ownerID, p.ID, UpdateInput{
		Name:  "Rice 5kg Premium",
		Type:  TypeFood,
		Price: money("12.50"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Rice 5kg Premium", updated.Name)
	assert.Empty(t, prices.points)
}

func TestUpdate_InvalidTypeRejected(t *testing.T) {
	ownerID := id.New()
	p := NewProduct(ownerID, "Rice 5kg", TypeFood, money("12.50"))

	repo := &fakeRepo{products: map[id.ID]*Product{p.ID: p}}
	svc := NewService(repo, &fakePrices{}, &fakeTxManager{}, nopAudit{})

	_, err := svc.Update(context.Background(), ownerID, p.ID, UpdateInput{
		Name:  "Rice 5kg",
		Type:  ProductType("furniture"),
		Price: money("12.50"),
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestUpdate_WrongOwnerIsNotFound(t *testing.T) {
	ownerID := id.New()
	p := NewProduct(ownerID, "Rice 5kg", TypeFood, money("12.50"))

	repo := &fakeRepo{products: map[id.ID]*Product{p.ID: p}}
	svc := NewService(repo, &fakePrices{}, &fakeTxManager{}, nopAudit{})

	_, err := svc.Update(context.Background(), id.New(), p.ID, UpdateInput{
		Name:  "Rice 5kg",
		Type:  TypeFood,
		Price: money("12.50"),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDelete(t *testing.T) {
	ownerID := id.New()
	p := NewProduct(ownerID, "Rice 5kg", TypeFood, money("12.50"))

	repo := &fakeRepo{products: map[id.ID]*Product{p.ID: p}}
	svc := NewService(repo, &fakePrices{}, &fakeTxManager{}, nopAudit{})

	require.NoError(t, svc.Delete(context.Background(), ownerID, p.ID))
	assert.Empty(t, repo.products)

	err := svc.Delete(context.Background(), ownerID, p.ID)
	assert.True(t, apperror.IsNotFound(err))
}
