package batch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocktrack/internal/core/apperror"
	"stocktrack/internal/core/id"
	"stocktrack/internal/domain"
)

type fakeTxManager struct{}

func (f *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeProductLedger struct {
	quantities map[id.ID]int64
}

func (f *fakeProductLedger) Exists(ctx context.Context, ownerID, productID id.ID) (bool, error) {
	_, ok := f.quantities[productID]
	return ok, nil
}

func (f *fakeProductLedger) AddQuantity(ctx context.Context, ownerID, productID id.ID, delta int64) error {
	f.quantities[productID] += delta
	return nil
}

type fakeRepo struct {
	batches map[id.ID]*Batch
}

func (f *fakeRepo) Create(ctx context.Context, b *Batch) error {
	f.batches[b.ID] = b
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, ownerID, batchID id.ID) (*Batch, error) {
	b, ok := f.batches[batchID]
	if !ok || b.OwnerID != ownerID {
		return nil, apperror.NewNotFound("stock_batches", batchID.String())
	}
	clone := *b
	return &clone, nil
}

func (f *fakeRepo) Update(ctx context.Context, ownerID id.ID, b *Batch) error {
	existing, ok := f.batches[b.ID]
	if !ok || existing.OwnerID != ownerID {
		return apperror.NewNotFound("stock_batches", b.ID.String())
	}
	clone := *b
	f.batches[b.ID] = &clone
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, ownerID, batchID id.ID) error {
	b, ok := f.batches[batchID]
	if !ok || b.OwnerID != ownerID {
		return apperror.NewNotFound("stock_batches", batchID.String())
	}
	delete(f.batches, batchID)
	return nil
}

func (f *fakeRepo) List(ctx context.Context, ownerID id.ID, filter ListFilter) (domain.ListResult[*WithProduct], error) {
	return domain.ListResult[*WithProduct]{}, nil
}

type nopAudit struct{}

func (nopAudit) Record(ctx context.Context, entityType string, entityID id.ID, action string, changes map[string]any) error {
	return nil
}

func newTestService(products *fakeProductLedger, repo *fakeRepo) *Service {
	return NewService(repo, products, &fakeTxManager{}, nopAudit{})
}

func TestCreate_PropagatesQuantityToProduct(t *testing.T) {
	ownerID := id.New()
	productID := id.New()
	products := &fakeProductLedger{quantities: map[id.ID]int64{productID: 10}}
	repo := &fakeRepo{batches: map[id.ID]*Batch{}}
	svc := newTestService(products, repo)

	b, err := svc.Create(context.Background(), ownerID, CreateInput{
		ProductID: productID,
		Quantity:  5,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(5), b.Quantity)
	assert.Equal(t, int64(15), products.quantities[productID])
	assert.Len(t, repo.batches, 1)
}

func TestCreate_UnknownProductIsNotFound(t *testing.T) {
	ownerID := id.New()
	products := &fakeProductLedger{quantities: map[id.ID]int64{}}
	repo := &fakeRepo{batches: map[id.ID]*Batch{}}
	svc := newTestService(products, repo)

	_, err := svc.Create(context.Background(), ownerID, CreateInput{
		ProductID: id.New(),
		Quantity:  5,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	assert.Empty(t, repo.batches)
}

func TestCreate_NegativeQuantityRejected(t *testing.T) {
	ownerID := id.New()
	productID := id.New()
	products := &fakeProductLedger{quantities: map[id.ID]int64{productID: 0}}
	repo := &fakeRepo{batches: map[id.ID]*Batch{}}
	svc := newTestService(products, repo)

	_, err := svc.Create(context.Background(), ownerID, CreateInput{
		ProductID: productID,
		Quantity:  -1,
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestUpdate_ShiftsProductByDelta(t *testing.T) {
	ownerID := id.New()
	productID := id.New()
	products := &fakeProductLedger{quantities: map[id.ID]int64{productID: 20}}

	b := NewBatch(ownerID, productID, 20, nil)
	repo := &fakeRepo{batches: map[id.ID]*Batch{b.ID: b}}
	svc := newTestService(products, repo)

	expiry := time.Now().AddDate(0, 1, 0)
	updated, err := svc.Update(context.Background(), ownerID, b.ID, UpdateInput{
		Quantity:    12,
		ExpiredDate: &expiry,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(12), updated.Quantity)
	// 20 - 8 removed from the batch
	assert.Equal(t, int64(12), products.quantities[productID])
	require.NotNil(t, updated.ExpiredDate)
}

func TestUpdate_WrongOwnerIsNotFound(t *testing.T) {
	ownerID := id.New()
	productID := id.New()
	products := &fakeProductLedger{quantities: map[id.ID]int64{productID: 20}}

	b := NewBatch(ownerID, productID, 20, nil)
	repo := &fakeRepo{batches: map[id.ID]*Batch{b.ID: b}}
	svc := newTestService(products, repo)

	_, err := svc.Update(context.Background(), id.New(), b.ID, UpdateInput{Quantity: 5})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))

	// Nothing moved
	assert.Equal(t, int64(20), products.quantities[productID])
	assert.Equal(t, int64(20), repo.batches[b.ID].Quantity)
}

func TestDelete_SubtractsRemainingQuantity(t *testing.T) {
	ownerID := id.New()
	productID := id.New()
	products := &fakeProductLedger{quantities: map[id.ID]int64{productID: 20}}

	b := NewBatch(ownerID, productID, 20, nil)
	repo := &fakeRepo{batches: map[id.ID]*Batch{b.ID: b}}
	svc := newTestService(products, repo)

	err := svc.Delete(context.Background(), ownerID, b.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(0), products.quantities[productID])
	assert.Empty(t, repo.batches)
}

func TestIsExpired(t *testing.T) {
	now := time.Now()
	past := now.AddDate(0, 0, -1)
	future := now.AddDate(0, 0, 1)

	assert.True(t, (&Batch{ExpiredDate: &past}).IsExpired(now))
	assert.False(t, (&Batch{ExpiredDate: &future}).IsExpired(now))
	assert.False(t, (&Batch{}).IsExpired(now))
}
