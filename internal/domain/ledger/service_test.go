package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocktrack/internal/core/apperror"
	"stocktrack/internal/core/id"
	"stocktrack/internal/core/types"
	"stocktrack/internal/domain/batch"
	"stocktrack/internal/domain/movement"
	"stocktrack/internal/domain/stock"
)

// fakeTxManager runs fn directly and releases any row locks the repo
// acquired when the "transaction" ends, mirroring commit/rollback.
type fakeTxManager struct{}

type txState struct {
	mu     sync.Mutex
	unlock []func()
}

type txStateKey struct{}

func (f *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	st := &txState{}
	ctx = context.WithValue(ctx, txStateKey{}, st)
	err := fn(ctx)
	for _, u := range st.unlock {
		u()
	}
	return err
}

type batchRow struct {
	productID id.ID
	ownerID   id.ID
	quantity  int64
}

// fakeRepo is an in-memory ledger store. GetBatchForUpdate takes a
// per-batch mutex held until the surrounding transaction ends, which is
// the semantics a SELECT ... FOR UPDATE row lock provides.
type fakeRepo struct {
	mu         sync.Mutex
	batches    map[id.ID]*batchRow
	batchLocks map[id.ID]*sync.Mutex
	products   map[id.ID]int64
	movements  []*movement.Movement
	prices     int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		batches:    make(map[id.ID]*batchRow),
		batchLocks: make(map[id.ID]*sync.Mutex),
		products:   make(map[id.ID]int64),
	}
}

func (r *fakeRepo) addBatch(ownerID, productID id.ID, quantity int64) id.ID {
	batchID := id.New()
	r.batches[batchID] = &batchRow{productID: productID, ownerID: ownerID, quantity: quantity}
	r.batchLocks[batchID] = &sync.Mutex{}
	r.products[productID] = quantity
	return batchID
}

func (r *fakeRepo) GetBatchForUpdate(ctx context.Context, ownerID, batchID id.ID) (*LockedBatch, error) {
	r.mu.Lock()
	row, ok := r.batches[batchID]
	lock := r.batchLocks[batchID]
	r.mu.Unlock()

	if !ok || row.ownerID != ownerID {
		return nil, apperror.NewNotFound("stock_batches", batchID.String())
	}

	// Row lock: blocks until the holding transaction commits
	lock.Lock()
	if st, ok := ctx.Value(txStateKey{}).(*txState); ok {
		st.mu.Lock()
		st.unlock = append(st.unlock, lock.Unlock)
		st.mu.Unlock()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return &LockedBatch{
		ID:        batchID,
		ProductID: row.productID,
		OwnerID:   row.ownerID,
		Quantity:  row.quantity,
	}, nil
}

func (r *fakeRepo) SetBatchQuantity(ctx context.Context, batchID id.ID, quantity int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches[batchID].quantity = quantity
	return nil
}

func (r *fakeRepo) InsertMovement(ctx context.Context, m *movement.Movement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movements = append(r.movements, m)
	return nil
}

func (r *fakeRepo) AddProductQuantity(ctx context.Context, ownerID, productID id.ID, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[productID] += delta
	return nil
}

func (r *fakeRepo) InsertProduct(ctx context.Context, p *stock.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p.Quantity
	return nil
}

func (r *fakeRepo) InsertBatch(ctx context.Context, b *batch.Batch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches[b.ID] = &batchRow{productID: b.ProductID, ownerID: b.OwnerID, quantity: b.Quantity}
	r.batchLocks[b.ID] = &sync.Mutex{}
	return nil
}

func (r *fakeRepo) InsertPricePoint(ctx context.Context, ownerID, productID id.ID, price types.Money, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prices++
	return nil
}

type fakeAudit struct {
	mu      sync.Mutex
	records int
}

func (a *fakeAudit) Record(ctx context.Context, entityType string, entityID id.ID, action string, changes map[string]any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records++
	return nil
}

func newTestService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	return NewService(repo, &fakeTxManager{}, &fakeAudit{}), repo
}

func TestAdjustStock_In(t *testing.T) {
	svc, repo := newTestService()
	owner := id.New()
	product := id.New()
	batchID := repo.addBatch(owner, product, 10)

	m, err := svc.AdjustStock(context.Background(), owner, AdjustInput{
		BatchID:  batchID,
		Type:     movement.TypeIn,
		Quantity: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, movement.TypeIn, m.Type)
	assert.Equal(t, int64(5), m.Quantity)
	assert.Equal(t, int64(15), repo.batches[batchID].quantity)
	assert.Equal(t, int64(15), repo.products[product])
	assert.Len(t, repo.movements, 1)
}

func TestAdjustStock_OutRejectsOverdraw(t *testing.T) {
	svc, repo := newTestService()
	owner := id.New()
	product := id.New()
	batchID := repo.addBatch(owner, product, 10)

	_, err := svc.AdjustStock(context.Background(), owner, AdjustInput{
		BatchID:  batchID,
		Type:     movement.TypeOut,
		Quantity: 11,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// No partial state
	assert.Equal(t, int64(10), repo.batches[batchID].quantity)
	assert.Equal(t, int64(10), repo.products[product])
	assert.Empty(t, repo.movements)
}

func TestAdjustStock_WrongOwnerIsNotFound(t *testing.T) {
	svc, repo := newTestService()
	owner := id.New()
	batchID := repo.addBatch(owner, id.New(), 10)

	_, err := svc.AdjustStock(context.Background(), id.New(), AdjustInput{
		BatchID:  batchID,
		Type:     movement.TypeOut,
		Quantity: 1,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestAdjustStock_Validation(t *testing.T) {
	svc, repo := newTestService()
	owner := id.New()
	batchID := repo.addBatch(owner, id.New(), 10)

	cases := []struct {
		name string
		in   AdjustInput
	}{
		{"zero quantity", AdjustInput{BatchID: batchID, Type: movement.TypeIn, Quantity: 0}},
		{"negative quantity", AdjustInput{BatchID: batchID, Type: movement.TypeOut, Quantity: -3}},
		{"bad type", AdjustInput{BatchID: batchID, Type: "SIDEWAYS", Quantity: 1}},
		{"nil batch", AdjustInput{Type: movement.TypeIn, Quantity: 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AdjustStock(context.Background(), owner, tc.in)
			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
		})
	}
}

// Two concurrent OUT 6 against quantity 10: exactly one succeeds, one is
// rejected, and the final quantity is 4. Never negative, never double-applied.
func TestAdjustStock_ConcurrentOut(t *testing.T) {
	svc, repo := newTestService()
	owner := id.New()
	product := id.New()
	batchID := repo.addBatch(owner, product, 10)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.AdjustStock(context.Background(), owner, AdjustInput{
				BatchID:  batchID,
				Type:     movement.TypeOut,
				Quantity: 6,
			})
		}(i)
	}
	wg.Wait()

	var succeeded, rejected int
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else if apperror.IsInsufficientStock(err) {
			rejected++
		} else {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, int64(4), repo.batches[batchID].quantity)
	assert.Equal(t, int64(4), repo.products[product])
	assert.Len(t, repo.movements, 1)
}

func TestAdjustStock_SequentialLedgerAgreement(t *testing.T) {
	svc, repo := newTestService()
	owner := id.New()
	product := id.New()
	batchID := repo.addBatch(owner, product, 3)

	steps := []struct {
		typ movement.Type
		qty int64
	}{
		{movement.TypeIn, 7},
		{movement.TypeOut, 4},
		{movement.TypeIn, 2},
		{movement.TypeOut, 8},
	}

	for _, step := range steps {
		_, err := svc.AdjustStock(context.Background(), owner, AdjustInput{
			BatchID:  batchID,
			Type:     step.typ,
			Quantity: step.qty,
		})
		require.NoError(t, err)
	}

	// batch.quantity == initial + sum(IN) - sum(OUT)
	var sum int64 = 3
	for _, m := range repo.movements {
		if m.Type == movement.TypeIn {
			sum += m.Quantity
		} else {
			sum -= m.Quantity
		}
	}
	assert.Equal(t, sum, repo.batches[batchID].quantity)
	assert.Equal(t, int64(0), repo.batches[batchID].quantity)
}

func TestCreateProductWithInitialBatch(t *testing.T) {
	svc, repo := newTestService()
	owner := id.New()

	res, err := svc.CreateProductWithInitialBatch(context.Background(), owner, CreateProductInput{
		Name:            "Rice",
		Type:            stock.TypeFood,
		Price:           types.MustMoney("12.50"),
		InitialQuantity: 20,
	})
	require.NoError(t, err)

	assert.Equal(t, "Rice", res.Product.Name)
	assert.Equal(t, int64(20), res.Product.Quantity)
	assert.Equal(t, res.Product.ID, res.Batch.ProductID)
	assert.Equal(t, int64(20), res.Batch.Quantity)
	assert.Equal(t, int64(20), repo.products[res.Product.ID])
	assert.Equal(t, 1, repo.prices)
}

func TestCreateProductWithInitialBatch_Validation(t *testing.T) {
	svc, _ := newTestService()
	owner := id.New()

	_, err := svc.CreateProductWithInitialBatch(context.Background(), owner, CreateProductInput{
		Name:            "",
		Type:            stock.TypeFood,
		Price:           types.ZeroMoney(),
		InitialQuantity: 1,
	})
	require.Error(t, err)

	_, err = svc.CreateProductWithInitialBatch(context.Background(), owner, CreateProductInput{
		Name:            "Rice",
		Type:            stock.TypeFood,
		Price:           types.ZeroMoney(),
		InitialQuantity: -1,
	})
	require.Error(t, err)
}
