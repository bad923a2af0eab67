package announcement

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocktrack/internal/core/id"
)

type fakeRepo struct {
	products       []ProductState
	expired        map[id.ID]bool
	announcements  []*Announcement
	listErr        error
	hasActiveErr   error
	expiredErr     error
	insertErr      error
	insertAttempts int
}

func newAnnFakeRepo() *fakeRepo {
	return &fakeRepo{expired: make(map[id.ID]bool)}
}

func (r *fakeRepo) ListActive(ctx context.Context, ownerID id.ID) ([]*Announcement, error) {
	var out []*Announcement
	for _, a := range r.announcements {
		if a.OwnerID == ownerID && a.IsActive {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeRepo) HasActive(ctx context.Context, ownerID, productID id.ID, typ Type) (bool, error) {
	if r.hasActiveErr != nil {
		return false, r.hasActiveErr
	}
	for _, a := range r.announcements {
		if a.OwnerID == ownerID && a.ProductID == productID && a.Type == typ && a.IsActive {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) Insert(ctx context.Context, a *Announcement) error {
	r.insertAttempts++
	if r.insertErr != nil {
		return r.insertErr
	}
	r.announcements = append(r.announcements, a)
	return nil
}

func (r *fakeRepo) Dismiss(ctx context.Context, ownerID, announcementID id.ID) (int64, error) {
	for _, a := range r.announcements {
		if a.ID == announcementID && a.OwnerID == ownerID && a.IsActive {
			a.IsActive = false
			a.UpdatedAt = time.Now().UTC()
			return 1, nil
		}
	}
	return 0, nil
}

func (r *fakeRepo) ListProducts(ctx context.Context, ownerID id.ID) ([]ProductState, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.products, nil
}

func (r *fakeRepo) HasExpiredBatch(ctx context.Context, ownerID, productID id.ID, now time.Time) (bool, error) {
	if r.expiredErr != nil {
		return false, r.expiredErr
	}
	return r.expired[productID], nil
}

type nopAudit struct{}

func (nopAudit) Record(ctx context.Context, entityType string, entityID id.ID, action string, changes map[string]any) error {
	return nil
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
}

func TestScan_CreatesLowStockAndExpired(t *testing.T) {
	repo := newAnnFakeRepo()
	owner := id.New()
	lowID, okID, expID := id.New(), id.New(), id.New()
	repo.products = []ProductState{
		{ID: lowID, Name: "Rice", Quantity: 2},
		{ID: okID, Name: "Oil", Quantity: 9},
		{ID: expID, Name: "Milk", Quantity: 5},
	}
	repo.expired[expID] = true

	svc := NewService(repo, nopAudit{}, fixedNow)
	outcomes, err := svc.Scan(context.Background(), owner)
	require.NoError(t, err)

	require.Len(t, outcomes, 2)
	byType := map[Type]ScanOutcome{}
	for _, o := range outcomes {
		byType[o.Type] = o
	}

	low := byType[TypeLowStock]
	assert.Equal(t, lowID, low.ProductID)
	assert.Equal(t, OutcomeCreated, low.Status)

	exp := byType[TypeExpired]
	assert.Equal(t, expID, exp.ProductID)
	assert.Equal(t, OutcomeCreated, exp.Status)

	require.Len(t, repo.announcements, 2)
	messages := map[Type]string{}
	for _, a := range repo.announcements {
		assert.True(t, a.IsActive)
		messages[a.Type] = a.Message
	}
	assert.Equal(t, "The stock for product Rice is low (Quantity: 2).", messages[TypeLowStock])
	assert.Equal(t, "The product Milk has expired batches. Please check expiration dates.", messages[TypeExpired])
}

func TestScan_ThresholdIsExclusive(t *testing.T) {
	repo := newAnnFakeRepo()
	owner := id.New()
	repo.products = []ProductState{
		{ID: id.New(), Name: "Salt", Quantity: LowStockThreshold},
	}

	svc := NewService(repo, nopAudit{}, fixedNow)
	outcomes, err := svc.Scan(context.Background(), owner)
	require.NoError(t, err)
	assert.Empty(t, outcomes)
	assert.Empty(t, repo.announcements)
}

func TestScan_Dedup(t *testing.T) {
	repo := newAnnFakeRepo()
	owner := id.New()
	repo.products = []ProductState{
		{ID: id.New(), Name: "Rice", Quantity: 1},
	}

	svc := NewService(repo, nopAudit{}, fixedNow)

	first, err := svc.Scan(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, OutcomeCreated, first[0].Status)

	// Second run with unchanged data creates zero new rows
	second, err := svc.Scan(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, OutcomeSkipped, second[0].Status)
	assert.Equal(t, "already active", second[0].Reason)
	assert.Len(t, repo.announcements, 1)
}

func TestScan_InsertFailureIsSkippedNotFatal(t *testing.T) {
	repo := newAnnFakeRepo()
	owner := id.New()
	repo.products = []ProductState{
		{ID: id.New(), Name: "Rice", Quantity: 0},
		{ID: id.New(), Name: "Oil", Quantity: 0},
	}
	repo.insertErr = errors.New("storage unavailable")

	svc := NewService(repo, nopAudit{}, fixedNow)
	outcomes, err := svc.Scan(context.Background(), owner)
	require.NoError(t, err)

	// Both products still scanned despite insert failures
	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		assert.Equal(t, OutcomeSkipped, o.Status)
		assert.Equal(t, "insert failed", o.Reason)
	}
	assert.Equal(t, 2, repo.insertAttempts)
}

func TestScan_ReadFailureAborts(t *testing.T) {
	owner := id.New()

	cases := []struct {
		name string
		prep func(r *fakeRepo)
	}{
		{"products read", func(r *fakeRepo) { r.listErr = errors.New("down") }},
		{"dedup lookup", func(r *fakeRepo) { r.hasActiveErr = errors.New("down") }},
		{"expired lookup", func(r *fakeRepo) { r.expiredErr = errors.New("down") }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newAnnFakeRepo()
			repo.products = []ProductState{{ID: id.New(), Name: "Rice", Quantity: 1}}
			tc.prep(repo)

			svc := NewService(repo, nopAudit{}, fixedNow)
			_, err := svc.Scan(context.Background(), owner)
			require.Error(t, err)
		})
	}
}

func TestDismiss_Idempotent(t *testing.T) {
	repo := newAnnFakeRepo()
	owner := id.New()
	a := New(owner, id.New(), TypeLowStock, "msg")
	repo.announcements = append(repo.announcements, a)

	svc := NewService(repo, nopAudit{}, fixedNow)

	require.NoError(t, svc.Dismiss(context.Background(), owner, a.ID))
	assert.False(t, a.IsActive)

	// Second dismissal: no error, stays inactive
	require.NoError(t, svc.Dismiss(context.Background(), owner, a.ID))
	assert.False(t, a.IsActive)

	// Wrong owner: silent no-op
	other := New(id.New(), id.New(), TypeLowStock, "msg")
	repo.announcements = append(repo.announcements, other)
	require.NoError(t, svc.Dismiss(context.Background(), owner, other.ID))
	assert.True(t, other.IsActive)
}

func TestScan_ManyProductsIndependent(t *testing.T) {
	repo := newAnnFakeRepo()
	owner := id.New()
	for i := 0; i < 20; i++ {
		repo.products = append(repo.products, ProductState{
			ID:       id.New(),
			Name:     fmt.Sprintf("P%02d", i),
			Quantity: int64(i % 5),
		})
	}

	svc := NewService(repo, nopAudit{}, fixedNow)
	outcomes, err := svc.Scan(context.Background(), owner)
	require.NoError(t, err)

	// Quantities 0,1,2 trigger; 3,4 do not. 3 per 5-cycle, 20 products.
	assert.Len(t, outcomes, 12)
	assert.Len(t, repo.announcements, 12)
}
