package shortcut

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"voicelink/internal/intent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeStore is a controllable ShortcutStore.
type fakeStore struct {
	mu        sync.Mutex
	shortcuts []VoiceShortcut
	err       error
	calls     int
	block     chan struct{} // when non-nil, ListAll blocks until closed
}

func (f *fakeStore) ListAll(ctx context.Context) ([]VoiceShortcut, error) {
	f.mu.Lock()
	f.calls++
	err := f.err
	block := f.block
	out := make([]VoiceShortcut, len(f.shortcuts))
	copy(out, f.shortcuts)
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (f *fakeStore) set(shortcuts []VoiceShortcut, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shortcuts = shortcuts
	f.err = err
}

func (f *fakeStore) listCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type donation struct {
	in      intent.Intent
	groupID string
}

type fakeDonor struct {
	mu      sync.Mutex
	err     error
	donated []donation
}

func (f *fakeDonor) Donate(ctx context.Context, in intent.Intent, groupID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.donated = append(f.donated, donation{in: in, groupID: groupID})
	return nil
}

func (f *fakeDonor) donations() []donation {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]donation, len(f.donated))
	copy(out, f.donated)
	return out
}

type fakeRelevance struct {
	mu   sync.Mutex
	err  error
	sets [][]intent.Intent
}

func (f *fakeRelevance) SetRelevant(ctx context.Context, intents []intent.Intent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sets = append(f.sets, intents)
	return nil
}

func (f *fakeRelevance) setCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sets)
}

func mustBuild(t *testing.T, p intent.Parameters) intent.Intent {
	t.Helper()
	in, err := intent.Build(intent.KindAddItem, p)
	require.NoError(t, err)
	return in
}

func newTestRegistry(store *fakeStore, donor *fakeDonor, relevance *fakeRelevance) *Registry {
	return NewRegistry(store, donor, relevance,
		WithReloadTimeout(2*time.Second),
		WithDonationTimeout(2*time.Second))
}

func TestReloadAllReplacesSnapshot(t *testing.T) {
	store := &fakeStore{}
	reg := newTestRegistry(store, &fakeDonor{}, &fakeRelevance{})

	require.NoError(t, reg.ReloadAll(context.Background()))
	assert.Equal(t, 0, reg.Count())

	store.set([]VoiceShortcut{
		{ID: "s1", Phrase: "Groceries", Intent: mustBuild(t, intent.Parameters{Store: "GroceryStore"})},
		{ID: "s2", Phrase: "Hardware", Intent: mustBuild(t, intent.Parameters{Store: "HardwareStore"})},
	}, nil)

	require.NoError(t, reg.ReloadAll(context.Background()))
	assert.Equal(t, 2, reg.Count())
	assert.Len(t, reg.Shortcuts(), 2)
}

func TestReloadAllFailureKeepsSnapshot(t *testing.T) {
	store := &fakeStore{shortcuts: []VoiceShortcut{
		{ID: "s1", Intent: mustBuild(t, intent.Parameters{Store: "GroceryStore"})},
	}}
	reg := newTestRegistry(store, &fakeDonor{}, &fakeRelevance{})

	require.NoError(t, reg.ReloadAll(context.Background()))
	require.Equal(t, 1, reg.Count())

	store.set(nil, errors.New("xpc connection interrupted"))
	err := reg.ReloadAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	// Prior snapshot still served.
	assert.Equal(t, 1, reg.Count())
	assert.True(t, reg.HasShortcut("GroceryStore"))
}

func TestReloadAllPermissionDeniedPassthrough(t *testing.T) {
	store := &fakeStore{err: ErrPermissionDenied}
	reg := newTestRegistry(store, &fakeDonor{}, &fakeRelevance{})

	err := reg.ReloadAll(context.Background())
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestDonateThenReloadScenario(t *testing.T) {
	store := &fakeStore{}
	donor := &fakeDonor{}
	relevance := &fakeRelevance{}
	reg := newTestRegistry(store, donor, relevance)

	require.NoError(t, reg.ReloadAll(context.Background()))
	assert.False(t, reg.HasShortcut("GroceryStore"))

	in := mustBuild(t, intent.Parameters{Store: "GroceryStore", Product: "Milk", Quantity: 2})
	require.NoError(t, reg.Donate(context.Background(), in, ""))

	// Donation alone does not update the snapshot.
	assert.False(t, reg.HasShortcut("GroceryStore"))

	// The user created the shortcut in the host UI; the store now knows it.
	created := VoiceShortcut{ID: "s1", Phrase: "Milk run", Intent: in}
	store.set([]VoiceShortcut{created}, nil)

	require.NoError(t, reg.ReloadAll(context.Background()))
	assert.True(t, reg.HasShortcut("GroceryStore"))

	got, ok := reg.FindShortcut("GroceryStore")
	require.True(t, ok)
	assert.Equal(t, created, got)

	_, ok = reg.FindShortcut("HardwareStore")
	assert.False(t, ok)
}

func TestDonateDefaultsGroupID(t *testing.T) {
	donor := &fakeDonor{}
	relevance := &fakeRelevance{}
	reg := newTestRegistry(&fakeStore{}, donor, relevance)

	in := mustBuild(t, intent.Parameters{Store: "GroceryStore"})
	require.NoError(t, reg.Donate(context.Background(), in, ""))

	donations := donor.donations()
	require.Len(t, donations, 1)
	assert.Equal(t, "add_item", donations[0].groupID)
	assert.Equal(t, in, donations[0].in)
	assert.Equal(t, 1, relevance.setCalls())
}

func TestDonateExplicitGroupID(t *testing.T) {
	donor := &fakeDonor{}
	reg := newTestRegistry(&fakeStore{}, donor, &fakeRelevance{})

	in := mustBuild(t, intent.Parameters{Store: "GroceryStore"})
	require.NoError(t, reg.Donate(context.Background(), in, "groceries.weekly"))

	donations := donor.donations()
	require.Len(t, donations, 1)
	assert.Equal(t, "groceries.weekly", donations[0].groupID)
}

func TestDonateFailuresAreWrapped(t *testing.T) {
	t.Run("donor failure", func(t *testing.T) {
		donor := &fakeDonor{err: errors.New("interaction service down")}
		relevance := &fakeRelevance{}
		reg := newTestRegistry(&fakeStore{}, donor, relevance)

		err := reg.Donate(context.Background(), mustBuild(t, intent.Parameters{}), "")
		assert.ErrorIs(t, err, ErrDonationFailed)
		// Relevance call is independent and still happens.
		assert.Equal(t, 1, relevance.setCalls())
	})

	t.Run("relevance failure", func(t *testing.T) {
		donor := &fakeDonor{}
		relevance := &fakeRelevance{err: errors.New("relevance service down")}
		reg := newTestRegistry(&fakeStore{}, donor, relevance)

		err := reg.Donate(context.Background(), mustBuild(t, intent.Parameters{}), "")
		assert.ErrorIs(t, err, ErrDonationFailed)
		assert.Len(t, donor.donations(), 1)
	})
}

func TestDonateUnsupportedKind(t *testing.T) {
	reg := newTestRegistry(&fakeStore{}, &fakeDonor{}, &fakeRelevance{})

	err := reg.Donate(context.Background(), intent.Intent{}, "")
	assert.ErrorIs(t, err, intent.ErrUnsupportedKind)
}

func TestDonateAsyncNeverBlocks(t *testing.T) {
	donor := &fakeDonor{err: errors.New("interaction service down")}
	reg := newTestRegistry(&fakeStore{}, donor, &fakeRelevance{})

	reg.DonateAsync(mustBuild(t, intent.Parameters{Store: "GroceryStore"}), "")
	reg.async.Wait()
}

func TestReloadAllSingleFlight(t *testing.T) {
	block := make(chan struct{})
	store := &fakeStore{block: block}
	reg := newTestRegistry(store, &fakeDonor{}, &fakeRelevance{})

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = reg.ReloadAll(context.Background())
		}(i)
	}

	// Let every goroutine join the in-flight call before releasing it.
	require.Eventually(t, func() bool { return store.listCalls() >= 1 },
		time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	close(block)
	wg.Wait()

	assert.Equal(t, 1, store.listCalls(), "overlapping reloads must share one fetch")
	for _, err := range errs {
		assert.NoError(t, err)
	}
}

func TestReloadAllSurvivesInitiatorCancel(t *testing.T) {
	block := make(chan struct{})
	store := &fakeStore{
		shortcuts: []VoiceShortcut{
			{ID: "s1", Intent: mustBuild(t, intent.Parameters{Store: "GroceryStore"})},
		},
		block: block,
	}
	reg := newTestRegistry(store, &fakeDonor{}, &fakeRelevance{})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- reg.ReloadAll(ctx) }()

	require.Eventually(t, func() bool { return store.listCalls() >= 1 },
		time.Second, 5*time.Millisecond)

	// Cancelling the initiating caller must not abort the shared fetch.
	cancel()
	close(block)

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("ReloadAll did not return")
	}
	assert.True(t, reg.HasShortcut("GroceryStore"))
}
