package store

import (
	"context"
	"path/filepath"
	"testing"

	"voicelink/internal/intent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(filepath.Join(t.TempDir(), "voicelink.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func buildIntent(t *testing.T, p intent.Parameters) intent.Intent {
	t.Helper()
	in, err := intent.Build(intent.KindAddItem, p)
	require.NoError(t, err)
	return in
}

func TestShortcutRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	in := buildIntent(t, intent.Parameters{Store: "GroceryStore", Product: "Milk", Quantity: 2})
	created, err := s.AddShortcut(ctx, in, "Milk run")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Milk run", created.Phrase)

	got, err = s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, created, got[0])
}

func TestAddShortcutDefaultPhrase(t *testing.T) {
	s := newTestStore(t)

	in := buildIntent(t, intent.Parameters{Store: "GroceryStore"})
	created, err := s.AddShortcut(context.Background(), in, "")
	require.NoError(t, err)
	assert.Equal(t, "Add Item To GroceryStore", created.Phrase)
}

func TestRemoveShortcut(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.AddShortcut(ctx, buildIntent(t, intent.Parameters{Store: "GroceryStore"}), "")
	require.NoError(t, err)

	require.NoError(t, s.RemoveShortcut(ctx, created.ID))

	got, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	err = s.RemoveShortcut(ctx, "no-such-id")
	assert.ErrorIs(t, err, ErrShortcutNotFound)
}

func TestDonateRecordsInteractions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := buildIntent(t, intent.Parameters{Store: "GroceryStore", Product: "Milk", Quantity: 2})
	require.NoError(t, s.Donate(ctx, in, "add_item"))
	require.NoError(t, s.Donate(ctx, in, "add_item"))

	got, err := s.Interactions(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.NotEqual(t, got[0].ID, got[1].ID, "each interaction gets a fresh id")
	for _, rec := range got {
		assert.Equal(t, "add_item", rec.GroupID)
		assert.Equal(t, "GroceryStore", rec.Intent.Store)
		assert.Equal(t, "Milk", rec.Intent.Product)
		assert.Equal(t, 2, rec.Intent.Quantity)
	}
}

func TestSetRelevantReplacesWholesale(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := buildIntent(t, intent.Parameters{Store: "GroceryStore"})
	second := buildIntent(t, intent.Parameters{Store: "HardwareStore"})

	require.NoError(t, s.SetRelevant(ctx, []intent.Intent{first, second}))

	got, err := s.RelevantIntents(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "GroceryStore", got[0].Store)
	assert.Equal(t, "HardwareStore", got[1].Store)

	require.NoError(t, s.SetRelevant(ctx, []intent.Intent{second}))

	got, err = s.RelevantIntents(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "HardwareStore", got[0].Store)
}

func TestListAllSkipsUnknownKinds(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shortcuts (id, phrase, kind) VALUES ('x', 'Do the thing', 'teleport')`)
	require.NoError(t, err)

	_, err = s.AddShortcut(ctx, buildIntent(t, intent.Parameters{Store: "GroceryStore"}), "")
	require.NoError(t, err)

	got, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "GroceryStore", got[0].Intent.Store)
}
