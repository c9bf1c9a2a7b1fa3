package kv_test

import (
	"context"
	"testing"

	"github.com/HerbHall/campaigndesk/internal/kv"
	"github.com/HerbHall/campaigndesk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKV(t *testing.T) *kv.Store {
	t.Helper()
	k := kv.New(nil)
	s := testutil.NewStore(t, k)
	return kv.New(s.DB())
}

func TestGet_Missing(t *testing.T) {
	k := newKV(t)
	_, err := k.Get(context.Background(), "@auth_user")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestSetGetRemove(t *testing.T) {
	k := newKV(t)
	ctx := context.Background()

	require.NoError(t, k.Set(ctx, "theme", "dark"))
	require.NoError(t, k.Set(ctx, "theme", "light"), "overwrite")

	got, err := k.Get(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "light", got)

	require.NoError(t, k.Remove(ctx, "theme"))
	assert.NoError(t, k.Remove(ctx, "theme"), "removing a missing key is a no-op")

	_, err = k.Get(ctx, "theme")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestAll_Ordered(t *testing.T) {
	k := newKV(t)
	ctx := context.Background()
	for _, key := range []string{"b", "c", "a"} {
		require.NoError(t, k.Set(ctx, key, key+"-value"))
	}

	entries, err := k.All(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	for i, want := range []string{"a", "b", "c"} {
		assert.Equal(t, want, entries[i].Key)
		assert.Equal(t, want+"-value", entries[i].Value)
		assert.False(t, entries[i].UpdatedAt.IsZero(), "entries[%d].UpdatedAt is zero", i)
	}
}

func TestJSON(t *testing.T) {
	k := newKV(t)
	ctx := context.Background()

	type prefs struct {
		Notifications bool `json:"notifications"`
		EmailAlerts   bool `json:"emailAlerts"`
	}
	require.NoError(t, k.SetJSON(ctx, "prefs", prefs{Notifications: true}))

	var got prefs
	require.NoError(t, k.GetJSON(ctx, "prefs", &got))
	assert.Equal(t, prefs{Notifications: true}, got)

	require.NoError(t, k.Set(ctx, "broken", "{not json"))
	assert.Error(t, k.GetJSON(ctx, "broken", &got))
}
