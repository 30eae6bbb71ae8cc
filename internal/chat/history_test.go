package chat

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreAppendAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	history, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)

	require.NoError(t, store.Append(ctx, "s1",
		Message{Role: RoleUser, Text: "hi"},
		Message{Role: RoleModel, Text: "hello"},
	))

	history, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, RoleUser, history[0].Role)
	assert.Equal(t, "hello", history[1].Text)

	// Sessions are isolated.
	history, err = store.Get(ctx, "s2")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestMemoryStoreTrimsOldTurns(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < maxHistory+10; i++ {
		require.NoError(t, store.Append(ctx, "s1", Message{Role: RoleUser, Text: fmt.Sprintf("msg %d", i)}))
	}

	history, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, maxHistory)
	assert.Equal(t, fmt.Sprintf("msg %d", 10), history[0].Text)
}

func TestMemoryStoreClear(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1", Message{Role: RoleUser, Text: "hi"}))
	require.NoError(t, store.Clear(ctx, "s1"))

	history, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1", Message{Role: RoleUser, Text: "original"}))

	history, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	history[0].Text = "mutated"

	again, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "original", again[0].Text)
}
