package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Queun/ai-teach-platform-sub000/internal/domain"
	"github.com/Queun/ai-teach-platform-sub000/internal/driver/historystore"
	"github.com/Queun/ai-teach-platform-sub000/internal/mocks"
)

func newTestHistory(t *testing.T) (*HistoryService, *historystore.MemoryStore) {
	t.Helper()
	store := historystore.NewMemoryStore()
	svc := NewHistoryService(store)
	clock := time.UnixMilli(1_700_000_000_000)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return svc, store
}

func queries(items []domain.SearchHistoryItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Query
	}
	return out
}

func TestHistory_EmptyByDefault(t *testing.T) {
	svc, _ := newTestHistory(t)
	items, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestHistory_CapKeepsMostRecent(t *testing.T) {
	svc, _ := newTestHistory(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		_, err := svc.Add(ctx, fmt.Sprintf("q%d", i), i)
		require.NoError(t, err)
	}

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, MaxHistoryItems)
	assert.Equal(t, "q24", items[0].Query)
	assert.Equal(t, "q5", items[19].Query)
	for i := 1; i < len(items); i++ {
		assert.Greater(t, items[i-1].Timestamp, items[i].Timestamp)
	}
}

func TestHistory_ReAddMovesToFront(t *testing.T) {
	svc, _ := newTestHistory(t)
	ctx := context.Background()

	for _, q := range []string{"a", "b", "c"} {
		_, err := svc.Add(ctx, q, 1)
		require.NoError(t, err)
	}
	items, err := svc.Add(ctx, "a", 7)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "c", "b"}, queries(items))
	assert.Equal(t, 7, items[0].ResultCount)
}

func TestHistory_BlankQueryIgnored(t *testing.T) {
	svc, _ := newTestHistory(t)
	items, err := svc.Add(context.Background(), "   ", 3)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestHistory_RemoveAndClear(t *testing.T) {
	svc, store := newTestHistory(t)
	ctx := context.Background()

	for _, q := range []string{"a", "b", "c"} {
		_, err := svc.Add(ctx, q, 0)
		require.NoError(t, err)
	}

	items, err := svc.Remove(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, queries(items))

	raw, ok, err := store.Get(ctx, HistoryKey)
	require.NoError(t, err)
	require.True(t, ok)
	var persisted []domain.SearchHistoryItem
	require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	assert.Equal(t, []string{"c", "a"}, queries(persisted))

	require.NoError(t, svc.Clear(ctx))
	_, ok, err = store.Get(ctx, HistoryKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHistory_PersistedShape(t *testing.T) {
	svc, store := newTestHistory(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "chatgpt", 12)
	require.NoError(t, err)

	raw, _, err := store.Get(ctx, HistoryKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"query":"chatgpt","timestamp":1700000001000,"resultCount":12}]`, raw)
}

func TestHistory_MalformedStorageIsEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockKeyValueStorage(ctrl)
	store.EXPECT().Get(gomock.Any(), HistoryKey).Return("{not json", true, nil)

	items, err := NewHistoryService(store).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestHistory_AddOverMalformedStorage(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockKeyValueStorage(ctrl)
	store.EXPECT().Get(gomock.Any(), HistoryKey).Return("{not json", true, nil)
	store.EXPECT().Set(gomock.Any(), HistoryKey, gomock.Any()).Return(nil)

	items, err := NewHistoryService(store).Add(context.Background(), "ai", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"ai"}, queries(items))
}

func TestHistory_CorruptFileRecovers(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "search-history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	svc := NewHistoryService(historystore.NewFileStore(path))

	items, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = svc.Add(ctx, "ai", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"ai"}, queries(items))

	reopened := NewHistoryService(historystore.NewFileStore(path))
	items, err = reopened.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ai"}, queries(items))

	require.NoError(t, reopened.Clear(ctx))
	items, err = reopened.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestHistory_StorageFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockKeyValueStorage(ctrl)
	boom := errors.New("disk full")
	store.EXPECT().Get(gomock.Any(), HistoryKey).Return("", false, nil)
	store.EXPECT().Set(gomock.Any(), HistoryKey, gomock.Any()).Return(boom)

	_, err := NewHistoryService(store).Add(context.Background(), "ai", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var storageErr *domain.StorageError
	assert.ErrorAs(t, err, &storageErr)
}
