package port

//go:generate mockgen -source=storage.go -destination=../mocks/storage_mock.go -package=mocks

import "context"

// KeyValueStorage persists string blobs under string keys. It models browser
// local storage: Get on a missing key reports ok=false without an error.
type KeyValueStorage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
