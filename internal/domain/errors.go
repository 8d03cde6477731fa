package domain

// ContentSourceError represents a failure fetching one collection.
type ContentSourceError struct {
	Op         string
	Collection Collection
	Err        error
}

func (e *ContentSourceError) Error() string {
	if e.Collection != "" {
		return e.Op + " [" + string(e.Collection) + "]: " + e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *ContentSourceError) Unwrap() error {
	return e.Err
}

// StorageError represents a failure of a key/value storage backend.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
