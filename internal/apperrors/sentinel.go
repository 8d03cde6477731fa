package apperrors

import "errors"

var (
	ErrSearchServiceUnavailable = errors.New("search service unavailable")
	ErrSearchTimeout            = errors.New("search request timed out")
	ErrInvalidInput             = errors.New("invalid search request")
	ErrRateLimitExceeded        = errors.New("rate limit exceeded")
	ErrStorageUnavailable       = errors.New("history storage unavailable")
)

func IsTimeoutError(err error) bool {
	return errors.Is(err, ErrSearchTimeout)
}
