package gateway

import "errors"

var errUnknownCollection = errors.New("unknown collection")
