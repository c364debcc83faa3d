package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers
// return these (optionally wrapped) so services can translate them into
// domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store
// - ErrConflict: a state conflict the store could not resolve locally
// - ErrSerialization: concurrent serializable transactions collided; the
//   caller owns the retry
// - ErrUnavailable: service or resource temporarily unavailable
//
// Duplicate-insert races inside intern/associate are recovered by the stores
// themselves and never escape as errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrSerialization = errors.New("serialization failure")
	ErrUnavailable   = errors.New("unavailable")
)
