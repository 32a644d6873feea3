package progress

import "errors"

// ErrUnauthenticated is returned when no authenticated identity is available
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrRecordMissing is returned when an update targets an identity without a remote record
var ErrRecordMissing = errors.New("remote record missing")

// ErrTransientNetwork wraps I/O failures talking to the remote replica.
// They are retried by the next cycle, never in-cycle.
var ErrTransientNetwork = errors.New("transient network error")

// ErrMalformedLocalData is returned when the persisted local record cannot be decoded
var ErrMalformedLocalData = errors.New("malformed local data")
