package domain

import "errors"

// ErrMalformedUpdate is returned when an update has an unknown kind or lacks the identity its kind requires.
var ErrMalformedUpdate = errors.New("malformed update")

// ErrHandlerPanic is returned when a handler panics during dispatch.
var ErrHandlerPanic = errors.New("handler panicked")

// ErrStateStore is returned when a conversation state cannot be read or written.
var ErrStateStore = errors.New("state store failure")
