// Package repository defines the document stores that persist the booking
// ledger.  Every backend stores the whole ledger as one JSON document and
// reports the same sentinel values so the service layer can decide how to
// recover without inspecting driver specific errors.  ErrNoDocument means the
// store was never initialized, while ErrCorrupt signals that a document
// exists but cannot be decoded and ErrStale that another writer saved first.
package repository

import "errors"

// ErrNoDocument is returned by Load when the store holds no document yet.
// Callers should seed a fresh ledger and save it.
var ErrNoDocument = errors.New("no document")

// ErrCorrupt is returned by Load when the stored document cannot be
// decoded.  The service layer reinitializes the ledger in that case.
var ErrCorrupt = errors.New("corrupt document")

// ErrStale is returned by SaveIf when the stored document no longer has
// the expected version.  The caller should reload and retry.
var ErrStale = errors.New("stale document")
