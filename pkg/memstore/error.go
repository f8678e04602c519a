package memstore

import "errors"

var (
	// ErrNotFound is returned when a record targeted by id does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInsert is returned when the engine rejects a write of new records.
	ErrInsert = errors.New("insert failed")

	// ErrUpdate is returned when the engine rejects a partial update.
	ErrUpdate = errors.New("update failed")

	// ErrConnection is returned when the engine's backing store cannot be
	// opened or reached.
	ErrConnection = errors.New("store connection failed")
)
