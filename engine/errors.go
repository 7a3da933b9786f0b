package engine

import "errors"

var (
	// ErrNotInitialized indicates an operation before Init committed the
	// genesis state.
	ErrNotInitialized = errors.New("engine: ledger not initialized")

	// ErrAlreadyInitialized indicates Init on a store that already holds state.
	ErrAlreadyInitialized = errors.New("engine: ledger already initialized")

	// ErrNoDesk indicates a desk purchase with no desk configured.
	ErrNoDesk = errors.New("engine: no desk configured")

	// ErrSnapshotVersion indicates a snapshot written by an incompatible version.
	ErrSnapshotVersion = errors.New("engine: unsupported snapshot version")
)
