package store

import (
	"errors"

	"github.com/bitfsorg/libcrowdsale-go/fault"
)

var (
	// ErrNoSnapshot indicates the store has never been committed to.
	ErrNoSnapshot = errors.New("store: no snapshot")

	// ErrEmptySnapshot indicates a commit without state.
	ErrEmptySnapshot = errors.New("store: snapshot is empty")

	// ErrJournalCorrupt indicates a broken sequence or hash chain.
	ErrJournalCorrupt = fault.New(fault.ErrInvariant, "store", "journal corrupt")

	// ErrSnapshotTooLarge indicates a decompressed snapshot above MaxSnapshotSize.
	ErrSnapshotTooLarge = errors.New("store: snapshot exceeds maximum size")

	// ErrClosed indicates use of a closed store.
	ErrClosed = errors.New("store: closed")
)
