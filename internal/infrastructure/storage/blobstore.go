// Package storage provides the durable blob store backing every persisted
// document: one JSON blob per logical dataset, no transactions, no locking.
package storage

import (
	"context"
	"errors"
)

// ErrBlobNotFound is returned by Load when the key has never been saved
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore is the key-value contract shared by the file, S3 and in-memory
// backends
type BlobStore interface {
	// Load returns the blob for the key, or ErrBlobNotFound
	Load(ctx context.Context, key string) ([]byte, error)
	// Save overwrites the blob for the key
	Save(ctx context.Context, key string, data []byte) error
}
