// Package store provides durable local state: named JSON blobs that are
// read once at startup and rewritten wholesale after every mutation.
package store

import (
	"context"
	"errors"
	"time"
)

// Fixed blob names for the two client-side stores.
const (
	ChatStateKey = "kenya-law-ai-chat"
	AuthStateKey = "sheria-ai-auth"
)

// ErrNotFound is returned by Load when no blob has been saved under a name.
var ErrNotFound = errors.New("blob not found")

// BlobInfo describes a stored blob without its payload.
type BlobInfo struct {
	Name      string    `json:"name"`
	Size      int       `json:"size"`
	Revision  int       `json:"revision"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store defines the durable blob storage interface.
type Store interface {
	// Load returns the latest payload saved under name.
	Load(ctx context.Context, name string) ([]byte, error)

	// Save replaces the payload stored under name.
	Save(ctx context.Context, name string, data []byte) error

	// Delete removes name. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error

	// List describes every stored blob, ordered by name.
	List(ctx context.Context) ([]BlobInfo, error)

	// Close closes the store.
	Close() error
}
