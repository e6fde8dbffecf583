// Package storage holds the object-storage adapters. A File row owns
// exactly one key in whichever backend is configured.
package storage

import (
	"context"
	"io"
	"time"

	"github.com/spf13/viper"
)

// Storage is the byte-custody collaborator. Put must confirm the object is
// durably stored before returning a key; Delete is idempotent on a missing
// key.
type Storage interface {
	Put(ctx context.Context, r io.Reader, nameHint, contentType string, size int64) (key string, err error)
	SignedGet(ctx context.Context, key string, ttl time.Duration) (url string, err error)
	Delete(ctx context.Context, key string) error
}

// New returns the adapter selected by storage.type.
func New() (Storage, error) {
	if viper.GetString("storage.type") == "sftp" {
		return NewSFTP()
	}

	return NewS3()
}
