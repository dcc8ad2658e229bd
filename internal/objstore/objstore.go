// Package objstore uploads binary objects under slash-separated paths.
package objstore

import (
	"context"
	"errors"
)

// ErrExists is returned by Put when an object is already stored at path.
var ErrExists = errors.New("objstore: object already exists")

type Store interface {
	Put(ctx context.Context, path string, data []byte, contentType string) error
}
