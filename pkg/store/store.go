// SPDX-License-Identifier: Apache-2.0
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Backend names accepted by Open
const (
	BackendMemory = "memory"
	BackendNATS   = "nats"
	BackendRedis  = "redis"
)

var (
	// ErrNotFound is returned when a document does not exist
	ErrNotFound = errors.New("document not found")
	// ErrExists is returned by Create when the document is already present
	ErrExists = errors.New("document already exists")
	// ErrUnknownBackend is returned by Open for an unsupported backend name
	ErrUnknownBackend = errors.New("unknown store backend")
)

// Store persists JSON documents keyed by collection and id
type Store interface {
	Get(ctx context.Context, collection, id string, dst any) error
	Put(ctx context.Context, collection, id string, doc any) error
	Create(ctx context.Context, collection, id string, doc any) error
	Exists(ctx context.Context, collection, id string) (bool, error)
	Delete(ctx context.Context, collection, id string) error
	Close() error
}

// Config selects and configures a backend
type Config struct {
	Backend  string
	NATSURL  string // empty starts an embedded server
	NATSDir  string // JetStream storage for the embedded server
	RedisURL string
}

// Open creates the configured backend
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemory(), nil
	case BackendNATS:
		return OpenNATS(ctx, cfg.NATSURL, cfg.NATSDir)
	case BackendRedis:
		return OpenRedis(ctx, cfg.RedisURL)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
}

// Backends lists the supported backend names
func Backends() []string {
	return []string{BackendMemory, BackendNATS, BackendRedis}
}

func encode(collection, id string, doc any) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	return data, nil
}

func decode(collection, id string, data []byte, dst any) error {
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return nil
}

func notFound(collection, id string) error {
	return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
}

func exists(collection, id string) error {
	return fmt.Errorf("%w: %s/%s", ErrExists, collection, id)
}
