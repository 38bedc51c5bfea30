// SPDX-License-Identifier: Apache-2.0
package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

// exerciseStore runs the behaviour every backend must share
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	const coll = "clinic_records"
	id := "desk@acme.example"

	var got doc
	assert.ErrorIs(t, s.Get(ctx, coll, id, &got), ErrNotFound)

	ok, err := s.Exists(ctx, coll, id)
	require.NoError(t, err)
	assert.False(t, ok)

	want := doc{Name: "Acme Vet", Items: []string{"standard1", "standard4"}}
	require.NoError(t, s.Put(ctx, coll, id, want))

	require.NoError(t, s.Get(ctx, coll, id, &got))
	assert.Equal(t, want, got)

	ok, err = s.Exists(ctx, coll, id)
	require.NoError(t, err)
	assert.True(t, ok)

	// Collections are isolated
	ok, err = s.Exists(ctx, "client_records", id)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, s.Create(ctx, coll, id, want), ErrExists)

	want.Name = "Acme Veterinary"
	require.NoError(t, s.Put(ctx, coll, id, want))
	require.NoError(t, s.Get(ctx, coll, id, &got))
	assert.Equal(t, "Acme Veterinary", got.Name)

	require.NoError(t, s.Delete(ctx, coll, id))
	assert.ErrorIs(t, s.Get(ctx, coll, id, &got), ErrNotFound)
	require.NoError(t, s.Delete(ctx, coll, id), "deleting a missing document is not an error")

	require.NoError(t, s.Create(ctx, coll, id, want))
	assert.ErrorIs(t, s.Create(ctx, coll, id, want), ErrExists)
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	exerciseStore(t, m)
	assert.Equal(t, 1, m.Len("clinic_records"))
	assert.NoError(t, m.Close())
}

func TestEmbeddedNATS(t *testing.T) {
	s, err := OpenNATS(context.Background(), "", t.TempDir())
	require.NoError(t, err)
	defer func() { assert.NoError(t, s.Close()) }()

	exerciseStore(t, s)
}

func TestRedis(t *testing.T) {
	url := os.Getenv("INTAKE_TEST_REDIS_URL")
	if url == "" {
		t.Skip("INTAKE_TEST_REDIS_URL not set")
	}
	s, err := OpenRedis(context.Background(), url)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	_ = s.Delete(ctx, "clinic_records", "desk@acme.example")
	exerciseStore(t, s)
	require.NoError(t, s.Delete(ctx, "clinic_records", "desk@acme.example"))
}

func TestOpen(t *testing.T) {
	s, err := Open(context.Background(), Config{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	_, err = Open(context.Background(), Config{Backend: "postgres"})
	assert.ErrorIs(t, err, ErrUnknownBackend)

	_, err = Open(context.Background(), Config{Backend: BackendRedis})
	assert.Error(t, err)

	_, err = Open(context.Background(), Config{Backend: BackendNATS})
	assert.Error(t, err, "embedded nats needs a directory")
}

func TestNATSKeyEncoding(t *testing.T) {
	key := natsKey("a.b+c@example.com")
	assert.Regexp(t, `^[-_a-zA-Z0-9]+$`, key)
	assert.NotEqual(t, natsKey("a@b.co"), natsKey("a@b.com"))
}
