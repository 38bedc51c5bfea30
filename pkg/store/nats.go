// SPDX-License-Identifier: Apache-2.0
package store

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const bucketPrefix = "intake_"

// NATS stores each collection in a JetStream key-value bucket
type NATS struct {
	server *server.Server // nil when connected to a remote server
	conn   *nats.Conn
	js     jetstream.JetStream

	mu      sync.Mutex
	buckets map[string]jetstream.KeyValue
}

// StartEmbeddedNATS starts an in-process NATS server with JetStream file
// storage under dataDir. No network port is opened.
func StartEmbeddedNATS(dataDir string) (*server.Server, error) {
	log.Debug("Starting embedded NATS server", "dir", dataDir)

	opts := &server.Options{
		JetStream:  true,
		StoreDir:   dataDir,
		DontListen: true,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create nats server: %w", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(4 * time.Second) {
		ns.Shutdown()
		return nil, errors.New("nats server failed to start within timeout")
	}

	log.Debug("NATS server ready for connections")
	return ns, nil
}

// OpenNATS connects to url, or to an embedded server storing under dir
// when url is empty
func OpenNATS(ctx context.Context, url, dir string) (*NATS, error) {
	var (
		ns   *server.Server
		conn *nats.Conn
		err  error
	)

	if url == "" {
		if dir == "" {
			return nil, errors.New("embedded nats store requires store.nats.dir")
		}
		ns, err = StartEmbeddedNATS(dir)
		if err != nil {
			return nil, err
		}
		conn, err = nats.Connect("", nats.InProcessServer(ns))
	} else {
		conn, err = nats.Connect(url, nats.Name("intake"))
	}
	if err != nil {
		if ns != nil {
			ns.Shutdown()
		}
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		if ns != nil {
			ns.Shutdown()
		}
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	return &NATS{
		server:  ns,
		conn:    conn,
		js:      js,
		buckets: make(map[string]jetstream.KeyValue),
	}, nil
}

// bucket returns the key-value bucket for a collection, creating it on first use
func (n *NATS) bucket(ctx context.Context, collection string) (jetstream.KeyValue, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if kv, ok := n.buckets[collection]; ok {
		return kv, nil
	}

	name := bucketPrefix + collection
	kv, err := n.js.KeyValue(ctx, name)
	if errors.Is(err, jetstream.ErrBucketNotFound) {
		log.Debug("Creating key-value bucket", "bucket", name)
		kv, err = n.js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:  name,
			Storage: jetstream.FileStorage,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", name, err)
	}

	n.buckets[collection] = kv
	return kv, nil
}

// natsKey encodes ids such as email addresses into the key alphabet
// JetStream accepts
func natsKey(id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

// Get implements Store
func (n *NATS) Get(ctx context.Context, collection, id string, dst any) error {
	kv, err := n.bucket(ctx, collection)
	if err != nil {
		return err
	}
	entry, err := kv.Get(ctx, natsKey(id))
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return notFound(collection, id)
	}
	if err != nil {
		return fmt.Errorf("nats get %s/%s: %w", collection, id, err)
	}
	return decode(collection, id, entry.Value(), dst)
}

// Put implements Store
func (n *NATS) Put(ctx context.Context, collection, id string, doc any) error {
	data, err := encode(collection, id, doc)
	if err != nil {
		return err
	}
	kv, err := n.bucket(ctx, collection)
	if err != nil {
		return err
	}
	if _, err := kv.Put(ctx, natsKey(id), data); err != nil {
		return fmt.Errorf("nats put %s/%s: %w", collection, id, err)
	}
	return nil
}

// Create implements Store
func (n *NATS) Create(ctx context.Context, collection, id string, doc any) error {
	data, err := encode(collection, id, doc)
	if err != nil {
		return err
	}
	kv, err := n.bucket(ctx, collection)
	if err != nil {
		return err
	}
	_, err = kv.Create(ctx, natsKey(id), data)
	if errors.Is(err, jetstream.ErrKeyExists) {
		return exists(collection, id)
	}
	if err != nil {
		return fmt.Errorf("nats create %s/%s: %w", collection, id, err)
	}
	return nil
}

// Exists implements Store
func (n *NATS) Exists(ctx context.Context, collection, id string) (bool, error) {
	kv, err := n.bucket(ctx, collection)
	if err != nil {
		return false, err
	}
	_, err = kv.Get(ctx, natsKey(id))
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("nats get %s/%s: %w", collection, id, err)
	}
	return true, nil
}

// Delete implements Store
func (n *NATS) Delete(ctx context.Context, collection, id string) error {
	kv, err := n.bucket(ctx, collection)
	if err != nil {
		return err
	}
	if err := kv.Delete(ctx, natsKey(id)); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("nats delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// Close drains the connection and stops the embedded server, if any
func (n *NATS) Close() error {
	log.Debug("Starting NATS shutdown")

	if n.conn != nil {
		drainDone := make(chan error, 1)
		go func() {
			drainDone <- n.conn.Drain()
		}()

		select {
		case err := <-drainDone:
			if err != nil {
				log.Warn("NATS drain failed, forcing close", "err", err)
				n.conn.Close()
			}
		case <-time.After(2 * time.Second):
			log.Warn("NATS drain timed out after 2s, forcing close")
			n.conn.Close()
		}
	}

	if n.server != nil {
		n.server.Shutdown()

		shutdownDone := make(chan struct{})
		go func() {
			n.server.WaitForShutdown()
			close(shutdownDone)
		}()

		select {
		case <-shutdownDone:
			log.Debug("NATS server shut down cleanly")
		case <-time.After(5 * time.Second):
			return errors.New("NATS server shutdown timed out")
		}
	}

	return nil
}
