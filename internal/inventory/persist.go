package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
)

// ErrNoSnapshot is returned by a Persister when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no inventory snapshot")

type Persister interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snapshot Snapshot) error
}

func (s Snapshot) ToJSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

func SnapshotFromJSON(data []byte) (Snapshot, error) {
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("invalid inventory snapshot: %w", err)
	}
	if snapshot == nil {
		return nil, errors.New("invalid inventory snapshot: null document")
	}

	return snapshot, nil
}

// FilePersister stores the snapshot as a JSON document. Saves write a
// temporary file next to the target and rename it over the old one, so
// readers never observe a partial document.
type FilePersister struct {
	path string
}

func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

func (p *FilePersister) Load(_ context.Context) (Snapshot, error) {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}

	return SnapshotFromJSON(data)
}

func (p *FilePersister) Save(_ context.Context, snapshot Snapshot) error {
	data, err := snapshot.ToJSON()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(p.path), filepath.Base(p.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write inventory: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync inventory: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return err
	}

	if err = os.Rename(tmpName, p.path); err != nil {
		return fmt.Errorf("failed to replace inventory: %w", err)
	}

	return nil
}

// RedisPersister keeps the whole snapshot as one JSON string under a key.
type RedisPersister struct {
	client *redis.Client
	key    string
}

func NewRedisPersister(client *redis.Client, key string) *RedisPersister {
	if key == "" {
		key = "inventory"
	}
	return &RedisPersister{client: client, key: key}
}

func (p *RedisPersister) Load(ctx context.Context) (Snapshot, error) {
	data, err := p.client.Get(ctx, p.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}

	return SnapshotFromJSON(data)
}

func (p *RedisPersister) Save(ctx context.Context, snapshot Snapshot) error {
	data, err := snapshot.ToJSON()
	if err != nil {
		return err
	}

	return p.client.Set(ctx, p.key, data, 0).Err()
}
