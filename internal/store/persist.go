package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/internal/answers"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/constants"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by Load when nothing was persisted yet.
var ErrNotFound = errors.New("no persisted answers")

// Persister loads and saves the aggregate. Saves are last-write-wins.
type Persister interface {
	Load(ctx context.Context) (answers.Answers, error)
	Save(ctx context.Context, a answers.Answers) error
}

// Decode validates a persisted document against the answers schema,
// decodes it and migrates it to the current schema version.
func Decode(data []byte) (answers.Answers, error) {
	if err := ValidateDocument(data); err != nil {
		return answers.Answers{}, err
	}
	var a answers.Answers
	if err := json.Unmarshal(data, &a); err != nil {
		return answers.Answers{}, fmt.Errorf("failed to decode answers: %w", err)
	}
	return answers.Migrate(a, constants.SchemaVersion), nil
}

// Encode serializes the aggregate with the current schema version.
func Encode(a answers.Answers) ([]byte, error) {
	a.SchemaVersion = constants.SchemaVersion
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}
	return data, nil
}

// MemoryPersister keeps the encoded aggregate in memory.
type MemoryPersister struct {
	mu   sync.Mutex
	data []byte
}

// Load implements Persister.
func (m *MemoryPersister) Load(_ context.Context) (answers.Answers, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return answers.Answers{}, ErrNotFound
	}
	return Decode(m.data)
}

// Save implements Persister.
func (m *MemoryPersister) Save(_ context.Context, a answers.Answers) error {
	data, err := Encode(a)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	return nil
}

// FilePersister stores the aggregate as a JSON file.
type FilePersister struct {
	Path string
}

// Load implements Persister.
func (f FilePersister) Load(_ context.Context) (answers.Answers, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return answers.Answers{}, ErrNotFound
		}
		return answers.Answers{}, fmt.Errorf("failed to read %s: %w", f.Path, err)
	}
	a, err := Decode(data)
	if err != nil {
		return answers.Answers{}, fmt.Errorf("%s: %w", f.Path, err)
	}
	return a, nil
}

// Save writes to a temporary file in the same directory and renames it over
// the target, so readers never see a partial document.
func (f FilePersister) Save(_ context.Context, a answers.Answers) error {
	data, err := Encode(a)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.Path)
	tmp, err := os.CreateTemp(dir, filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, f.Path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", f.Path, err)
	}
	return nil
}

// RedisPersister stores the aggregate under one Redis key.
type RedisPersister struct {
	Client *redis.Client
	Key    string
	TTL    time.Duration
}

// NewRedisPersister connects to addr and verifies the connection.
func NewRedisPersister(ctx context.Context, addr, password string, db int, key string) (*RedisPersister, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	if key == "" {
		key = constants.DefaultRedisKey
	}
	return &RedisPersister{Client: client, Key: key}, nil
}

// Load implements Persister.
func (r *RedisPersister) Load(ctx context.Context) (answers.Answers, error) {
	data, err := r.Client.Get(ctx, r.Key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return answers.Answers{}, ErrNotFound
		}
		return answers.Answers{}, fmt.Errorf("failed to get %s: %w", r.Key, err)
	}
	return Decode(data)
}

// Save implements Persister.
func (r *RedisPersister) Save(ctx context.Context, a answers.Answers) error {
	data, err := Encode(a)
	if err != nil {
		return err
	}
	if err := r.Client.Set(ctx, r.Key, data, r.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", r.Key, err)
	}
	return nil
}

// Close closes the Redis connection.
func (r *RedisPersister) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}
