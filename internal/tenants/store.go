package tenants

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/247convo/convo-backend/pkg/logging"
)

// ErrNotFound is returned by Raw when no config exists for the client.
var ErrNotFound = errors.New("tenants: config not found")

const configKeyPrefix = "convo:config:"

// Store fetches tenant configuration. Get never fails on an unknown tenant:
// it returns a zero Config so downstream logic degrades to "unavailable".
type Store interface {
	// Get returns the parsed config, or a zero Config when unknown.
	Get(ctx context.Context, clientID string) (Config, error)
	// Raw returns the stored JSON document for widget passthrough.
	Raw(ctx context.Context, clientID string) ([]byte, error)
}

// FileStore reads configs from <dir>/<clientID>.json, matching the layout the
// widget's config endpoint has always served.
type FileStore struct {
	dir    string
	logger *logging.Logger
}

// NewFileStore creates a file-backed config store.
func NewFileStore(dir string, logger *logging.Logger) *FileStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &FileStore{dir: dir, logger: logger}
}

func (s *FileStore) Raw(_ context.Context, clientID string) ([]byte, error) {
	clientID = sanitizeClientID(clientID)
	if clientID == "" {
		return nil, ErrNotFound
	}
	data, err := os.ReadFile(filepath.Join(s.dir, clientID+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("tenants: read config: %w", err)
	}
	return data, nil
}

func (s *FileStore) Get(ctx context.Context, clientID string) (Config, error) {
	data, err := s.Raw(ctx, clientID)
	return decodeConfig(s.logger, clientID, data, err)
}

// RedisStore keeps each tenant's config JSON under convo:config:<clientID>.
type RedisStore struct {
	client *redis.Client
	logger *logging.Logger
}

// NewRedisStore creates a Redis-backed config store.
func NewRedisStore(client *redis.Client, logger *logging.Logger) *RedisStore {
	if client == nil {
		panic("tenants: redis client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisStore{client: client, logger: logger}
}

func (s *RedisStore) Raw(ctx context.Context, clientID string) ([]byte, error) {
	clientID = sanitizeClientID(clientID)
	if clientID == "" {
		return nil, ErrNotFound
	}
	data, err := s.client.Get(ctx, configKeyPrefix+clientID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("tenants: get config: %w", err)
	}
	return data, nil
}

func (s *RedisStore) Get(ctx context.Context, clientID string) (Config, error) {
	data, err := s.Raw(ctx, clientID)
	return decodeConfig(s.logger, clientID, data, err)
}

// Put stores or replaces a tenant's config JSON.
func (s *RedisStore) Put(ctx context.Context, clientID string, raw []byte) error {
	clientID = sanitizeClientID(clientID)
	if clientID == "" {
		return errors.New("tenants: client id required")
	}
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return fmt.Errorf("tenants: invalid config JSON: %w", err)
	}
	if err := s.client.Set(ctx, configKeyPrefix+clientID, raw, 0).Err(); err != nil {
		return fmt.Errorf("tenants: set config: %w", err)
	}
	return nil
}

// decodeConfig turns a Raw result into a Config, treating absence and
// malformed JSON as "unknown tenant" rather than a hard failure.
func decodeConfig(logger *logging.Logger, clientID string, data []byte, err error) (Config, error) {
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Config{}, nil
		}
		return Config{}, err
	}
	var cfg Config
	if jsonErr := json.Unmarshal(data, &cfg); jsonErr != nil {
		logger.Warn("malformed tenant config, treating as empty",
			"client_id", clientID, "error", jsonErr)
		return Config{}, nil
	}
	return cfg, nil
}

// sanitizeClientID strips path separators so file lookups cannot escape the
// config directory.
func sanitizeClientID(clientID string) string {
	clientID = strings.TrimSpace(clientID)
	if strings.ContainsAny(clientID, "/\\.") {
		return ""
	}
	return clientID
}
