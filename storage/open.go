package storage

import (
	"encoding/hex"
	"fmt"
	"path/filepath"

	"github.com/jrsteele09/go-job-portal/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
)

// fileName is the document FromConfig keeps under the data folder
const fileName = "session.json"

// FromConfig builds the configured storage driver. The returned close func
// releases driver resources and is never nil.
func FromConfig(cfg config.StorageConfig) (Storage, func() error, error) {
	noop := func() error { return nil }

	switch cfg.GetStorageDriver() {
	case config.StorageDriverMemory:
		return NewMemory(), noop, nil

	case config.StorageDriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.GetRedisAddr(),
			Password: cfg.GetRedisPassword(),
		})
		return NewRedis(client, cfg.GetRedisPrefix()), client.Close, nil

	case config.StorageDriverFile, "":
		var opts []FileOption
		if raw := cfg.GetStorageKey(); raw != "" {
			key, err := ParseSealKey(raw)
			if err != nil {
				return nil, noop, err
			}
			opts = append(opts, WithSealKey(key))
		}
		path := filepath.Join(cfg.GetDataFolder(), fileName)
		return NewFile(afero.NewOsFs(), path, opts...), noop, nil
	}

	return nil, noop, fmt.Errorf("[storage FromConfig] unknown storage driver %q", cfg.GetStorageDriver())
}

// ParseSealKey decodes a 64 character hex string into a secretbox key
func ParseSealKey(raw string) ([32]byte, error) {
	var key [32]byte
	b, err := hex.DecodeString(raw)
	if err != nil {
		return key, fmt.Errorf("storage key must be hex: %w", err)
	}
	if len(b) != len(key) {
		return key, fmt.Errorf("storage key must be %d bytes, got %d", len(key), len(b))
	}
	copy(key[:], b)
	return key, nil
}
