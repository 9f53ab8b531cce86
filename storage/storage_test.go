package storage_test

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/go-job-portal/internal/config"
	perrors "github.com/jrsteele09/go-job-portal/internal/errors"
	"github.com/jrsteele09/go-job-portal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// exerciseStorage runs the contract every driver must honour
func exerciseStorage(t *testing.T, s storage.Storage) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "accessToken")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, "accessToken", "a1"))
	require.NoError(t, s.Set(ctx, "tokenExpiry", "3600000"))

	v, ok, err := s.Get(ctx, "accessToken")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a1", v)

	require.NoError(t, s.Set(ctx, "accessToken", "a2"))
	v, _, err = s.Get(ctx, "accessToken")
	require.NoError(t, err)
	require.Equal(t, "a2", v)

	require.NoError(t, s.Remove(ctx, "accessToken"))
	require.NoError(t, s.Remove(ctx, "accessToken"))
	_, ok, err = s.Get(ctx, "accessToken")
	require.NoError(t, err)
	require.False(t, ok)

	v, ok, err = s.Get(ctx, "tokenExpiry")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "3600000", v)
}

func TestMemory(t *testing.T) {
	exerciseStorage(t, storage.NewMemory())
}

func TestFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	exerciseStorage(t, storage.NewFile(fs, "/data/session.json"))

	// A second instance over the same file sees the same values
	again := storage.NewFile(fs, "/data/session.json")
	v, ok, err := again.Get(context.Background(), "tokenExpiry")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "3600000", v)
}

func TestFileSealed(t *testing.T) {
	fs := afero.NewMemMapFs()
	var key [32]byte
	copy(key[:], "0123456789abcdef0123456789abcdef")

	s := storage.NewFile(fs, "/data/session.json", storage.WithSealKey(key))
	exerciseStorage(t, s)

	require.NoError(t, s.Set(context.Background(), "refreshToken", "very-secret-refresh"))
	raw, err := afero.ReadFile(fs, "/data/session.json")
	require.NoError(t, err)
	require.False(t, strings.Contains(string(raw), "very-secret-refresh"))

	var other [32]byte
	copy(other[:], "ffffffffffffffffffffffffffffffff")
	_, _, err = storage.NewFile(fs, "/data/session.json", storage.WithSealKey(other)).Get(context.Background(), "refreshToken")
	require.ErrorIs(t, err, perrors.ErrStorageCorrupt)
}

func TestFileCorrupt(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/session.json", []byte("{not json"), 0o600))

	_, _, err := storage.NewFile(fs, "/data/session.json").Get(context.Background(), "accessToken")
	require.ErrorIs(t, err, perrors.ErrStorageCorrupt)
}

func TestFileReadOnly(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())

	err := storage.NewFile(fs, "/data/session.json").Set(context.Background(), "accessToken", "a1")
	require.ErrorIs(t, err, perrors.ErrStorageUnavailable)
}

func TestRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	exerciseStorage(t, storage.NewRedis(client, "portal"))
	require.True(t, mr.Exists("portal:tokenExpiry"))
}

func TestRedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	_, _, err := storage.NewRedis(client, "portal").Get(context.Background(), "accessToken")
	require.ErrorIs(t, err, perrors.ErrStorageUnavailable)
}

func TestParseSealKey(t *testing.T) {
	_, err := storage.ParseSealKey(strings.Repeat("ab", 32))
	require.NoError(t, err)

	_, err = storage.ParseSealKey("abcd")
	require.Error(t, err)

	_, err = storage.ParseSealKey(strings.Repeat("zz", 32))
	require.Error(t, err)
}

func TestFromConfigMemory(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	s, closeFn, err := storage.FromConfig(config.Storage{})
	require.NoError(t, err)
	require.NoError(t, closeFn())
	require.IsType(t, &storage.Memory{}, s)
}

func TestFromConfigUnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "floppy")
	_, closeFn, err := storage.FromConfig(config.Storage{})
	require.Error(t, err)
	require.NotNil(t, closeFn)
}
