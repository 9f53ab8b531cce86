package storage

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	perrors "github.com/jrsteele09/go-job-portal/internal/errors"
	"github.com/spf13/afero"
	"golang.org/x/crypto/nacl/secretbox"
)

var _ Storage = (*File)(nil)

const nonceSize = 24

// File keeps all keys in one JSON document on an afero filesystem. Every write
// replaces the document atomically through a temp file and rename.
type File struct {
	mu      sync.Mutex
	fs      afero.Fs
	path    string
	sealKey *[32]byte
}

type FileOption func(*File)

// WithSealKey encrypts each value with NaCl secretbox under key
func WithSealKey(key [32]byte) FileOption {
	return func(f *File) {
		f.sealKey = &key
	}
}

// NewFile creates file storage at path. The file is created on first write.
func NewFile(fs afero.Fs, path string, opts ...FileOption) *File {
	f := &File{fs: fs, path: path}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return "", false, err
	}
	raw, ok := values[key]
	if !ok {
		return "", false, nil
	}
	value, err := f.open(raw)
	if err != nil {
		return "", false, perrors.Wrapf(err, "[File Get] key %s", key)
	}
	return value, true, nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	sealed, err := f.seal(value)
	if err != nil {
		return perrors.Wrapf(err, "[File Set] key %s", key)
	}
	values[key] = sealed
	return f.save(values)
}

func (f *File) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return f.save(values)
}

func (f *File) load() (map[string]string, error) {
	data, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("%w: read %s: %v", perrors.ErrStorageUnavailable, f.path, err)
	}
	values := make(map[string]string)
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", perrors.ErrStorageCorrupt, f.path, err)
	}
	return values, nil
}

func (f *File) save(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("[File save] marshal: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := f.fs.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%w: mkdir %s: %v", perrors.ErrStorageUnavailable, dir, err)
	}
	tmp, err := afero.TempFile(f.fs, dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: temp file: %v", perrors.ErrStorageUnavailable, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = f.fs.Remove(tmpName)
		return fmt.Errorf("%w: write: %v", perrors.ErrStorageUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		_ = f.fs.Remove(tmpName)
		return fmt.Errorf("%w: close: %v", perrors.ErrStorageUnavailable, err)
	}
	if err := f.fs.Rename(tmpName, f.path); err != nil {
		_ = f.fs.Remove(tmpName)
		return fmt.Errorf("%w: rename: %v", perrors.ErrStorageUnavailable, err)
	}
	return nil
}

func (f *File) seal(value string) (string, error) {
	if f.sealKey == nil {
		return value, nil
	}
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(value), &nonce, f.sealKey)
	return base64.RawStdEncoding.EncodeToString(box), nil
}

func (f *File) open(raw string) (string, error) {
	if f.sealKey == nil {
		return raw, nil
	}
	box, err := base64.RawStdEncoding.DecodeString(raw)
	if err != nil || len(box) < nonceSize {
		return "", perrors.ErrStorageCorrupt
	}
	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])
	plain, ok := secretbox.Open(nil, box[nonceSize:], &nonce, f.sealKey)
	if !ok {
		return "", perrors.ErrStorageCorrupt
	}
	return string(plain), nil
}
