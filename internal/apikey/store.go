// Package apikey locates the API key used to authenticate against the
// GraphQL endpoint and persists keys set at runtime.
package apikey

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
)

type Source string

const (
	SourceRequest Source = "request"
	SourceSession Source = "session"
	SourceConfig  Source = "config"
	SourceFile    Source = "file"
	SourceNone    Source = "none"
)

var (
	ErrNoKey  = errors.New("no API key configured")
	ErrRemote = errors.New("the API key cannot be changed over HTTP; send it with each request in the X-Success-Api-Key header")
)

type (
	ctxKey    struct{}
	remoteKey struct{}
)

// WithKey attaches a per-request key, e.g. taken from an HTTP header.
func WithKey(ctx context.Context, key string) context.Context {
	key = strings.TrimSpace(key)
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, key)
}

func FromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(ctxKey{}).(string)
	return key, ok && key != ""
}

// WithRemote marks ctx as serving a network caller. Remote callers may pass
// their own key but cannot replace the process key.
func WithRemote(ctx context.Context) context.Context {
	return context.WithValue(ctx, remoteKey{}, true)
}

func IsRemote(ctx context.Context) bool {
	remote, _ := ctx.Value(remoteKey{}).(bool)
	return remote
}

// FileStore keeps a single key in a file. Reads and writes are serialized
// across processes with a lock file next to it.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore { return &FileStore{path: path} }

func (s *FileStore) Path() string { return s.path }

// Load returns "" without error when the file does not exist.
func (s *FileStore) Load() (string, error) {
	if s == nil || s.path == "" {
		return "", nil
	}
	lock := flock.New(s.path + ".lock")
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return "", fmt.Errorf("key dir: %w", err)
	}
	if err := lock.RLock(); err != nil {
		return "", fmt.Errorf("lock key file: %w", err)
	}
	defer lock.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read key file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileStore) Save(key string) error {
	if s == nil || s.path == "" {
		return errors.New("no key file path configured")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("key dir: %w", err)
	}
	lock := flock.New(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock key file: %w", err)
	}
	defer lock.Unlock()

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(strings.TrimSpace(key)+"\n"), 0o600); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace key file: %w", err)
	}
	return nil
}

// Resolver picks the key for a call: request context, then a key set during
// this process, then configuration, then the key file.
type Resolver struct {
	configKey string
	file      *FileStore

	mu      sync.RWMutex
	session string
}

func NewResolver(configKey string, file *FileStore) *Resolver {
	return &Resolver{configKey: strings.TrimSpace(configKey), file: file}
}

func (r *Resolver) Key(ctx context.Context) (string, Source, error) {
	if key, ok := FromContext(ctx); ok {
		return key, SourceRequest, nil
	}
	r.mu.RLock()
	session := r.session
	r.mu.RUnlock()
	if session != "" {
		return session, SourceSession, nil
	}
	if r.configKey != "" {
		return r.configKey, SourceConfig, nil
	}
	key, err := r.file.Load()
	if err != nil {
		return "", SourceNone, err
	}
	if key != "" {
		return key, SourceFile, nil
	}
	return "", SourceNone, ErrNoKey
}

// APIKey adapts Key to the GraphQL client's key function.
func (r *Resolver) APIKey(ctx context.Context) (string, error) {
	key, _, err := r.Key(ctx)
	return key, err
}

// FilePath is the key file location, or "" when none is configured.
func (r *Resolver) FilePath() string {
	if r.file == nil {
		return ""
	}
	return r.file.Path()
}

// Set stores key for the rest of the process and writes it to the key file.
// It fails with ErrRemote for contexts marked by WithRemote.
func (r *Resolver) Set(ctx context.Context, key string) error {
	if IsRemote(ctx) {
		return ErrRemote
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("api key is empty")
	}
	if err := r.file.Save(key); err != nil {
		return err
	}
	r.mu.Lock()
	r.session = key
	r.mu.Unlock()
	return nil
}

// Mask keeps the last four characters visible.
func Mask(key string) string {
	runes := []rune(key)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-4:])
}
