package setupstate

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

var ErrQuotaExceeded = errors.New("storage quota exceeded")

// LocalStorage is a string key-value store owned by one client
type LocalStorage interface {
	SetItem(key, value string) error
	GetItem(key string) (string, bool, error)
}

// CookieWriter stores a cookie for the API origin
type CookieWriter interface {
	SetCookie(cookie *http.Cookie) error
}

// MemoryStorage keeps items in memory. A positive Quota bounds the total
// size of keys and values in bytes
type MemoryStorage struct {
	Quota int

	mu    sync.RWMutex
	items map[string]string
}

func NewMemoryStorage(quota int) *MemoryStorage {
	return &MemoryStorage{Quota: quota, items: make(map[string]string)}
}

func (m *MemoryStorage) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Quota > 0 {
		size := len(key) + len(value)
		for k, v := range m.items {
			if k != key {
				size += len(k) + len(v)
			}
		}
		if size > m.Quota {
			return ErrQuotaExceeded
		}
	}
	m.items[key] = value
	return nil
}

func (m *MemoryStorage) GetItem(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.items[key]
	return value, ok, nil
}

// FileStorage persists items as a JSON object in a single file
type FileStorage struct {
	path string
	mu   sync.Mutex
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (f *FileStorage) SetItem(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.load()
	if err != nil {
		return err
	}
	items[key] = value

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode storage: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write storage: %w", err)
	}
	return os.Rename(tmp, f.path)
}

func (f *FileStorage) GetItem(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.load()
	if err != nil {
		return "", false, err
	}
	value, ok := items[key]
	return value, ok, nil
}

func (f *FileStorage) load() (map[string]string, error) {
	items := make(map[string]string)
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return items, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read storage: %w", err)
	}
	if len(data) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode storage: %w", err)
	}
	return items, nil
}

// JarCookies writes cookies into the client's cookie jar for origin
type JarCookies struct {
	Jar    http.CookieJar
	Origin *url.URL
}

func (j JarCookies) SetCookie(cookie *http.Cookie) error {
	if j.Jar == nil || j.Origin == nil {
		return errors.New("cookie jar not configured")
	}
	j.Jar.SetCookies(j.Origin, []*http.Cookie{cookie})
	return nil
}
