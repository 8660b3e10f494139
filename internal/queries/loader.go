package queries

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"
)

//go:embed sql/*
var sqlFS embed.FS

const ext = ".sql"

// Loader loads SQL statements from embedded files
type Loader struct {
	cache map[string]string
	mu    sync.RWMutex
}

// NewLoader creates a new query loader
func NewLoader() *Loader {
	return &Loader{
		cache: make(map[string]string),
	}
}

// Load returns the statement at name, e.g. "budgets/get.sql"
func (l *Loader) Load(name string) (string, error) {
	l.mu.RLock()
	if query, ok := l.cache[name]; ok {
		l.mu.RUnlock()
		return query, nil
	}
	l.mu.RUnlock()

	content, err := sqlFS.ReadFile(path.Join("sql", name))
	if err != nil {
		return "", fmt.Errorf("failed to load query %s: %w", name, err)
	}

	query := strings.TrimSpace(string(content))

	l.mu.Lock()
	l.cache[name] = query
	l.mu.Unlock()

	return query, nil
}

// LoadAll loads every statement in dir, keyed by file name without extension
func (l *Loader) LoadAll(dir string) (map[string]string, error) {
	entries, err := sqlFS.ReadDir(path.Join("sql", dir))
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	out := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ext) {
			continue
		}
		query, err := l.Load(path.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		out[strings.TrimSuffix(entry.Name(), ext)] = query
	}

	return out, nil
}

// MustLoad loads a statement and panics on error (for initialization)
func (l *Loader) MustLoad(name string) string {
	query, err := l.Load(name)
	if err != nil {
		panic(fmt.Sprintf("failed to load required query %s: %v", name, err))
	}
	return query
}

// List returns the names of all embedded statements
func (l *Loader) List() ([]string, error) {
	var names []string

	err := fs.WalkDir(sqlFS, "sql", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ext) {
			names = append(names, strings.TrimPrefix(p, "sql/"))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list queries: %w", err)
	}

	return names, nil
}

var defaultLoader = NewLoader()

// Load is a convenience function using the default loader
func Load(name string) (string, error) {
	return defaultLoader.Load(name)
}

// MustLoad is a convenience function using the default loader
func MustLoad(name string) string {
	return defaultLoader.MustLoad(name)
}
