package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FilePersistence stores each cart as one JSON blob on disk, the server-side
// analog of a browser's local storage entry. Writes go through a temp file
// and rename so a crash never leaves a half-written cart.
type FilePersistence struct {
	dir string
}

// NewFilePersistence creates the backing directory if needed.
func NewFilePersistence(dir string) (*FilePersistence, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("cart file directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cart directory: %w", err)
	}
	return &FilePersistence{dir: dir}, nil
}

func (f *FilePersistence) Load(ctx context.Context, key string) (*State, error) {
	raw, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("reading cart state: %w", err)
	}

	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decoding cart state: %w", err)
	}
	if state.Items == nil {
		return nil, fmt.Errorf("decoding cart state: missing items list")
	}
	return &state, nil
}

func (f *FilePersistence) Save(ctx context.Context, key string, state *State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding cart state: %w", err)
	}

	target := f.path(key)
	tmp, err := os.CreateTemp(f.dir, "cart-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp cart file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing cart state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp cart file: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing cart file: %w", err)
	}
	return nil
}

func (f *FilePersistence) Delete(ctx context.Context, key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting cart file: %w", err)
	}
	return nil
}

func (f *FilePersistence) path(key string) string {
	return filepath.Join(f.dir, sanitizeKey(key)+".json")
}

// sanitizeKey keeps cart keys safe to use as file names.
func sanitizeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "default"
	}
	return b.String()
}
