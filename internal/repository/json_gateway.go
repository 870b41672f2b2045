package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Leganyst/interview-slots/internal/model"
)

// JSONFileGateway хранит каталог одним JSON-документом (data.json).
type JSONFileGateway struct {
	path string
}

func NewJSONFileGateway(path string) *JSONFileGateway {
	return &JSONFileGateway{path: path}
}

// Path возвращает путь к документу.
func (g *JSONFileGateway) Path() string { return g.path }

// Load читает документ. Отсутствующий файл означает пустой каталог.
func (g *JSONFileGateway) Load(ctx context.Context) (*model.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(g.path)
	if errors.Is(err, fs.ErrNotExist) {
		return model.NewCatalog(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", g.path, err)
	}

	c := model.NewCatalog()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("decode %s: %w", g.path, err)
	}
	c.EnsureMaps()
	return c, nil
}

// Save пишет документ во временный файл рядом с целевым и атомарно переименовывает его,
// так что после сбоя на диске остаётся либо старый, либо новый снимок.
func (g *JSONFileGateway) Save(ctx context.Context, c *model.Catalog) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	dir := filepath.Dir(g.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(g.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("fsync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// последняя точка, где можно отказаться от записи
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, g.path); err != nil {
		return fmt.Errorf("rename %s: %w", g.path, err)
	}
	committed = true
	return nil
}
