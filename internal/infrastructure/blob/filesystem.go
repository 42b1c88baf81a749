package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhoicas/labstock-api/internal/application/ports"
)

// Filesystem guarda los reportes bajo un directorio local. Las claves son rutas relativas.
type Filesystem struct {
	root string
}

var _ ports.ReportStore = (*Filesystem)(nil)

// NewFilesystem crea el directorio raíz si no existe.
func NewFilesystem(root string) (*Filesystem, error) {
	if root == "" {
		root = "./reports"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("blob fs: crear raíz: %w", err)
	}
	return &Filesystem{root: root}, nil
}

// sanitizeKey impide claves absolutas o que escapen de la raíz.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("clave vacía")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return "", fmt.Errorf("clave inválida %q", key)
	}
	return filepath.ToSlash(filepath.Clean(key)), nil
}

// Put escribe el objeto de forma atómica (archivo temporal + rename). Devuelve la ruta final.
func (s *Filesystem) Put(ctx context.Context, key, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	k, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.root, filepath.FromSlash(k))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("blob fs: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("blob fs: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("blob fs: escribir %s: %w", k, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("blob fs: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("blob fs: %w", err)
	}
	return path, nil
}
