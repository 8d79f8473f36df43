package tenant

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dropDatabas3/hellojohn-lock/internal/connection"
)

// LoadFile lee un descriptor guardado (JSON o JSONP).
func LoadFile(path string) (*connection.Descriptor, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	raw, err := StripJSONP(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return Decode(raw)
}

// SaveFile escribe el descriptor de forma atómica: tmp -> fsync -> rename.
// Si el rename falla (Windows con el destino abierto) reintenta con remove+rename.
func SaveFile(path string, raw []byte) error {
	if _, err := Decode(raw); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".descriptor-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(raw); err != nil {
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("fsync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	_ = os.Chmod(tmpPath, 0o644)

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(path)
		if err2 := os.Rename(tmpPath, path); err2 != nil {
			return fmt.Errorf("rename: %v (after remove: %v)", err, err2)
		}
	}
	return nil
}
