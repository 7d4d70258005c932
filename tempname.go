package mmapbuf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/hupe1980/mmapbuf/internal/fs"
)

const tempNameAttempts = 8

// tempKeyFile creates an empty, uniquely named file whose identity seeds an
// IPC key. Every call gets its own name.
func tempKeyFile(fsys fs.FileSystem, dir string) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	for range tempNameAttempts {
		name := filepath.Join(dir, "mmapbuf-"+uuid.NewString()+".key")
		f, err := fsys.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create key file: %w", err)
		}
		if err := f.Close(); err != nil {
			_ = fsys.Remove(name)
			return "", fmt.Errorf("create key file: %w", err)
		}
		return name, nil
	}
	return "", fmt.Errorf("create key file: no unique name after %d attempts", tempNameAttempts)
}
