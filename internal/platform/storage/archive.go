package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"payrolldocs/internal/platform/crypto"
)

var ErrNotFound = errors.New("stored document not found")

// Archive keeps generated documents on disk, sealed when a key is configured.
type Archive struct {
	dir    string
	sealer *crypto.Sealer
}

func NewArchive(dir string, sealer *crypto.Sealer) *Archive {
	if sealer == nil {
		sealer, _ = crypto.New("")
	}
	return &Archive{dir: dir, sealer: sealer}
}

// Put stores data under id and returns the file path written.
func (a *Archive) Put(id string, data []byte) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("invalid document id %q", id)
	}
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", err
	}
	sealed, err := a.sealer.Seal(id, data)
	if err != nil {
		return "", err
	}
	path := a.path(id)
	if err := os.WriteFile(path, sealed, 0o600); err != nil {
		return "", err
	}
	return path, nil
}

func (a *Archive) Get(id string) ([]byte, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	data, err := os.ReadFile(a.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a.sealer.Open(id, data)
}

func (a *Archive) path(id string) string {
	if a.sealer.Configured() {
		return filepath.Join(a.dir, id+".pdf.enc")
	}
	return filepath.Join(a.dir, id+".pdf")
}
