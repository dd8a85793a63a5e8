package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileRepo serves profiles from <dir>/<uid>.json.
type FileRepo struct {
	dir string
}

// NewFileRepo creates a repository over dir.
func NewFileRepo(dir string) *FileRepo {
	return &FileRepo{dir: dir}
}

func (r *FileRepo) path(uid string) (string, error) {
	if !ValidUID(uid) {
		return "", ErrInvalidUID
	}
	return filepath.Join(r.dir, uid+".json"), nil
}

func (r *FileRepo) Get(_ context.Context, uid string) (*Profile, error) {
	path, err := r.path(uid)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", uid, err)
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", uid, err)
	}
	p.UID = uid
	return &p, nil
}

func (r *FileRepo) Put(_ context.Context, p *Profile) error {
	path, err := r.path(p.UID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode profile %s: %w", p.UID, err)
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create profiles dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write profile %s: %w", p.UID, err)
	}
	return os.Rename(tmp, path)
}
