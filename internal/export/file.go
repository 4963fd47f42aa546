package export

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hpungsan/docmint/internal/errors"
)

// ReadInput reads a local input file. The final path component must not be
// a symlink.
func ReadInput(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.NewInvalidRequest("input path is required")
	}
	f, err := openFileNoFollowRead(filepath.Clean(path))
	if err != nil {
		if errors.As(err) != nil {
			return nil, err
		}
		return nil, errors.NewInvalidRequest(fmt.Sprintf("cannot open %s: %v", path, err))
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if info.IsDir() {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("%s is a directory", path))
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("read %s: %w", path, err))
	}
	return data, nil
}

// Write stores data at path through a temp file and an atomic rename, so an
// existing file survives a failed write. Parent directories are created.
func Write(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create output directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		if errors.As(err) != nil {
			return err
		}
		return errors.NewInternal(fmt.Errorf("failed to create output file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Close(); err != nil {
		file = nil
		return errors.NewInternal(err)
	}
	file = nil

	if err := os.Rename(tempPath, path); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to finalize output file: %w", err))
	}
	success = true
	return nil
}
