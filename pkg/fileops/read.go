package fileops

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrTooLarge is returned when content exceeds the allowed size.
var ErrTooLarge = errors.New("content exceeds size limit")

// ReadFileLimited reads a regular file of at most maxSize bytes.
func ReadFileLimited(path string, maxSize int64) ([]byte, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("invalid size limit: %d", maxSize)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file does not exist: %s", path)
		}
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if info.Size() > maxSize {
		return nil, fmt.Errorf("file size %d bytes exceeds limit %d bytes: %w", info.Size(), maxSize, ErrTooLarge)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("file is not readable: %w", err)
	}
	defer f.Close()

	// The size may have changed since Stat.
	return ReadLimited(f, maxSize)
}

// ReadLimited reads r to EOF, failing with ErrTooLarge once more than
// maxSize bytes arrive.
func ReadLimited(r io.Reader, maxSize int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("more than %d bytes: %w", maxSize, ErrTooLarge)
	}
	return data, nil
}

// ExpandPath expands a leading "~/" to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
