package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const maxSecretFileBytes = 64 << 10

// readFileFromAllowedRoot reads path after constraining it to rootDir. Relative
// paths resolve against the root; anything escaping it is rejected before the
// file is opened through os.Root.
func readFileFromAllowedRoot(path, rootDir string) ([]byte, error) {
	cleanedRoot := strings.TrimSpace(rootDir)
	if cleanedRoot == "" {
		cleanedRoot = "/"
	}
	cleanedRoot = filepath.Clean(cleanedRoot)

	cleanedPath := filepath.Clean(path)
	if !filepath.IsAbs(cleanedPath) {
		cleanedPath = filepath.Join(cleanedRoot, cleanedPath)
	}

	rel, err := filepath.Rel(cleanedRoot, cleanedPath)
	if err != nil {
		return nil, err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("file %q is outside allowed root %q", path, cleanedRoot)
	}

	root, err := os.OpenRoot(cleanedRoot)
	if err != nil {
		return nil, err
	}
	defer root.Close()

	file, err := root.Open(rel)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxSecretFileBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxSecretFileBytes {
		return nil, fmt.Errorf("file %q too large: exceeds %d bytes", path, maxSecretFileBytes)
	}
	return data, nil
}
