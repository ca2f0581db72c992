package fsx

import "path/filepath"

// canonicalize resolves path to an absolute, cleaned form. Every fsx
// operation canonicalizes its input before touching the host filesystem or
// the open-file table, so two different spellings of the same file
// always collide on the same table entry.
func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}
