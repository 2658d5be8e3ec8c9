package config

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrNoDataFile is returned when no data file is found walking up from a directory
var ErrNoDataFile = errors.New("no data.csv found")

// DataFileCandidates are the relative paths checked in each directory, in order.
var DataFileCandidates = []string{
	"data.csv",
	filepath.Join("public", "data.csv"),
}

// ResolveDataSource picks the CSV source: the configured value when set,
// otherwise the nearest data file above the working directory.
func ResolveDataSource(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return FindDataFile(dir)
}

// FindDataFile walks up from dir looking for one of DataFileCandidates.
// It does not go above the home directory.
func FindDataFile(dir string) (string, error) {
	home, _ := os.UserHomeDir()

	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		for _, rel := range DataFileCandidates {
			path := filepath.Join(dir, rel)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break // Reached filesystem root
		}
		// Don't go above home directory
		if home != "" && dir == home {
			break
		}
		dir = parent
	}
	return "", ErrNoDataFile
}
