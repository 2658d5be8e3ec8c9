package config

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// EnsureIgnored lists dir (the config directory, relative to projectDir) in
// projectDir's .gitignore so recipes and settings stay out of the repository.
// It only acts when projectDir is a git work tree (holds a .git entry).
// Calling it again is a no-op.
func EnsureIgnored(projectDir, dir string) error {
	if projectDir == "" {
		var err error
		projectDir, err = os.Getwd()
		if err != nil {
			return err
		}
	}
	if _, err := os.Stat(filepath.Join(projectDir, ".git")); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	name := strings.Trim(filepath.ToSlash(filepath.Clean(dir)), "/")
	if name == "" || name == "." || strings.HasPrefix(name, "..") || filepath.IsAbs(dir) {
		return nil // not inside the project
	}

	path := filepath.Join(projectDir, ".gitignore")
	present, err := isIgnored(path, name)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if present {
		return nil
	}
	return appendToGitignore(path, name+"/")
}

// isIgnored reports whether a line of the .gitignore at path covers name
func isIgnored(path, name string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if matchesDirPattern(line, name) {
			return true, nil
		}
	}
	return false, scanner.Err()
}

// matchesDirPattern checks if a gitignore line covers the directory name.
func matchesDirPattern(line, name string) bool {
	normalized := strings.TrimPrefix(line, "/")
	switch normalized {
	case name, name + "/", name + "/*", name + "/**", name + "/**/*":
		return true
	}
	return false
}

// appendToGitignore appends pattern, creating the file if needed. An existing
// file gets a blank line before the new entry.
func appendToGitignore(path, pattern string) error {
	content, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	const comment = "# vt local config and recipes\n"
	var toWrite string
	if len(content) == 0 {
		toWrite = comment + pattern + "\n"
	} else {
		if content[len(content)-1] != '\n' {
			toWrite = "\n"
		}
		toWrite += "\n" + comment + pattern + "\n"
	}
	_, err = file.WriteString(toWrite)
	return err
}
