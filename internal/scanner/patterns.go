package scanner

import (
	"path/filepath"
	"strings"
)

// matchDirPattern checks if a directory path relative to the root matches.
//
//	**/name/**  any path component equals name
//	dir/**      dir itself or anything below it
//	dir         same as dir/**
func matchDirPattern(relPath, pattern string) bool {
	sep := string(filepath.Separator)
	pattern = filepath.FromSlash(pattern)

	if strings.HasPrefix(pattern, "**"+sep) {
		name := strings.TrimSuffix(strings.TrimPrefix(pattern, "**"+sep), sep+"**")
		for _, part := range strings.Split(relPath, sep) {
			if part == name {
				return true
			}
		}
		return false
	}

	prefix := strings.TrimSuffix(pattern, sep+"**")
	return relPath == prefix || strings.HasPrefix(relPath, prefix+sep)
}

// matchFilePattern checks if a file matches a pattern. Glob characters are
// matched against the base name unless the pattern has a directory part.
func matchFilePattern(baseName, relPath, pattern string) bool {
	sep := string(filepath.Separator)
	pattern = filepath.FromSlash(pattern)

	if strings.HasPrefix(pattern, "**"+sep) {
		rest := strings.TrimPrefix(pattern, "**"+sep)
		if strings.HasSuffix(rest, sep+"**") {
			return matchDirPattern(filepath.Dir(relPath), pattern)
		}
		matched, err := filepath.Match(rest, baseName)
		return err == nil && matched
	}

	if strings.HasSuffix(pattern, sep+"**") {
		return strings.HasPrefix(relPath, strings.TrimSuffix(pattern, "**"))
	}

	if strings.Contains(pattern, sep) {
		matched, err := filepath.Match(pattern, relPath)
		return err == nil && matched
	}

	matched, err := filepath.Match(pattern, baseName)
	return err == nil && matched
}
