package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var logExtensions = map[string]bool{
	".log": true,
	".txt": true,
	".out": true,
}

// IsLogFile checks whether path looks like a plain text log
func IsLogFile(path string) bool {
	return logExtensions[strings.ToLower(filepath.Ext(path))]
}

// FindLogFilesRecursively scans a directory for log files, sorted by path
func FindLogFilesRecursively(directory string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(directory, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		if IsLogFile(path) {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// ExpandPaths expands directory arguments into the log files they contain.
// Regular files are kept as given, whatever their extension.
func ExpandPaths(paths []string) ([]string, error) {
	var expanded []string

	for _, path := range paths {
		fi, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", path, err)
		}

		if !fi.IsDir() {
			expanded = append(expanded, path)
			continue
		}

		files, err := FindLogFilesRecursively(path)
		if err != nil {
			return nil, fmt.Errorf("failed to scan directory %s: %w", path, err)
		}
		expanded = append(expanded, files...)
	}

	return expanded, nil
}
