package source

import (
	"os"
	"path/filepath"
	"strings"
)

var extFormats = map[string]Format{
	".jsonl": FormatJSONL,
	".csv":   FormatCSV,
	".pdf":   FormatPDF,
}

// ScanDir walks the data directory and discovers statement files. A
// missing directory yields no files and no error.
func ScanDir(dataDir string) ([]DiscoveredFile, error) {
	info, err := os.Stat(dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []DiscoveredFile

	err = filepath.WalkDir(dataDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() {
			if path != dataDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		format, ok := extFormats[strings.ToLower(filepath.Ext(path))]
		if !ok {
			return nil
		}

		account := ""
		if rel, err := filepath.Rel(dataDir, filepath.Dir(path)); err == nil && rel != "." {
			account = filepath.ToSlash(rel)
		}

		files = append(files, DiscoveredFile{
			Path:    path,
			Format:  format,
			Account: account,
		})
		return nil
	})

	return files, err
}

// CountAccounts returns the number of distinct account directories.
func CountAccounts(files []DiscoveredFile) int {
	seen := make(map[string]struct{})
	for _, f := range files {
		seen[f.Account] = struct{}{}
	}
	return len(seen)
}
