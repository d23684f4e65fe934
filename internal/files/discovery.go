package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// TableExtensions lists the input formats in resolution preference order
var TableExtensions = []string{".csv", ".xlsx", ".xlsm", ".txt"}

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery locates input tables on disk
type Discovery struct {
	basePath string
}

// NewDiscovery creates a discovery rooted at basePath. Relative directories
// passed to its methods are joined to it.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) abs(path string) string {
	if filepath.IsAbs(path) || d.basePath == "" {
		return path
	}
	return filepath.Join(d.basePath, path)
}

// FindTableFiles lists the table files in dir, oldest first. Excel lock
// files are skipped.
func (d *Discovery) FindTableFiles(dir string) ([]FileInfo, error) {
	fullPath := d.abs(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "~$") || !isTableFile(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.Before(files[j].ModTime)
	})
	return files, nil
}

// ResolveTable returns path when it exists. Otherwise it looks in the same
// directory for a file with the same stem and another table extension,
// matching names case-insensitively, and returns the first found in
// TableExtensions order. When nothing matches path is returned unchanged so
// the caller reports the configured name.
func (d *Discovery) ResolveTable(path string) string {
	path = d.abs(path)
	if _, err := os.Stat(path); err == nil {
		return path
	}

	dir := filepath.Dir(path)
	stem := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))

	found, err := d.FindTableFiles(dir)
	if err != nil {
		return path
	}

	byExt := make(map[string]string)
	for _, f := range found {
		ext := strings.ToLower(filepath.Ext(f.Name))
		if strings.ToLower(strings.TrimSuffix(f.Name, filepath.Ext(f.Name))) != stem {
			continue
		}
		if _, seen := byExt[ext]; !seen {
			byExt[ext] = f.Path
		}
	}
	for _, ext := range TableExtensions {
		if p, ok := byExt[ext]; ok {
			return p
		}
	}
	return path
}

func isTableFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range TableExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
