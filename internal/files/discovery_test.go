package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string, mod time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	require.NoError(t, os.Chtimes(path, mod, mod))
	return path
}

func TestFindTableFiles(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	touch(t, dir, "store_data.xlsx", base.Add(2*time.Hour))
	touch(t, dir, "transaction_data.csv", base)
	touch(t, dir, "~$store_data.xlsx", base)
	touch(t, dir, "notes.md", base)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.csv"), 0755))

	files, err := NewDiscovery(dir).FindTableFiles(".")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "transaction_data.csv", files[0].Name)
	assert.Equal(t, "store_data.xlsx", files[1].Name)

	_, err = NewDiscovery(dir).FindTableFiles("missing")
	assert.Error(t, err)
}

func TestResolveTable(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	csvPath := touch(t, dir, "transaction_data.csv", now)
	xlsxPath := touch(t, dir, "Store_Data.xlsx", now)
	touch(t, dir, "product_data.txt", now)
	productXLSX := touch(t, dir, "product_data.xlsx", now)

	d := NewDiscovery(dir)

	tests := []struct {
		name string
		path string
		want string
	}{
		{"existing file", "transaction_data.csv", csvPath},
		{"other extension, case-insensitive stem", "store_data.csv", xlsxPath},
		{"preference order", "product_data.csv", productXLSX},
		{"nothing matches", "missing.csv", filepath.Join(dir, "missing.csv")},
		{"absolute path", filepath.Join(dir, "store_data.csv"), xlsxPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.ResolveTable(tt.path))
		})
	}
}
