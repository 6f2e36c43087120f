package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	mod := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, mod, mod))
	return path
}

func TestFindSources(t *testing.T) {
	tests := []struct {
		name     string
		files    []string
		expected []string
	}{
		{
			name:     "workbooks and exports",
			files:    []string{"zvozy.xlsx", "zvozy.CSV", "poznamky.pdf", "export.tsv"},
			expected: []string{"zvozy.xlsx", "zvozy.CSV", "export.tsv"},
		},
		{
			name:     "hidden and unsupported skipped",
			files:    []string{".~lock.zvozy.xlsx", "zvozy.ods", "readme"},
			expected: nil,
		},
		{
			name:     "empty directory",
			files:    nil,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for i, name := range tt.files {
				// later entries are newer
				touch(t, dir, name, time.Duration(len(tt.files)-i)*time.Hour)
			}
			require.NoError(t, os.Mkdir(filepath.Join(dir, "archiv.csv"), 0o755))

			found, err := NewDiscovery(nil).FindSources(dir)
			require.NoError(t, err)

			var names []string
			for _, f := range found {
				names = append(names, f.Name)
				assert.Equal(t, filepath.Join(dir, f.Name), f.Path)
			}
			assert.Equal(t, tt.expected, names)
		})
	}
}

func TestFindSources_MissingDirectory(t *testing.T) {
	_, err := NewDiscovery(nil).FindSources(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestResolve(t *testing.T) {
	d := NewDiscovery(nil)

	t.Run("file is used as is", func(t *testing.T) {
		path := touch(t, t.TempDir(), "zvozy.xlsx", 0)
		got, err := d.Resolve(path)
		require.NoError(t, err)
		assert.Equal(t, path, got)
	})

	t.Run("missing path is kept", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "zvozy.xlsx")
		got, err := d.Resolve(path)
		require.NoError(t, err)
		assert.Equal(t, path, got)
	})

	t.Run("directory picks newest export", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "zvozy-2024-01.xlsx", 48*time.Hour)
		newest := touch(t, dir, "zvozy-2024-03.csv", time.Hour)
		touch(t, dir, "zvozy-2024-02.xlsx", 24*time.Hour)

		got, err := d.Resolve(dir)
		require.NoError(t, err)
		assert.Equal(t, newest, got)
	})

	t.Run("directory without exports", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "poznamky.txt.bak", 0)
		_, err := d.Resolve(dir)
		assert.ErrorIs(t, err, ErrNoSources)
	})
}

func TestGetLatestFile(t *testing.T) {
	_, ok := GetLatestFile(nil)
	assert.False(t, ok)

	now := time.Now()
	latest, ok := GetLatestFile([]FileInfo{
		{Name: "a", ModTime: now.Add(-time.Hour)},
		{Name: "b", ModTime: now},
		{Name: "c", ModTime: now.Add(-2 * time.Hour)},
	})
	require.True(t, ok)
	assert.Equal(t, "b", latest.Name)
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()
	path := touch(t, dir, "zvozy.csv", 0)

	assert.NoError(t, ValidateFile(path))
	assert.ErrorIs(t, ValidateFile(filepath.Join(dir, "nope.csv")), os.ErrNotExist)

	err := ValidateFile(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")
}
