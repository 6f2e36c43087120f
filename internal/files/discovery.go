package files

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"wastelookup/internal/collection"
)

// ErrNoSources is returned when a source directory holds no supported export.
var ErrNoSources = errors.New("no supported data files in directory")

// FileInfo describes a discovered data file.
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery finds data exports on disk.
type Discovery struct {
	logger *slog.Logger
}

// NewDiscovery creates a Discovery. A nil logger discards output.
func NewDiscovery(logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Discovery{logger: logger}
}

// FindSources lists the supported data files in dir, oldest first.
// Hidden files and subdirectories are skipped.
func (d *Discovery) FindSources(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var found []FileInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name[0] == '.' || !collection.Supported(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		found = append(found, FileInfo{
			Path:    filepath.Join(dir, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].ModTime.Equal(found[j].ModTime) {
			return found[i].Name < found[j].Name
		}
		return found[i].ModTime.Before(found[j].ModTime)
	})
	return found, nil
}

// Resolve maps a configured source path to the file to read. A path that
// does not exist yet is returned unchanged; the service reports it as
// unavailable until it appears.
func (d *Discovery) Resolve(path string) (string, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		d.logger.Warn("data source does not exist yet", slog.String("path", path))
		return path, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return path, nil
	}

	found, err := d.FindSources(path)
	if err != nil {
		return "", err
	}
	latest, ok := GetLatestFile(found)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoSources, path)
	}
	d.logger.Info("resolved data source directory",
		slog.String("directory", path),
		slog.String("file", latest.Name),
		slog.Int("candidates", len(found)))
	return latest.Path, nil
}

// GetLatestFile returns the most recently modified file from a list.
// Ties go to the later entry.
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}
	latest := files[0]
	for _, file := range files[1:] {
		if !file.ModTime.Before(latest.ModTime) {
			latest = file
		}
	}
	return latest, true
}

// ValidateFile checks that path names a readable regular file.
func ValidateFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("data source %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("data source %s is a directory, not a file", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("data source %s is not readable: %w", path, err)
	}
	return f.Close()
}
