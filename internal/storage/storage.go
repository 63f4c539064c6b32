package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/timebox/internal/capture"
	"github.com/pfrederiksen/timebox/internal/course"
)

// Storage writes export files into one directory.
type Storage struct {
	dataDir string
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// Dir returns the export directory.
func (s *Storage) Dir() string {
	return s.dataDir
}

// ExportFilename names a capture export: the UTC time to the second, with
// ':' replaced by '-'.
func ExportFilename(now time.Time) string {
	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(now.UTC().Format("2006-01-02T15:04:05"))
	return "수강신청목록_" + stamp + ".json"
}

// CoursesFilename names a sweep export by its UTC date.
func CoursesFilename(now time.Time) string {
	return "timebox_courses_" + now.UTC().Format("2006-01-02") + ".json"
}

// WriteExport writes b as an export document and returns its path.
func (s *Storage) WriteExport(b capture.Batch, now time.Time) (string, error) {
	return s.write(ExportFilename(now), NewDocument(b))
}

// WriteCourses writes courses as a JSON array and returns its path.
func (s *Storage) WriteCourses(courses []course.Course, now time.Time) (string, error) {
	if courses == nil {
		courses = []course.Course{}
	}
	return s.write(CoursesFilename(now), courses)
}

func (s *Storage) write(name string, v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding %s: %w", name, err)
	}

	path := filepath.Join(s.dataDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing export: %w", err)
	}
	return path, nil
}
