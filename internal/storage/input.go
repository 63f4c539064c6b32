package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/pfrederiksen/timebox/internal/course"
)

// ErrInputFormat marks user input that is not a JSON array of courses.
var ErrInputFormat = errors.New("input is not a JSON array of courses")

// LoadCourses decodes a JSON array of courses. Every element must carry a
// course name and a well-formed schedule; nothing is returned otherwise.
// Input may be UTF-8 or, with a byte order mark, UTF-16.
func LoadCourses(r io.Reader) ([]course.Course, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(r, dec))
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return decodeCourses(data)
}

// LoadFile reads a course list from path.
func LoadFile(path string) ([]course.Course, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()

	courses, err := LoadCourses(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return courses, nil
}

// LoadFragment decodes a course list percent-encoded in a URL fragment. raw
// may be a full URL or the fragment itself, with or without the leading '#'.
func LoadFragment(raw string) ([]course.Course, error) {
	fragment := raw
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		fragment = raw[i+1:]
	}
	if strings.TrimSpace(fragment) == "" {
		return nil, fmt.Errorf("%w: empty fragment", ErrInputFormat)
	}

	decoded, err := url.PathUnescape(fragment)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputFormat, err)
	}
	return decodeCourses([]byte(decoded))
}

func decodeCourses(data []byte) ([]course.Course, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrInputFormat
	}

	var courses []course.Course
	if err := json.Unmarshal(trimmed, &courses); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputFormat, err)
	}
	for i, c := range courses {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", ErrInputFormat, i, err)
		}
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return courses, nil
}
