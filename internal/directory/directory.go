// Package directory resolves which teachers belong to a course. The source
// is a JSON file loaded once at startup, so the lookup is fixed at
// composition time instead of being re-resolved per call.
package directory

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Teacher is one directory entry.
type Teacher struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CourseDirectory maps a course to the teachers who review it.
type CourseDirectory interface {
	TeachersFor(course string) []Teacher
}

type teachersFile struct {
	Courses map[string][]Teacher `json:"courses"`
}

// FileDirectory is a CourseDirectory backed by a JSON file.
type FileDirectory struct {
	mu      sync.RWMutex
	courses map[string][]Teacher
}

// LoadFromFile reads and validates the teachers config. Entries without an
// email address are dropped.
func LoadFromFile(path string) (*FileDirectory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read teachers config: %w", err)
	}

	var file teachersFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse teachers config: %w", err)
	}

	courses := make(map[string][]Teacher, len(file.Courses))
	for course, raw := range file.Courses {
		clean := make([]Teacher, 0, len(raw))
		for _, t := range raw {
			email := strings.ToLower(strings.TrimSpace(t.Email))
			if email == "" {
				continue
			}
			clean = append(clean, Teacher{
				Name:  strings.TrimSpace(t.Name),
				Email: email,
			})
		}
		courses[strings.TrimSpace(course)] = clean
	}

	return &FileDirectory{courses: courses}, nil
}

// TeachersFor returns the teachers assigned to the course, or nil.
func (d *FileDirectory) TeachersFor(course string) []Teacher {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.courses[strings.TrimSpace(course)]
}
