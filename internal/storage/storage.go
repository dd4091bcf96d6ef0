// Package storage persists the three raw item lists and the rendered
// snapshot as flat JSON files. Lists are rewritten wholesale on every
// mutation; there is no database and no incremental state.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klietz/home-dashboard/internal/dashboard"
)

// Target names accepted by the editor API.
const (
	TargetLeft  = "left"
	TargetBig   = "big"
	TargetRight = "right"
)

const (
	leftFile     = "left_column.json"
	bigFile      = "big_events.json"
	rightFile    = "right_column.json"
	snapshotFile = "dashboard.json"

	filePermissions = 0644
	tmpSuffix       = ".tmp"
)

// Client-input errors, reported to the editor caller as request
// validation failures.
var (
	ErrUnknownTarget = errors.New("unknown target")
	ErrIndexRange    = errors.New("index out of range")
)

// Store reads and writes the raw lists under a single data directory.
// Mutations are serialized by an internal mutex so concurrent editor
// requests cannot race a read-modify-write cycle on the same file.
type Store struct {
	dataDir string
	mu      sync.Mutex
}

func NewStore(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

func (s *Store) listPath(target string) (string, error) {
	var name string
	switch target {
	case TargetLeft:
		name = leftFile
	case TargetBig:
		name = bigFile
	case TargetRight:
		name = rightFile
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTarget, target)
	}
	return filepath.Join(s.dataDir, name), nil
}

// LoadList reads one raw list. A missing file is an empty list, as is a
// file holding valid JSON that is not an array. A present file with
// invalid JSON is a hard error: silently emptying it would publish a
// blank dashboard over good data. Array elements that are not objects
// are skipped.
func (s *Store) LoadList(target string) ([]dashboard.Raw, error) {
	path, err := s.listPath(target)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []dashboard.Raw{}, nil
		}
		return nil, err
	}

	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("corrupt data file %s: %w", path, err)
	}
	list, ok := root.([]any)
	if !ok {
		return []dashboard.Raw{}, nil
	}

	records := make([]dashboard.Raw, 0, len(list))
	for _, el := range list {
		if obj, ok := el.(map[string]any); ok {
			records = append(records, dashboard.Raw(obj))
		}
	}
	return records, nil
}

// LoadAll reads all three lists fresh from disk.
func (s *Store) LoadAll() (left, big, right []dashboard.Raw, err error) {
	if left, err = s.LoadList(TargetLeft); err != nil {
		return nil, nil, nil, err
	}
	if big, err = s.LoadList(TargetBig); err != nil {
		return nil, nil, nil, err
	}
	if right, err = s.LoadList(TargetRight); err != nil {
		return nil, nil, nil, err
	}
	return left, big, right, nil
}

// saveList rewrites one list atomically: write a temp file in the same
// directory, then rename it over the target.
func (s *Store) saveList(path string, records []dashboard.Raw) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmpPath := path + tmpSuffix
	if err := os.WriteFile(tmpPath, data, filePermissions); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// Append adds one raw item to the end of a list.
func (s *Store) Append(target string, item dashboard.Raw) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.listPath(target)
	if err != nil {
		return err
	}
	records, err := s.LoadList(target)
	if err != nil {
		return err
	}
	records = append(records, item)
	return s.saveList(path, records)
}

// Delete removes the item at index from a list.
func (s *Store) Delete(target string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.listPath(target)
	if err != nil {
		return err
	}
	records, err := s.LoadList(target)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(records) {
		return fmt.Errorf("%w: %d of %d", ErrIndexRange, index, len(records))
	}
	records = append(records[:index], records[index+1:]...)
	return s.saveList(path, records)
}

// WriteSnapshot atomically replaces the rendered dashboard document in
// siteDir.
func WriteSnapshot(siteDir string, snap dashboard.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(siteDir, 0755); err != nil {
		return err
	}

	path := filepath.Join(siteDir, snapshotFile)
	tmpPath := path + tmpSuffix
	if err := os.WriteFile(tmpPath, data, filePermissions); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// SnapshotPath returns the location of the rendered document inside
// siteDir.
func SnapshotPath(siteDir string) string {
	return filepath.Join(siteDir, snapshotFile)
}
