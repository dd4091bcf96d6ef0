package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klietz/home-dashboard/internal/dashboard"
)

func TestLoadListMissingFile(t *testing.T) {
	s := NewStore(t.TempDir())
	records, err := s.LoadList(TargetLeft)
	if err != nil {
		t.Fatalf("missing file should be an empty list, got error %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}

func TestLoadListNonArrayIsEmpty(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	tests := []struct {
		name    string
		content string
	}{
		{"object", `{"title": "not a list"}`},
		{"string", `"oops"`},
		{"number", `42`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeDataFile(t, dir, "left_column.json", tt.content)
			records, err := s.LoadList(TargetLeft)
			if err != nil {
				t.Fatalf("non-array JSON should be empty list, got error %v", err)
			}
			if len(records) != 0 {
				t.Errorf("got %d records, want 0", len(records))
			}
		})
	}
}

func TestLoadListCorruptFileIsError(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	writeDataFile(t, dir, "left_column.json", `[{"title": "truncated"`)

	if _, err := s.LoadList(TargetLeft); err == nil {
		t.Fatal("invalid JSON in an existing file must be a hard error")
	}
}

func TestLoadListSkipsNonObjects(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	writeDataFile(t, dir, "right_column.json", `[{"title": "ok"}, "stray", 7, null]`)

	records, err := s.LoadList(TargetRight)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0]["title"] != "ok" {
		t.Errorf("got %+v, want the single object record", records)
	}
}

func TestLoadListUnknownTarget(t *testing.T) {
	s := NewStore(t.TempDir())
	if _, err := s.LoadList("middle"); !errors.Is(err, ErrUnknownTarget) {
		t.Errorf("got %v, want ErrUnknownTarget", err)
	}
}

func TestAppendAndDelete(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	items := []dashboard.Raw{
		{"title": "first", "date": "2024-03-01"},
		{"title": "second", "date": "2024-03-02"},
		{"title": "third", "date": "2024-03-03"},
	}
	for _, item := range items {
		if err := s.Append(TargetBig, item); err != nil {
			t.Fatal(err)
		}
	}

	records, err := s.LoadList(TargetBig)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records after appends, want 3", len(records))
	}

	if err := s.Delete(TargetBig, 1); err != nil {
		t.Fatal(err)
	}
	records, err = s.LoadList(TargetBig)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 || records[1]["title"] != "third" {
		t.Errorf("after delete got %+v, want first/third", records)
	}

	// No stray temp files left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), tmpSuffix) {
			t.Errorf("temp file %s left behind", e.Name())
		}
	}
}

func TestDeleteIndexOutOfRange(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	if err := s.Append(TargetLeft, dashboard.Raw{"title": "only"}); err != nil {
		t.Fatal(err)
	}

	for _, idx := range []int{-1, 1, 99} {
		if err := s.Delete(TargetLeft, idx); !errors.Is(err, ErrIndexRange) {
			t.Errorf("Delete(%d) = %v, want ErrIndexRange", idx, err)
		}
	}
}

func TestWriteSnapshot(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	snap := dashboard.Assemble(now, []dashboard.Raw{{"title": "X", "date": "2024-03-05"}}, nil, 28)

	if err := WriteSnapshot(dir, snap); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "dashboard.json"))
	if err != nil {
		t.Fatal(err)
	}
	var decoded dashboard.Snapshot
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("snapshot file is not valid JSON: %v", err)
	}
	if decoded.GeneratedAt != "2024-03-01T10:00:00" {
		t.Errorf("generated_at = %q", decoded.GeneratedAt)
	}
	if len(decoded.Left.Now) != 1 {
		t.Errorf("now bucket = %+v", decoded.Left.Now)
	}
}

func writeDataFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
