package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klietz/home-dashboard/internal/dashboard"
	"github.com/klietz/home-dashboard/internal/storage"
)

func testServer(t *testing.T, editMode bool) (*Server, string) {
	t.Helper()
	dataDir := t.TempDir()
	siteDir := t.TempDir()
	s := New(Options{
		Store:      storage.NewStore(dataDir),
		SiteDir:    siteDir,
		WindowDays: 28,
		EditMode:   editMode,
		Now: func() time.Time {
			return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
		},
		IndexHTML:  []byte("<html>dashboard</html>"),
		EditorHTML: []byte("<html>editor</html>"),
	})
	return s, siteDir
}

func postJSON(t *testing.T, s *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestAddRegeneratesSnapshot(t *testing.T) {
	s, siteDir := testServer(t, true)

	w := postJSON(t, s, "/api/add", `{"target":"left","item":{"title":"X","date":"2024-03-05"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("add returned %d: %s", w.Code, w.Body.String())
	}

	data, err := os.ReadFile(filepath.Join(siteDir, "dashboard.json"))
	if err != nil {
		t.Fatalf("snapshot not written after add: %v", err)
	}
	var snap dashboard.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatal(err)
	}
	if len(snap.Left.Now) != 1 || snap.Left.Now[0].Title != "X" || snap.Left.Now[0].DaysUntil != 4 {
		t.Errorf("now bucket = %+v, want X with days_until 4", snap.Left.Now)
	}
	if snap.GeneratedAt != "2024-03-01T09:00:00" {
		t.Errorf("generated_at = %q", snap.GeneratedAt)
	}
}

func TestAddValidation(t *testing.T) {
	s, _ := testServer(t, true)

	tests := []struct {
		name string
		body string
	}{
		{"unknown target", `{"target":"middle","item":{"title":"X"}}`},
		{"missing item", `{"target":"left"}`},
		{"item not an object", `{"target":"left","item":[1,2]}`},
		{"bad json", `{"target":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, s, "/api/add", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("got %d, want 400: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestDeleteByIndex(t *testing.T) {
	s, _ := testServer(t, true)

	for _, body := range []string{
		`{"target":"right","item":{"title":"keep"}}`,
		`{"target":"right","item":{"title":"drop"}}`,
	} {
		if w := postJSON(t, s, "/api/add", body); w.Code != http.StatusOK {
			t.Fatalf("add failed: %s", w.Body.String())
		}
	}

	if w := postJSON(t, s, "/api/delete", `{"target":"right","index":1}`); w.Code != http.StatusOK {
		t.Fatalf("delete returned %d: %s", w.Code, w.Body.String())
	}

	records, err := s.store.LoadList(storage.TargetRight)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0]["title"] != "keep" {
		t.Errorf("after delete got %+v", records)
	}
}

func TestDeleteValidation(t *testing.T) {
	s, _ := testServer(t, true)
	if w := postJSON(t, s, "/api/add", `{"target":"left","item":{"title":"only"}}`); w.Code != http.StatusOK {
		t.Fatal("setup add failed")
	}

	tests := []struct {
		name string
		body string
	}{
		{"index out of range", `{"target":"left","index":5}`},
		{"negative index", `{"target":"left","index":-1}`},
		{"missing index", `{"target":"left"}`},
		{"unknown target", `{"target":"nope","index":0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, s, "/api/delete", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("got %d, want 400: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestDataReturnsAllLists(t *testing.T) {
	s, _ := testServer(t, true)
	if w := postJSON(t, s, "/api/add", `{"target":"big","item":{"title":"trip","date":"2024-06-01"}}`); w.Code != http.StatusOK {
		t.Fatal("setup add failed")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/data", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("data returned %d", w.Code)
	}
	var payload map[string][]dashboard.Raw
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"left", "big", "right"} {
		if _, ok := payload[key]; !ok {
			t.Errorf("response missing %q list", key)
		}
	}
	if len(payload["big"]) != 1 {
		t.Errorf("big list = %+v", payload["big"])
	}
}

func TestEditorRoutesAbsentInServeMode(t *testing.T) {
	s, _ := testServer(t, false)

	for _, path := range []string{"/api/add", "/api/delete", "/api/regenerate", "/api/publish"} {
		w := postJSON(t, s, path, `{}`)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s returned %d in serve mode, want 404", path, w.Code)
		}
	}
}

func TestRegenerateCorruptDataIsError(t *testing.T) {
	s, _ := testServer(t, true)

	// A present but corrupt data file must fail the run, not silently
	// publish an empty dashboard.
	dataDir := t.TempDir()
	s.store = storage.NewStore(dataDir)
	if err := os.WriteFile(filepath.Join(dataDir, "left_column.json"), []byte(`[{"broken`), 0644); err != nil {
		t.Fatal(err)
	}

	w := postJSON(t, s, "/api/regenerate", ``)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("regenerate over corrupt data returned %d, want 500", w.Code)
	}
}

func TestPublishUnconfigured(t *testing.T) {
	s, _ := testServer(t, true)

	w := postJSON(t, s, "/api/publish", ``)
	if w.Code != http.StatusBadGateway {
		t.Errorf("publish without publisher returned %d, want 502", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	s, _ := testServer(t, false)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("healthz returned %d", w.Code)
	}
}

func TestFeedEndpoint(t *testing.T) {
	s, _ := testServer(t, true)
	if w := postJSON(t, s, "/api/add", `{"target":"left","item":{"title":"Trip","date":"2024-03-05"}}`); w.Code != http.StatusOK {
		t.Fatal("setup add failed")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/feed.ics", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("feed returned %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/calendar") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != "" {
		t.Errorf("subscription feed should not have Content-Disposition, got %q", cd)
	}
	body := w.Body.String()
	for _, field := range []string{"BEGIN:VCALENDAR", "METHOD:PUBLISH", "SUMMARY:Trip", "END:VCALENDAR"} {
		if !strings.Contains(body, field) {
			t.Errorf("feed missing %s:\n%s", field, body)
		}
	}
}
