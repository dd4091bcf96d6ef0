package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/klietz/home-dashboard/internal/dashboard"
	"github.com/klietz/home-dashboard/internal/storage"
)

// handleIndex serves the dashboard page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/dashboard" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(s.indexHTML); err != nil {
		log.Printf("Error writing index HTML: %v", err)
	}
}

// handleEditor serves the editor page (edit mode only).
func (s *Server) handleEditor(w http.ResponseWriter, r *http.Request) {
	if !s.requireEditMode(w) {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(s.editorHTML); err != nil {
		log.Printf("Error writing editor HTML: %v", err)
	}
}

// handleSnapshot serves the current rendered dashboard document.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	http.ServeFile(w, r, storage.SnapshotPath(s.siteDir))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleData returns all three raw lists for the editor.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) || !s.requireEditMode(w) {
		return
	}

	left, big, right, err := s.store.LoadAll()
	if err != nil {
		log.Printf("Error loading data: %v", err)
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"left":  left,
		"big":   big,
		"right": right,
	})
}

// handleAdd appends one item to one of the three lists and regenerates.
func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) || !s.requireEditMode(w) {
		return
	}

	var req struct {
		Target string        `json:"target"`
		Item   dashboard.Raw `json:"item"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeClientError(w, ErrInvalidPayload)
		return
	}
	if req.Item == nil {
		writeClientError(w, ErrInvalidPayload)
		return
	}

	if err := s.store.Append(req.Target, req.Item); err != nil {
		if errors.Is(err, storage.ErrUnknownTarget) {
			writeClientError(w, err.Error())
			return
		}
		log.Printf("Error appending item: %v", err)
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
		return
	}

	if err := s.Regenerate(); err != nil {
		log.Printf("Error regenerating after add: %v", err)
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
		return
	}
	writeOK(w)
}

// handleDelete removes one item by index and regenerates.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) || !s.requireEditMode(w) {
		return
	}

	var req struct {
		Target string `json:"target"`
		Index  *int   `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Index == nil {
		writeClientError(w, ErrInvalidPayload)
		return
	}

	if err := s.store.Delete(req.Target, *req.Index); err != nil {
		if errors.Is(err, storage.ErrUnknownTarget) || errors.Is(err, storage.ErrIndexRange) {
			writeClientError(w, err.Error())
			return
		}
		log.Printf("Error deleting item: %v", err)
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
		return
	}

	if err := s.Regenerate(); err != nil {
		log.Printf("Error regenerating after delete: %v", err)
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
		return
	}
	writeOK(w)
}

// handleRegenerate rebuilds the snapshot from the data files.
func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) || !s.requireEditMode(w) {
		return
	}

	if err := s.Regenerate(); err != nil {
		log.Printf("Error regenerating: %v", err)
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
		return
	}
	writeOK(w)
}

// handlePublish regenerates and pushes the site directory to the
// configured git remote. Failures carry the captured git diagnostics.
func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) || !s.requireEditMode(w) {
		return
	}
	if s.publisher == nil {
		writeJSON(w, http.StatusBadGateway, map[string]any{"ok": false, "error": "publishing is not configured"})
		return
	}

	if err := s.Regenerate(); err != nil {
		log.Printf("Error regenerating before publish: %v", err)
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
		return
	}

	out, err := s.publisher.Publish(r.Context())
	if err != nil {
		log.Printf("Publish failed: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]any{"ok": false, "error": err.Error(), "output": out})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": out})
}

// handleFeed serves the calendar view as an ICS subscription feed.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Assemble()
	if err != nil {
		log.Printf("Error assembling feed: %v", err)
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	// No Content-Disposition header: calendar apps need inline content
	// for subscriptions.
	if _, err := w.Write([]byte(BuildFeed(snap.Calendar, s.now()))); err != nil {
		log.Printf("Error writing feed: %v", err)
	}
}
