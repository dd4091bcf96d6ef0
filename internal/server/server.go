// Package server exposes the dashboard site and the local editor API over
// plain net/http.
package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/klietz/home-dashboard/internal/dashboard"
	"github.com/klietz/home-dashboard/internal/publish"
	"github.com/klietz/home-dashboard/internal/storage"
)

// Options configures a Server.
type Options struct {
	Store      *storage.Store
	SiteDir    string
	WindowDays int
	EditMode   bool

	// Publisher may be nil; the publish endpoint then reports failure.
	Publisher *publish.Publisher

	// Auth may be nil; editor routes then run unprotected.
	Auth *Auth

	// Now is the clock reference for snapshot generation. Defaults to
	// time.Now; injectable for tests.
	Now func() time.Time

	// Embedded pages.
	IndexHTML  []byte
	EditorHTML []byte
}

// Server routes dashboard and editor requests. Mutating operations
// (add/delete/regenerate/publish) are serialized via genMu on top of the
// store's own mutex, so a regeneration never interleaves with an edit.
type Server struct {
	store      *storage.Store
	siteDir    string
	windowDays int
	editMode   bool
	publisher  *publish.Publisher
	auth       *Auth
	now        func() time.Time
	indexHTML  []byte
	editorHTML []byte

	mux   *http.ServeMux
	genMu sync.Mutex
}

func New(opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.WindowDays <= 0 {
		opts.WindowDays = dashboard.DefaultWindowDays
	}
	s := &Server{
		store:      opts.Store,
		siteDir:    opts.SiteDir,
		windowDays: opts.WindowDays,
		editMode:   opts.EditMode,
		publisher:  opts.Publisher,
		auth:       opts.Auth,
		now:        opts.Now,
		indexHTML:  opts.IndexHTML,
		editorHTML: opts.EditorHTML,
		mux:        http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/dashboard", s.handleIndex)
	s.mux.HandleFunc("/dashboard.json", s.handleSnapshot)
	s.mux.HandleFunc("/api/feed.ics", s.handleFeed)
	s.mux.HandleFunc("/healthz", s.handleHealth)

	if s.editMode {
		s.mux.HandleFunc("/editor", s.auth.Require(s.handleEditor))
		s.mux.HandleFunc("/api/data", s.auth.Require(s.handleData))
		s.mux.HandleFunc("/api/add", s.auth.Require(s.handleAdd))
		s.mux.HandleFunc("/api/delete", s.auth.Require(s.handleDelete))
		s.mux.HandleFunc("/api/regenerate", s.auth.Require(s.handleRegenerate))
		s.mux.HandleFunc("/api/publish", s.auth.Require(s.handlePublish))
	}
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Assemble builds a snapshot from the current data files without writing
// it anywhere.
func (s *Server) Assemble() (dashboard.Snapshot, error) {
	left, big, right, err := s.store.LoadAll()
	if err != nil {
		return dashboard.Snapshot{}, err
	}
	return dashboard.Assemble(s.now(), append(left, big...), right, s.windowDays), nil
}

// Regenerate rebuilds dashboard.json from the data files. Reads the full
// data set fresh every time; there is no cached state.
func (s *Server) Regenerate() error {
	s.genMu.Lock()
	defer s.genMu.Unlock()

	snap, err := s.Assemble()
	if err != nil {
		return err
	}
	return storage.WriteSnapshot(s.siteDir, snap)
}
