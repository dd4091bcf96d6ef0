package main

import (
	"embed"
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/robfig/cron/v3"

	"github.com/klietz/home-dashboard/internal/commands"
	"github.com/klietz/home-dashboard/internal/config"
	"github.com/klietz/home-dashboard/internal/publish"
	"github.com/klietz/home-dashboard/internal/server"
	"github.com/klietz/home-dashboard/internal/storage"
)

//go:embed static/*
var staticFiles embed.FS

//go:embed static/index.html
var indexHTML []byte

//go:embed static/editor.html
var editorHTML []byte

func main() {
	// Check for subcommands
	if len(os.Args) > 1 && os.Args[1] == "hash-password" {
		commands.HashPassword(os.Args[2:])
		return
	}

	configPath := flag.String("config", "dashboard.yaml", "Path to the YAML config file")
	listen := flag.String("listen", "", "Listen address (overrides config)")
	editMode := flag.Bool("edit", false, "Enable edit mode (default is serve mode)")
	once := flag.Bool("once", false, "Regenerate the snapshot once and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config %s: %v", *configPath, err)
	}
	if *listen != "" {
		cfg.Listen = *listen
	}

	// Load and validate auth credentials (if edit mode)
	var auth *server.Auth
	if *editMode {
		auth, err = server.LoadAuth(server.AuthFilePath())
		if err != nil {
			log.Fatalf("Failed to load auth credentials: %v", err)
		}
	}

	store := storage.NewStore(cfg.DataDir)

	var publisher *publish.Publisher
	if cfg.Publish.Remote != "" {
		publisher = publish.NewPublisher(cfg.SiteDir, cfg.Publish.Remote, cfg.Publish.Branch, cfg.Publish.LogFile)
	}

	srv := server.New(server.Options{
		Store:      store,
		SiteDir:    cfg.SiteDir,
		WindowDays: cfg.WindowDays,
		EditMode:   *editMode,
		Publisher:  publisher,
		Auth:       auth,
		IndexHTML:  indexHTML,
		EditorHTML: editorHTML,
	})

	if *once {
		if err := srv.Regenerate(); err != nil {
			log.Fatalf("Failed to regenerate snapshot: %v", err)
		}
		log.Printf("Snapshot written to %s", storage.SnapshotPath(cfg.SiteDir))
		return
	}

	// Build an initial snapshot so the site never serves a stale or
	// missing dashboard.json after a restart.
	if err := srv.Regenerate(); err != nil {
		log.Fatalf("Failed to build initial snapshot: %v", err)
	}

	if cfg.Refresh != "" {
		c := cron.New()
		// Scheduled runs only rebuild the snapshot; publishing stays an
		// explicit editor action.
		if _, err := c.AddFunc(cfg.Refresh, func() {
			if err := srv.Regenerate(); err != nil {
				log.Printf("Scheduled regeneration failed: %v", err)
			}
		}); err != nil {
			log.Fatalf("Invalid refresh schedule %q: %v", cfg.Refresh, err)
		}
		c.Start()
		log.Printf("Scheduled regeneration: %s", cfg.Refresh)
	}

	mux := http.NewServeMux()
	mux.Handle("/", srv.Handler())
	mux.Handle("/static/", http.FileServer(http.FS(staticFiles)))

	mode := "serve"
	if *editMode {
		mode = "edit"
	}
	log.Printf("Starting dashboard in %s mode on http://%s", mode, cfg.Listen)
	log.Printf("Data directory: %s", cfg.DataDir)
	if err := http.ListenAndServe(cfg.Listen, mux); err != nil {
		log.Fatal(err)
	}
}
