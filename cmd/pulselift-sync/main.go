package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/builtbymaxim/pulselift/internal/sync"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "PulseLift server URL (e.g. https://pulselift.tail1234.ts.net)")
	apiKey := flag.String("api-key", os.Getenv("PULSELIFT_API_KEY"), "API key for the ingest endpoint (defaults to PULSELIFT_API_KEY)")
	logDir := flag.String("path", "", "directory of plain-text session logs (*.txt, *.log)")
	dryRun := flag.Bool("dry-run", false, "parse logs but don't send to server")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("pulselift-sync", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *logDir == "" {
		fmt.Fprintf(os.Stderr, "Usage: pulselift-sync -server <URL> -path <log dir> [-api-key KEY] [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *serverURL == "" && !*dryRun {
		fmt.Fprintf(os.Stderr, "Error: -server is required (or use -dry-run)\n")
		os.Exit(1)
	}

	// Strip trailing slash from server URL
	*serverURL = strings.TrimRight(*serverURL, "/")

	info, err := os.Stat(*logDir)
	if err != nil || !info.IsDir() {
		log.Error("log directory not found", "path", *logDir)
		os.Exit(1)
	}

	// Open state database
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	stateDir := filepath.Join(homeDir, ".pulselift-sync")

	state, err := sync.OpenStateDB(stateDir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	// Create client (nil-safe in dry-run mode)
	var client *sync.Client
	if !*dryRun {
		client = sync.NewClient(*serverURL, *apiKey)
	}

	if *dryRun {
		log.Info("DRY RUN mode: logs will be parsed but not sent")
	}

	syncer := sync.New(client, state, *logDir, *dryRun, log)
	stats, err := syncer.Run()
	if err != nil {
		log.Error("sync failed", "error", err)
		printStats(stats)
		os.Exit(1)
	}

	printStats(stats)
	log.Info("sync complete")
}

func printStats(stats *sync.Stats) {
	fmt.Println()
	fmt.Println("=== Sync Summary ===")
	fmt.Printf("  Files total:      %d\n", stats.FilesTotal)
	fmt.Printf("  Files synced:     %d\n", stats.FilesSynced)
	fmt.Printf("  Files skipped:    %d (already synced)\n", stats.FilesSkipped)
	fmt.Printf("  Files errored:    %d\n", stats.FilesErrored)
	fmt.Println()
	fmt.Printf("  Sets sent:        %d\n", stats.SetsSent)
	fmt.Printf("  Sets rejected:    %d\n", stats.SetsRejected)
	fmt.Printf("  Records improved: %d\n", stats.RecordsImproved)
	fmt.Println()
}
