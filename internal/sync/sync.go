package sync

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Stats tracks sync progress.
type Stats struct {
	FilesTotal   int
	FilesSynced  int
	FilesSkipped int
	FilesErrored int

	SetsSent        int
	SetsRejected    int
	RecordsImproved int
}

// sessionNamespace seeds deterministic session IDs. The same log file always
// maps to the same session, so a re-sync after a partial failure lands on
// the server's duplicate handling instead of creating a second session.
var sessionNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// Syncer walks a directory of plain-text session logs and sends the ones the
// state database has not seen yet.
type Syncer struct {
	client *Client
	state  *StateDB
	logDir string
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Syncer.
func New(client *Client, state *StateDB, logDir string, dryRun bool, log *slog.Logger) *Syncer {
	return &Syncer{
		client: client,
		state:  state,
		logDir: logDir,
		dryRun: dryRun,
		log:    log,
	}
}

// Run executes the sync pipeline.
func (s *Syncer) Run() (*Stats, error) {
	var paths []string
	err := filepath.WalkDir(s.logDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt", ".log":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return &s.stats, fmt.Errorf("walking %s: %w", s.logDir, err)
	}
	sort.Strings(paths)

	for _, path := range paths {
		s.stats.FilesTotal++
		if err := s.syncFile(path); err != nil {
			s.stats.FilesErrored++
			s.log.Error("sync failed", "file", path, "error", err)
		}
	}

	return &s.stats, nil
}

func (s *Syncer) syncFile(path string) error {
	relPath, err := filepath.Rel(s.logDir, path)
	if err != nil {
		relPath = path
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}
	hash, err := HashFile(path)
	if err != nil {
		return fmt.Errorf("hashing: %w", err)
	}

	synced, err := s.state.IsSynced(relPath, info.Size(), hash)
	if err != nil {
		return fmt.Errorf("state lookup: %w", err)
	}
	if synced {
		s.stats.FilesSkipped++
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening: %w", err)
	}
	batch, err := ParseSessionLog(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("parsing: %w", err)
	}
	if len(batch.Sets) == 0 {
		s.stats.FilesSkipped++
		s.log.Warn("empty session log", "file", relPath)
		return nil
	}

	sessionID := uuid.NewSHA1(sessionNamespace, []byte(relPath+"\x00"+hash))
	batch.SessionID = &sessionID

	if s.dryRun {
		s.log.Info("dry-run: would sync", "file", relPath, "sets", len(batch.Sets))
		s.stats.FilesSkipped++
		return nil
	}

	result, err := s.client.SendBatch(batch)
	if err != nil {
		return err
	}

	if err := s.state.MarkSynced(relPath, info.Size(), hash); err != nil {
		return fmt.Errorf("marking synced: %w", err)
	}

	s.stats.FilesSynced++
	s.stats.SetsSent += result.SetsInserted
	s.stats.SetsRejected += result.SetsRejected
	s.stats.RecordsImproved += len(result.Records)

	for _, rec := range result.Records {
		s.log.Info("new personal record",
			"exercise", rec.Exercise.Display(),
			"type", rec.RecordType,
			"value", rec.Value,
		)
	}

	return nil
}
