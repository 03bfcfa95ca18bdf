package sync

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/builtbymaxim/pulselift/internal/models"
)

// ParseSessionLog reads one plain-text training log and produces the ingest
// payload for that session. The format is one exercise per line:
//
//	# 2026-08-28 push day
//	Bench Press: w 60x5, 100x5 @8, 100x5(5) @8.5
//	Push-Up: x20, x18
//
// A set is WEIGHTxREPS for loaded work or xREPS for bodyweight, with an
// optional "w " warmup prefix, "(N)" rep target, and "@N" RPE. The header
// date becomes performed_at for every set; without a header the server
// stamps receipt time.
func ParseSessionLog(r io.Reader) (*models.SetBatch, error) {
	batch := &models.SetBatch{}
	var performedAt *time.Time
	setCounts := map[string]int{}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#") {
			if performedAt == nil {
				if t, ok := parseHeaderDate(line); ok {
					performedAt = &t
				}
			}
			continue
		}

		name, rest, found := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		if !found || name == "" {
			return nil, fmt.Errorf("line %d: expected \"Exercise: sets\", got %q", lineNo, line)
		}

		for _, raw := range strings.Split(rest, ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			entry, err := parseSet(raw)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}

			key := strings.ToLower(name)
			setCounts[key]++
			entry.ExerciseName = name
			entry.SetNumber = setCounts[key]
			entry.PerformedAt = performedAt
			batch.Sets = append(batch.Sets, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading session log: %w", err)
	}

	return batch, nil
}

// setRe matches one set token: optional warmup prefix, optional weight
// before the x, reps, optional rep target, optional RPE.
var setRe = regexp.MustCompile(`^(?:w\s+)?(?:(\d+(?:\.\d+)?)?\s*[xX]\s*)?(\d+)(?:\s*\((\d+)\))?(?:\s*@\s*(\d+(?:\.\d+)?))?$`)

func parseSet(raw string) (models.SetEntry, error) {
	entry := models.SetEntry{}
	if strings.HasPrefix(raw, "w ") || strings.HasPrefix(raw, "W ") {
		entry.IsWarmup = true
	}

	m := setRe.FindStringSubmatch(raw)
	if m == nil {
		return entry, fmt.Errorf("unparseable set %q", raw)
	}

	if m[1] != "" {
		weight, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return entry, fmt.Errorf("weight in %q: %w", raw, err)
		}
		entry.WeightKg = weight
	}

	reps, err := strconv.Atoi(m[2])
	if err != nil {
		return entry, fmt.Errorf("reps in %q: %w", raw, err)
	}
	entry.Reps = reps

	if m[3] != "" {
		target, err := strconv.Atoi(m[3])
		if err != nil {
			return entry, fmt.Errorf("rep target in %q: %w", raw, err)
		}
		entry.TargetReps = &target
	}

	if m[4] != "" {
		rpe, err := strconv.ParseFloat(m[4], 64)
		if err != nil {
			return entry, fmt.Errorf("rpe in %q: %w", raw, err)
		}
		entry.RPE = &rpe
	}

	return entry, nil
}

// parseHeaderDate pulls a YYYY-MM-DD date out of a "# ..." header line.
func parseHeaderDate(line string) (time.Time, bool) {
	fields := strings.Fields(strings.TrimPrefix(line, "#"))
	for _, f := range fields {
		if t, err := time.Parse("2006-01-02", f); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
