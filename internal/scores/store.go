// Package scores persists the single high-score value across server
// restarts. The store is a tiny JSON document under one well-known key,
// read once at startup and rewritten only when a run beats it.
package scores

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// HighScoreKey is the well-known key the document is stored under.
const HighScoreKey = "wakerunner.highscore"

type document struct {
	Key   string `json:"key"`
	Score int    `json:"score"`
}

// Store holds the best score in memory and writes through to disk.
type Store struct {
	mu   sync.Mutex
	path string
	best int
}

// Open loads the store from path, treating a missing file as a zero score.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read high score: %w", err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode high score: %w", err)
	}
	if doc.Score > 0 {
		s.best = doc.Score
	}
	return s, nil
}

// Best returns the current high score.
func (s *Store) Best() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.best
}

// Record persists score if it beats the current best. It reports whether a
// new high score was set and the previous best.
func (s *Store) Record(score int) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous := s.best
	if score <= previous {
		return false, previous, nil
	}
	s.best = score
	if err := s.writeLocked(); err != nil {
		s.best = previous
		return false, previous, err
	}
	return true, previous, nil
}

// writeLocked replaces the document atomically so a crash mid-write never
// truncates the stored score.
func (s *Store) writeLocked() error {
	data, err := json.Marshal(document{Key: HighScoreKey, Score: s.best})
	if err != nil {
		return fmt.Errorf("encode high score: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create high score directory: %w", err)
		}
	}
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp high score: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace high score: %w", err)
	}
	return nil
}
