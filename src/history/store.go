package history

import (
	"encoding/json"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/quantumsuite/marketfetch/src/models"
)

// Store persists recent fetch events to a small JSON file, keeping only the
// newest entries. One writer per save operation; the pipeline offers events
// here and never reads them back.
type Store struct {
	path string
	cap  int
}

func NewStore(path string, cap int) *Store {
	if cap <= 0 {
		cap = 5
	}
	return &Store{path: path, cap: cap}
}

func (s *Store) Load() ([]models.FetchEvent, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("Store.Load: failed to read %s: %w", s.path, err)
	}

	var events []models.FetchEvent
	if err := json.Unmarshal(data, &events); err != nil {
		// A corrupt history file is not worth failing a fetch over.
		log.Warnf("history file %s is corrupt, starting fresh: %v", s.path, err)
		return nil, nil
	}

	if len(events) > s.cap {
		events = events[len(events)-s.cap:]
	}

	return events, nil
}

// Append records one event, trimming the file to the configured cap.
func (s *Store) Append(event models.FetchEvent) error {
	events, err := s.Load()
	if err != nil {
		return fmt.Errorf("Store.Append: %w", err)
	}

	events = append(events, event)
	if len(events) > s.cap {
		events = events[len(events)-s.cap:]
	}

	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("Store.Append: failed to marshal history: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("Store.Append: failed to write %s: %w", s.path, err)
	}

	return nil
}

func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("Store.Clear: %w", err)
	}
	return nil
}
