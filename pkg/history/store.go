// Package history persists generated queries as an append-only JSON log.
package history

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/apperrors"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/jsonutil"
)

// TimestampLayout is fixed-width so timestamps also sort lexically.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// legacyLayouts parse timestamps written by older tools (no zone, variable fraction).
var legacyLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

// Record is one generated query. Only Favorite changes after creation.
type Record struct {
	ID           string   `json:"id"`
	Timestamp    string   `json:"timestamp"`
	NaturalQuery string   `json:"natural_query"`
	SQLQuery     string   `json:"sql_query"`
	Dialect      string   `json:"dialect"`
	Tags         []string `json:"tags"`
	Favorite     bool     `json:"favorite"`
}

// FavoriteState is the outcome of ToggleFavorite.
type FavoriteState int

const (
	FavoriteNotFound FavoriteState = iota
	Favorited
	Unfavorited
)

func (s FavoriteState) String() string {
	switch s {
	case Favorited:
		return "favorited"
	case Unfavorited:
		return "unfavorited"
	default:
		return "not_found"
	}
}

// Store is the query history backed by a single JSON array document.
// Every mutation rewrites the whole document atomically. Safe for concurrent
// use within one process; separate processes sharing the file are not
// coordinated.
type Store struct {
	mu      sync.Mutex
	path    string
	records []Record
	now     func() time.Time
	logger  *zap.Logger
}

// Open loads the history at path. A missing or unparsable document starts an
// empty history.
func Open(path string, logger *zap.Logger) *Store {
	s := &Store{
		path:   path,
		now:    time.Now,
		logger: logger.Named("query-history"),
	}

	var records []Record
	if err := jsonutil.ReadFile(path, &records); err != nil {
		if !errors.Is(err, jsonutil.ErrNoDocument) {
			s.logger.Warn("Discarding unreadable query history",
				zap.String("path", path),
				zap.Error(err))
		}
		records = nil
	}
	s.records = records
	return s
}

// Add appends a record stamped with the current time. Timestamps are kept
// strictly increasing within the process so they stay unique.
func (s *Store) Add(naturalQuery, sqlQuery, dialect string, tags []string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tags == nil {
		tags = []string{}
	}

	ts := s.now()
	if n := len(s.records); n > 0 {
		if last, ok := parseTimestamp(s.records[n-1].Timestamp); ok && !ts.After(last) {
			ts = last.Add(time.Nanosecond)
		}
	}

	record := Record{
		ID:           uuid.New().String(),
		Timestamp:    ts.Format(TimestampLayout),
		NaturalQuery: naturalQuery,
		SQLQuery:     sqlQuery,
		Dialect:      dialect,
		Tags:         tags,
		Favorite:     false,
	}

	s.records = append(s.records, record)
	if err := s.save(); err != nil {
		s.records = s.records[:len(s.records)-1]
		return Record{}, err
	}

	s.logger.Debug("Recorded query",
		zap.String("id", record.ID),
		zap.String("dialect", dialect))
	return record, nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(limit int) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.copyRecords()
	sort.SliceStable(out, func(i, j int) bool {
		return timestampAfter(out[i].Timestamp, out[j].Timestamp)
	})
	if limit < 0 {
		limit = 0
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// All returns every record in insertion order.
func (s *Store) All() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyRecords()
}

// Favorites returns favorited records in insertion order.
func (s *Store) Favorites() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []Record{}
	for _, r := range s.records {
		if r.Favorite {
			out = append(out, cloneRecord(r))
		}
	}
	return out
}

// Search matches keyword case-insensitively against the natural-language and
// SQL text. A non-empty dialect must also match exactly.
func (s *Store) Search(keyword, dialect string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := strings.ToLower(keyword)
	out := []Record{}
	for _, r := range s.records {
		if !strings.Contains(strings.ToLower(r.NaturalQuery), needle) &&
			!strings.Contains(strings.ToLower(r.SQLQuery), needle) {
			continue
		}
		if dialect != "" && r.Dialect != dialect {
			continue
		}
		out = append(out, cloneRecord(r))
	}
	return out
}

// Get returns the record with the given id.
func (s *Store) Get(id string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if r.ID == id {
			return cloneRecord(r), nil
		}
	}
	return Record{}, fmt.Errorf("query %s: %w", id, apperrors.ErrNotFound)
}

// ToggleFavorite flips the favorite flag of the first record whose timestamp
// equals timestamp.
func (s *Store) ToggleFavorite(timestamp string) (FavoriteState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].Timestamp != timestamp {
			continue
		}
		s.records[i].Favorite = !s.records[i].Favorite
		if err := s.save(); err != nil {
			s.records[i].Favorite = !s.records[i].Favorite
			return FavoriteNotFound, err
		}
		if s.records[i].Favorite {
			return Favorited, nil
		}
		return Unfavorited, nil
	}
	return FavoriteNotFound, nil
}

// save must be called with mu held.
func (s *Store) save() error {
	records := s.records
	if records == nil {
		records = []Record{}
	}
	if err := jsonutil.WriteFileAtomic(s.path, records); err != nil {
		s.logger.Error("Failed to persist query history",
			zap.String("path", s.path),
			zap.Error(err))
		return fmt.Errorf("%w: save query history: %w", apperrors.ErrPersistence, err)
	}
	return nil
}

func (s *Store) copyRecords() []Record {
	out := make([]Record, len(s.records))
	for i, r := range s.records {
		out[i] = cloneRecord(r)
	}
	return out
}

func cloneRecord(r Record) Record {
	r.Tags = append([]string{}, r.Tags...)
	return r
}

func parseTimestamp(ts string) (time.Time, bool) {
	for _, layout := range legacyLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// timestampAfter orders by parsed time, falling back to string order when
// either side does not parse.
func timestampAfter(a, b string) bool {
	ta, okA := parseTimestamp(a)
	tb, okB := parseTimestamp(b)
	if okA && okB {
		return ta.After(tb)
	}
	return a > b
}
