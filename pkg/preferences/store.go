package preferences

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
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/history"
	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/jsonutil"
	sqlpkg "github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/sql"
)

// MaskedPassword replaces stored passwords in listings.
const MaskedPassword = "********"

// maxRecentConnections bounds the recent_connections list.
const maxRecentConnections = 5

// Sealer encrypts profile passwords. *crypto.PasswordSealer satisfies it.
type Sealer interface {
	Seal(plaintext string) (string, error)
	Open(value string) (string, error)
}

// Store holds the preferences document in memory and rewrites it atomically
// after every mutation.
type Store struct {
	mu     sync.Mutex
	path   string
	prefs  Preferences
	sealer Sealer
	now    func() time.Time
	logger *zap.Logger
}

// Open loads preferences from path. Keys missing from the document take their
// default value; a missing or unparsable document yields Defaults.
// sealer may be nil, in which case passwords are stored as given.
func Open(path string, sealer Sealer, logger *zap.Logger) *Store {
	s := &Store{
		path:   path,
		sealer: sealer,
		now:    time.Now,
		logger: logger.Named("preferences"),
	}

	prefs := Defaults(s.now())
	if err := jsonutil.ReadFile(path, &prefs); err != nil {
		if !errors.Is(err, jsonutil.ErrNoDocument) {
			s.logger.Warn("Discarding unreadable preferences",
				zap.String("path", path),
				zap.Error(err))
		}
		prefs = Defaults(s.now())
	}
	normalize(&prefs)
	s.prefs = prefs
	return s
}

// normalize replaces null lists so the document always round-trips as arrays.
func normalize(p *Preferences) {
	if p.ConnectionProfiles == nil {
		p.ConnectionProfiles = []ConnectionProfile{}
	}
	if p.RecentConnections == nil {
		p.RecentConnections = []string{}
	}
	if p.SharedQueries == nil {
		p.SharedQueries = []SharedQuery{}
	}
}

// Snapshot returns a copy of the whole document with passwords masked.
func (s *Store) Snapshot() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.prefs.clone()
	maskPasswords(p.ConnectionProfiles)
	return p
}

// Get returns the value stored under a recognized key.
func (s *Store) Get(key string) (any, bool) {
	p := s.Snapshot()
	switch key {
	case KeyTheme:
		return p.Theme, true
	case KeyDialect:
		return p.Dialect, true
	case KeyFontSize:
		return p.FontSize, true
	case KeyShowLineNumbers:
		return p.ShowLineNumbers, true
	case KeyAutoComplete:
		return p.AutoComplete, true
	case KeyConnectionProfiles:
		return p.ConnectionProfiles, true
	case KeyRecentConnections:
		return p.RecentConnections, true
	case KeySharedQueries:
		return p.SharedQueries, true
	case KeyPerformanceMetrics:
		return p.PerformanceMetrics, true
	default:
		return nil, false
	}
}

// Update sets one of the scalar settings. List and metrics keys have their
// own methods and are rejected here.
func (s *Store) Update(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.prefs
	switch key {
	case KeyTheme:
		v, err := enumValue(key, value, themes)
		if err != nil {
			return err
		}
		next.Theme = v
	case KeyFontSize:
		v, err := enumValue(key, value, fontSizes)
		if err != nil {
			return err
		}
		next.FontSize = v
	case KeyDialect:
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %s must be a string", apperrors.ErrInvalidPreference, key)
		}
		d, err := sqlpkg.ParseDialect(str)
		if err != nil {
			return fmt.Errorf("%w: %w", apperrors.ErrInvalidPreference, err)
		}
		next.Dialect = string(d)
	case KeyShowLineNumbers, KeyAutoComplete:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%w: %s must be a boolean", apperrors.ErrInvalidPreference, key)
		}
		if key == KeyShowLineNumbers {
			next.ShowLineNumbers = b
		} else {
			next.AutoComplete = b
		}
	case KeyConnectionProfiles, KeyRecentConnections, KeySharedQueries, KeyPerformanceMetrics:
		return fmt.Errorf("%w: %s cannot be set directly", apperrors.ErrInvalidPreference, key)
	default:
		return fmt.Errorf("%w: unknown key %q", apperrors.ErrInvalidPreference, key)
	}

	return s.commit(next)
}

func enumValue(key string, value any, allowed map[string]bool) (string, error) {
	str, ok := value.(string)
	if !ok || !allowed[str] {
		return "", fmt.Errorf("%w: unsupported %s %v", apperrors.ErrInvalidPreference, key, value)
	}
	return str, nil
}

// AddConnectionProfile validates required fields, seals the password, and
// appends the profile. Names must be unique.
func (s *Store) AddConnectionProfile(p ConnectionProfile) (ConnectionProfile, error) {
	var missing []string
	for field, v := range map[string]string{
		"name": p.Name, "host": p.Host, "port": p.Port, "database": p.Database, "username": p.Username,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return ConnectionProfile{}, fmt.Errorf("%w: missing %s", apperrors.ErrInvalidProfile, strings.Join(missing, ", "))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.prefs.ConnectionProfiles {
		if existing.Name == p.Name {
			return ConnectionProfile{}, fmt.Errorf("%w: profile %q already exists", apperrors.ErrInvalidProfile, p.Name)
		}
	}

	if s.sealer != nil {
		sealed, err := s.sealer.Seal(p.Password)
		if err != nil {
			return ConnectionProfile{}, fmt.Errorf("seal profile password: %w", err)
		}
		p.Password = sealed
	}

	next := s.prefs.clone()
	next.ConnectionProfiles = append(next.ConnectionProfiles, p)
	if err := s.commit(next); err != nil {
		return ConnectionProfile{}, err
	}

	p.Password = MaskedPassword
	return p, nil
}

// ConnectionProfiles lists saved profiles with passwords masked.
func (s *Store) ConnectionProfiles() []ConnectionProfile {
	return s.Snapshot().ConnectionProfiles
}

// ResolveProfile returns the named profile with its password opened and
// records it as the most recent connection.
func (s *Store) ResolveProfile(name string) (ConnectionProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.prefs.ConnectionProfiles {
		if p.Name != name {
			continue
		}
		if s.sealer != nil {
			opened, err := s.sealer.Open(p.Password)
			if err != nil {
				return ConnectionProfile{}, fmt.Errorf("open profile password: %w", err)
			}
			p.Password = opened
		}

		next := s.prefs.clone()
		recent := []string{name}
		for _, r := range next.RecentConnections {
			if r != name && len(recent) < maxRecentConnections {
				recent = append(recent, r)
			}
		}
		next.RecentConnections = recent
		if err := s.commit(next); err != nil {
			return ConnectionProfile{}, err
		}
		return p, nil
	}
	return ConnectionProfile{}, fmt.Errorf("profile %q: %w", name, apperrors.ErrNotFound)
}

// AddSharedQuery publishes a record with an annotation, stamping shared_at.
func (s *Store) AddSharedQuery(record history.Record, annotation string) (SharedQuery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.Tags == nil {
		record.Tags = []string{}
	}
	shared := SharedQuery{
		Record:     record,
		Annotation: annotation,
		SharedAt:   s.now().Format(time.RFC3339Nano),
	}
	if shared.Timestamp == "" {
		shared.Timestamp = shared.SharedAt
	}

	next := s.prefs.clone()
	next.SharedQueries = append(next.SharedQueries, shared)
	if err := s.commit(next); err != nil {
		return SharedQuery{}, err
	}
	return shared, nil
}

// SharedQueries lists shared queries in the order they were shared.
func (s *Store) SharedQueries() []SharedQuery {
	return s.Snapshot().SharedQueries
}

// UpdateMetrics records one observation of executionTime seconds.
func (s *Store) UpdateMetrics(executionTime float64, success bool) (Metrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.prefs
	m := next.PerformanceMetrics
	m.TotalQueries++
	if success {
		m.SuccessfulQueries++
	}
	n := float64(m.TotalQueries)
	m.AverageExecutionTime = (m.AverageExecutionTime*(n-1) + executionTime) / n
	m.LastUpdated = s.now().Format(time.RFC3339Nano)
	next.PerformanceMetrics = m

	if err := s.commit(next); err != nil {
		return Metrics{}, err
	}
	return m, nil
}

// Metrics returns the current performance metrics.
func (s *Store) Metrics() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs.PerformanceMetrics
}

// commit persists next and installs it only on success. mu must be held.
func (s *Store) commit(next Preferences) error {
	if err := jsonutil.WriteFileAtomic(s.path, next); err != nil {
		s.logger.Error("Failed to persist preferences",
			zap.String("path", s.path),
			zap.Error(err))
		return fmt.Errorf("%w: save preferences: %w", apperrors.ErrPersistence, err)
	}
	s.prefs = next
	return nil
}

func maskPasswords(profiles []ConnectionProfile) {
	for i := range profiles {
		if profiles[i].Password != "" {
			profiles[i].Password = MaskedPassword
		}
	}
}
