// Package preferences persists user settings, connection profiles, shared
// queries, and performance metrics as one JSON document.
package preferences

import (
	"time"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/history"
)

// Recognized keys.
const (
	KeyTheme              = "theme"
	KeyDialect            = "dialect"
	KeyFontSize           = "font_size"
	KeyShowLineNumbers    = "show_line_numbers"
	KeyAutoComplete       = "auto_complete"
	KeyConnectionProfiles = "connection_profiles"
	KeyRecentConnections  = "recent_connections"
	KeySharedQueries      = "shared_queries"
	KeyPerformanceMetrics = "performance_metrics"
)

var (
	themes    = map[string]bool{"light": true, "dark": true}
	fontSizes = map[string]bool{"small": true, "medium": true, "large": true}
)

// Preferences is the persisted document.
type Preferences struct {
	Theme              string              `json:"theme"`
	Dialect            string              `json:"dialect"`
	FontSize           string              `json:"font_size"`
	ShowLineNumbers    bool                `json:"show_line_numbers"`
	AutoComplete       bool                `json:"auto_complete"`
	ConnectionProfiles []ConnectionProfile `json:"connection_profiles"`
	RecentConnections  []string            `json:"recent_connections"`
	SharedQueries      []SharedQuery       `json:"shared_queries"`
	PerformanceMetrics Metrics             `json:"performance_metrics"`
}

// ConnectionProfile is a saved set of connection parameters. Password holds
// a sealed value when a credentials key is configured.
type ConnectionProfile struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// SharedQuery is a history record published with an annotation.
type SharedQuery struct {
	history.Record
	Annotation string `json:"annotation"`
	SharedAt   string `json:"shared_at"`
}

// Metrics aggregates playground and generation outcomes. The average is a
// running mean in seconds: (prev*(n-1)+sample)/n.
type Metrics struct {
	TotalQueries         int     `json:"total_queries"`
	SuccessfulQueries    int     `json:"successful_queries"`
	AverageExecutionTime float64 `json:"average_execution_time"`
	LastUpdated          string  `json:"last_updated"`
}

// SuccessRate returns successful/total as a percentage, 0 when empty.
func (m Metrics) SuccessRate() float64 {
	if m.TotalQueries == 0 {
		return 0
	}
	return float64(m.SuccessfulQueries) / float64(m.TotalQueries) * 100
}

// Defaults returns the document used when nothing is persisted yet.
func Defaults(now time.Time) Preferences {
	return Preferences{
		Theme:              "light",
		Dialect:            "postgresql",
		FontSize:           "medium",
		ShowLineNumbers:    true,
		AutoComplete:       true,
		ConnectionProfiles: []ConnectionProfile{},
		RecentConnections:  []string{},
		SharedQueries:      []SharedQuery{},
		PerformanceMetrics: Metrics{
			LastUpdated: now.Format(time.RFC3339Nano),
		},
	}
}

func (p Preferences) clone() Preferences {
	p.ConnectionProfiles = append([]ConnectionProfile{}, p.ConnectionProfiles...)
	p.RecentConnections = append([]string{}, p.RecentConnections...)
	shared := make([]SharedQuery, len(p.SharedQueries))
	for i, q := range p.SharedQueries {
		q.Tags = append([]string{}, q.Tags...)
		shared[i] = q
	}
	p.SharedQueries = shared
	return p
}
