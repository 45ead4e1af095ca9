package sql

import (
	"fmt"
	"sort"
	"strings"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/apperrors"
)

// Dialect names a SQL syntax variant.
type Dialect string

const (
	MySQL      Dialect = "mysql"
	PostgreSQL Dialect = "postgresql"
	SQLite     Dialect = "sqlite"
	MSSQL      Dialect = "mssql"
)

// SupportedDialects maps each registered dialect to its display name.
var SupportedDialects = map[Dialect]string{
	MySQL:      "MySQL",
	PostgreSQL: "PostgreSQL",
	SQLite:     "SQLite",
	MSSQL:      "SQL Server",
}

// dialectAliases accepts the driver-style names used in DSNs and configs.
var dialectAliases = map[string]Dialect{
	"postgres":  PostgreSQL,
	"pg":        PostgreSQL,
	"sqlserver": MSSQL,
	"sqlite3":   SQLite,
	"mariadb":   MySQL,
}

// UnsupportedDialectError is returned for a dialect outside SupportedDialects.
type UnsupportedDialectError struct {
	Dialect string
}

func (e *UnsupportedDialectError) Error() string {
	return fmt.Sprintf("unsupported dialect: %s", e.Dialect)
}

func (e *UnsupportedDialectError) Unwrap() error {
	return apperrors.ErrUnsupportedDialect
}

// ParseDialect resolves a case-insensitive dialect name or alias.
func ParseDialect(name string) (Dialect, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if _, ok := SupportedDialects[Dialect(key)]; ok {
		return Dialect(key), nil
	}
	if d, ok := dialectAliases[key]; ok {
		return d, nil
	}
	return "", &UnsupportedDialectError{Dialect: name}
}

// DisplayName returns the human-readable name, or the raw value if unknown.
func (d Dialect) DisplayName() string {
	if name, ok := SupportedDialects[d]; ok {
		return name
	}
	return string(d)
}

// Dialects lists the supported dialects in stable order.
func Dialects() []Dialect {
	out := make([]Dialect, 0, len(SupportedDialects))
	for d := range SupportedDialects {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type replacement struct {
	old string
	new string
}

// conversionProfiles holds the ordered literal substitutions applied when
// converting into each target dialect.
var conversionProfiles = map[Dialect][]replacement{
	PostgreSQL: {
		{"`", `"`},
		{"IFNULL", "COALESCE"},
	},
	MySQL: {
		{`"`, "`"},
		{"COALESCE", "IFNULL"},
	},
	SQLite: {
		{"`", `"`},
		{"TRUE", "1"},
		{"FALSE", "0"},
	},
	MSSQL: {
		{"`", "["},
		{"LIMIT", "TOP"},
	},
}

// Convert rewrites query's surface syntax for target.
//
// Known limitation: substitutions are case-sensitive literal replacements with
// no awareness of literals or identifiers. A string literal containing TRUE
// becomes 1 for sqlite, closing backticks become '[' for mssql, and LIMIT is
// renamed in place rather than moved to a TOP clause.
func Convert(query string, target Dialect) (string, error) {
	profile, ok := conversionProfiles[target]
	if !ok {
		return "", &UnsupportedDialectError{Dialect: string(target)}
	}
	for _, r := range profile {
		query = strings.ReplaceAll(query, r.old, r.new)
	}
	return query, nil
}

// ConvertTo is Convert with a dialect name that is parsed first.
func ConvertTo(query, target string) (string, error) {
	d, err := ParseDialect(target)
	if err != nil {
		return "", err
	}
	return Convert(query, d)
}
