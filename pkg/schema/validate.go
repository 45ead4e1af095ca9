package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/HarshMishra-Git/SQLSAGE-AiVERSE/pkg/apperrors"
)

// Format is the encoding of a schema document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Validate reports whether doc has the required shape: a "tables" object
// whose entries are objects with a "columns" object, and every column an
// object carrying a "type" key. Any deviation rejects the whole document.
func Validate(doc any) bool {
	root, ok := doc.(map[string]any)
	if !ok {
		return false
	}
	tables, ok := root["tables"].(map[string]any)
	if !ok {
		return false
	}
	for _, rawTable := range tables {
		table, ok := rawTable.(map[string]any)
		if !ok {
			return false
		}
		columns, ok := table["columns"].(map[string]any)
		if !ok {
			return false
		}
		for _, rawColumn := range columns {
			column, ok := rawColumn.(map[string]any)
			if !ok {
				return false
			}
			if _, ok := column["type"]; !ok {
				return false
			}
		}
	}
	return true
}

// DetectFormat picks the format from a filename extension, falling back to
// sniffing the content: a leading '{' means JSON.
func DetectFormat(filename string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		return FormatJSON
	}
	return FormatYAML
}

// Parse decodes and validates a schema document. Errors wrap
// apperrors.ErrSchemaInvalid.
func Parse(data []byte, format Format) (*Schema, error) {
	var doc any
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrSchemaInvalid, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrSchemaInvalid, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown format %q", apperrors.ErrSchemaInvalid, format)
	}

	if !Validate(doc) {
		return nil, fmt.Errorf("%w: expected tables with columns that each declare a type", apperrors.ErrSchemaInvalid)
	}

	// Re-encode the validated document as JSON so both formats share one typed
	// decode path.
	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSchemaInvalid, err)
	}
	var s Schema
	if err := json.Unmarshal(normalized, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSchemaInvalid, err)
	}
	return &s, nil
}
