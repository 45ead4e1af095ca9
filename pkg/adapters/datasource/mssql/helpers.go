package mssql

import (
	"strings"
)

// quoteName brackets an identifier the way QUOTENAME() does, escaping ] as ]].
// A dotted name is quoted per part.
func quoteName(identifier string) string {
	parts := strings.Split(identifier, ".")
	for i, p := range parts {
		parts[i] = "[" + strings.ReplaceAll(p, "]", "]]") + "]"
	}
	return strings.Join(parts, ".")
}

// portableTypes renames SQL Server types to the names the other adapters
// report. Types missing here pass through upper-cased.
var portableTypes = map[string]string{
	"INT":              "INTEGER",
	"DECIMAL":          "NUMERIC",
	"SMALLMONEY":       "MONEY",
	"FLOAT":            "DOUBLE PRECISION",
	"NCHAR":            "CHAR",
	"NVARCHAR":         "VARCHAR",
	"NTEXT":            "TEXT",
	"BINARY":           "BYTEA",
	"VARBINARY":        "BYTEA",
	"IMAGE":            "BLOB",
	"DATETIME":         "TIMESTAMP",
	"DATETIME2":        "TIMESTAMP",
	"SMALLDATETIME":    "TIMESTAMP",
	"DATETIMEOFFSET":   "TIMESTAMP WITH TIME ZONE",
	"BIT":              "BOOLEAN",
	"UNIQUEIDENTIFIER": "UUID",
}

func mapSQLServerType(name string) string {
	name = strings.ToUpper(name)
	if mapped, ok := portableTypes[name]; ok {
		return mapped
	}
	return name
}
