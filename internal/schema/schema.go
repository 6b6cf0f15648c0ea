// Package schema holds the static registry of record types accepted by the
// data lake and the per-type column contracts used to normalize uploads.
package schema

import (
	"errors"
	"fmt"
	"time"
)

// ColumnType is the semantic type of a column after normalization.
type ColumnType string

const (
	TypeInteger   ColumnType = "integer"
	TypeString    ColumnType = "string"
	TypeTimestamp ColumnType = "timestamp"
)

// ErrUnknownRecordType indicates the caller asked for a record type the
// registry does not serve. This is a client error, not a system fault.
var ErrUnknownRecordType = errors.New("unknown record type")

// RecordTypeSchema describes one record type. Columns is authoritative for
// output column order and header content; MissingValueFill and DateFormat
// only ever reference members of Columns.
type RecordTypeSchema struct {
	Name             string
	Columns          []string
	Types            map[string]ColumnType
	MissingValueFill map[string]string
	DateFormat       map[string]string
}

// HasColumn reports whether name is a schema column.
func (s RecordTypeSchema) HasColumn(name string) bool {
	for _, c := range s.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// registry contents are fixed at startup; never mutated afterwards.
var registry = map[string]RecordTypeSchema{
	"hired_employees": {
		Name:    "hired_employees",
		Columns: []string{"id", "name", "datetime", "department_id", "job_id"},
		Types: map[string]ColumnType{
			"id":            TypeInteger,
			"name":          TypeString,
			"datetime":      TypeTimestamp,
			"department_id": TypeInteger,
			"job_id":        TypeInteger,
		},
		MissingValueFill: map[string]string{
			"name":          "",
			"datetime":      "",
			"department_id": "0",
			"job_id":        "0",
		},
		DateFormat: map[string]string{
			"datetime": time.RFC3339,
		},
	},
	"departments": {
		Name:    "departments",
		Columns: []string{"id", "department"},
		Types: map[string]ColumnType{
			"id":         TypeInteger,
			"department": TypeString,
		},
		MissingValueFill: map[string]string{
			"department": "",
		},
	},
	"jobs": {
		Name:    "jobs",
		Columns: []string{"id", "job"},
		Types: map[string]ColumnType{
			"id":  TypeInteger,
			"job": TypeString,
		},
		MissingValueFill: map[string]string{
			"job": "",
		},
	},
}

// aliases maps accepted upload type names onto registry entries.
var aliases = map[string]string{
	"employees": "hired_employees",
}

func init() {
	for name, s := range registry {
		for col := range s.MissingValueFill {
			if !s.HasColumn(col) {
				panic(fmt.Sprintf("schema %s: fill column %q not in columns", name, col))
			}
		}
		for col := range s.DateFormat {
			if !s.HasColumn(col) {
				panic(fmt.Sprintf("schema %s: date column %q not in columns", name, col))
			}
		}
		for _, col := range s.Columns {
			if _, ok := s.Types[col]; !ok {
				panic(fmt.Sprintf("schema %s: column %q has no type", name, col))
			}
		}
	}
}

// Lookup resolves a record type name (or alias) to its schema.
func Lookup(recordType string) (RecordTypeSchema, error) {
	if canonical, ok := aliases[recordType]; ok {
		recordType = canonical
	}
	s, ok := registry[recordType]
	if !ok {
		return RecordTypeSchema{}, fmt.Errorf("%w: %q", ErrUnknownRecordType, recordType)
	}
	return s, nil
}

// RecordTypes returns the canonical record type names served by the registry.
func RecordTypes() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	return names
}
