// Package sql provides validation for the SQL the engine executes.
package sql

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyBody indicates an empty view body.
	ErrEmptyBody = errors.New("view body is empty")
	// ErrMultipleStatements indicates the body contains more than one SQL statement.
	ErrMultipleStatements = errors.New("multiple SQL statements not allowed; a view body is a single statement")
	// ErrNotReadOnly indicates the body is not a plain SELECT.
	ErrNotReadOnly = errors.New("view body must be a SELECT or WITH ... SELECT statement")
)

// ValidateViewBody checks that a view body is a single read-only statement.
// Bodies are compiled into CREATE VIEW DDL verbatim, so anything that smuggles
// a second statement or a non-SELECT through would execute with the engine's
// privileges. Validation order:
//  1. Strip trailing semicolon and whitespace (normalize)
//  2. Reject remaining semicolons outside string literals (multiple statements)
//  3. Require a SELECT or WITH prefix
func ValidateViewBody(body string) error {
	normalized := stripTrailingSemicolon(strings.TrimSpace(body))
	if normalized == "" {
		return ErrEmptyBody
	}

	if hasSemicolonOutsideStrings(normalized) {
		return ErrMultipleStatements
	}

	upper := strings.ToUpper(normalized)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return fmt.Errorf("%w: starts with %q", ErrNotReadOnly, firstWord(normalized))
	}

	return nil
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// hasSemicolonOutsideStrings returns true if the SQL contains any semicolon
// outside of string literals.
func hasSemicolonOutsideStrings(sqlQuery string) bool {
	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
	)

	state := stateNormal
	prevChar := rune(0)

	for _, char := range sqlQuery {
		switch state {
		case stateNormal:
			switch char {
			case ';':
				return true
			case '\'':
				state = stateSingleQuote
			case '"':
				state = stateDoubleQuote
			}
		case stateSingleQuote:
			// Handle both backslash escape (\') and SQL standard escape ('').
			// For a doubled quote this exits and immediately re-enters on the
			// next quote, which correctly keeps us inside the string.
			if char == '\'' && prevChar != '\\' {
				state = stateNormal
			}
		case stateDoubleQuote:
			if char == '"' && prevChar != '\\' {
				state = stateNormal
			}
		}
		prevChar = char
	}

	return false
}

// stripTrailingSemicolon removes a trailing semicolon and surrounding whitespace.
func stripTrailingSemicolon(sqlQuery string) string {
	sqlQuery = strings.TrimRight(sqlQuery, " \t\n\r")
	if strings.HasSuffix(sqlQuery, ";") {
		sqlQuery = strings.TrimRight(strings.TrimSuffix(sqlQuery, ";"), " \t\n\r")
	}
	return sqlQuery
}
