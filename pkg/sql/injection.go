package sql

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionCheckResult contains the result of an injection check on an
// operator-supplied identifier fragment.
type InjectionCheckResult struct {
	IsSQLi      bool   // True if SQL injection pattern detected
	Fingerprint string // libinjection fingerprint of the detected pattern
	Field       string // Name of the configuration field that failed the check
	Value       string // The value that was checked
}

// CheckIdentifierForInjection uses libinjection to detect SQL injection
// patterns in an identifier fragment coming from configuration (the source
// schema and table prefix end up inside alias-view DDL).
//
// Identifier quoting already neutralizes these values; the check exists to
// reject a hostile config loudly instead of creating strangely named views.
//
// Returns nil if no injection is detected.
func CheckIdentifierForInjection(field, value string) *InjectionCheckResult {
	isSQLi, fingerprint := libinjection.IsSQLi(value)
	if isSQLi {
		return &InjectionCheckResult{
			IsSQLi:      true,
			Fingerprint: string(fingerprint),
			Field:       field,
			Value:       value,
		}
	}

	return nil
}

// CheckSourceNaming validates all identifier fragments used to address the
// physical source tables. Returns one result per offending field, or an
// empty slice when the naming is clean.
func CheckSourceNaming(fields map[string]string) []*InjectionCheckResult {
	var results []*InjectionCheckResult
	for field, value := range fields {
		if result := CheckIdentifierForInjection(field, value); result != nil {
			results = append(results, result)
		}
	}
	return results
}
