package sql

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateViewBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{
			name: "simple select",
			body: "SELECT * FROM raw.orders",
		},
		{
			name: "with cte",
			body: "WITH per_user AS (SELECT user_id FROM raw.orders) SELECT COUNT(*) FROM per_user",
		},
		{
			name: "trailing semicolon is normalized away",
			body: "SELECT 1;",
		},
		{
			name: "lowercase select",
			body: "select 1",
		},
		{
			name:    "empty body",
			body:    "   ",
			wantErr: ErrEmptyBody,
		},
		{
			name:    "two statements",
			body:    "SELECT 1; DROP TABLE raw.orders",
			wantErr: ErrMultipleStatements,
		},
		{
			name: "semicolon inside string literal is fine",
			body: "SELECT 'a;b' FROM raw.orders",
		},
		{
			name: "semicolon inside quoted identifier is fine",
			body: `SELECT "odd;name" FROM raw.orders`,
		},
		{
			name:    "delete statement",
			body:    "DELETE FROM raw.orders",
			wantErr: ErrNotReadOnly,
		},
		{
			name:    "insert statement",
			body:    "INSERT INTO raw.orders VALUES (1)",
			wantErr: ErrNotReadOnly,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateViewBody(tt.body)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
		})
	}
}

func TestCheckIdentifierForInjection(t *testing.T) {
	assert.Nil(t, CheckIdentifierForInjection("table_prefix", "thelook_"))
	assert.Nil(t, CheckIdentifierForInjection("schema", "public"))

	result := CheckIdentifierForInjection("schema", "x'; DROP TABLE raw.orders--")
	if assert.NotNil(t, result) {
		assert.True(t, result.IsSQLi)
		assert.Equal(t, "schema", result.Field)
		assert.NotEmpty(t, result.Fingerprint)
	}
}

func TestCheckSourceNaming(t *testing.T) {
	clean := CheckSourceNaming(map[string]string{
		"schema":       "public",
		"table_prefix": "thelook_",
	})
	assert.Empty(t, clean)

	dirty := CheckSourceNaming(map[string]string{
		"schema":       "public",
		"table_prefix": "x' UNION SELECT password FROM users--",
	})
	assert.Len(t, dirty, 1)
	assert.Equal(t, "table_prefix", dirty[0].Field)
}
