package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructDatabaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		baseURL string
		dbName  string
		want    string
	}{
		{"no database name", "postgres://u:p@host:5432", "", "postgres://u:p@host:5432"},
		{"plain", "postgres://u:p@host:5432", "prizepool", "postgres://u:p@host:5432/prizepool?sslmode=disable"},
		{"trailing slash", "postgres://u:p@host:5432/", "prizepool", "postgres://u:p@host:5432/prizepool?sslmode=disable"},
		{"existing query", "postgres://u:p@host:5432?connect_timeout=5", "prizepool", "postgres://u:p@host:5432/prizepool?connect_timeout=5&sslmode=disable"},
		{"explicit sslmode", "postgres://u:p@host:5432?sslmode=require", "prizepool", "postgres://u:p@host:5432/prizepool?sslmode=require"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ConstructDatabaseURL(tt.baseURL, tt.dbName))
		})
	}
}
