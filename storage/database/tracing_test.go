package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeSQL(t *testing.T) {
	got := sanitizeSQL(`SELECT * FROM "users" WHERE email_hash = 'abc123' AND deleted_at IS NULL`)
	assert.Equal(t, `SELECT * FROM "users" WHERE email_hash='***' AND deleted_at IS NULL`, got)

	got = sanitizeSQL(`SELECT * FROM "users" WHERE google_uid = $1`)
	assert.Equal(t, `SELECT * FROM "users" WHERE google_uid = $1`, got)

	long := "SELECT " + strings.Repeat("x", 600)
	assert.Len(t, sanitizeSQL(long), maxSQLLength+3)
}
