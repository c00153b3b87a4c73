package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSessionValue(t *testing.T) {
	createdAt := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)

	session, err := parseSessionValue("42:1738404000")
	require.NoError(t, err)
	assert.Equal(t, 42, session.UserID)
	assert.Equal(t, createdAt.Unix(), session.CreatedAt.Unix())

	_, err = parseSessionValue("no-separator")
	require.Error(t, err)

	_, err = parseSessionValue("abc:1738404000")
	require.Error(t, err)

	_, err = parseSessionValue("42:not-a-timestamp")
	require.Error(t, err)
}
