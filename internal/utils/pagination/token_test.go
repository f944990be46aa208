package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeEntryToken(t *testing.T) {
	// Standard values with nanosecond precision
	createdAt := time.Date(2025, 5, 15, 14, 30, 45, 123456789, time.UTC)
	token := EncodeEntryToken(createdAt, "entry-123")
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedAt, decodedID, err := DecodeEntryToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, createdAt, decodedAt, "Created at time should match after decode")
	assert.Equal(t, "entry-123", decodedID, "Entry ID should match after decode")

	// Current time round-trips too
	now := time.Now().UTC()
	nowToken := EncodeEntryToken(now, "entry-now")
	decodedNow, decodedNowID, err := DecodeEntryToken(nowToken)
	assert.NoError(t, err, "Decoding current time should not return an error")
	assert.True(t, now.Equal(decodedNow), "Current time should match after decode")
	assert.Equal(t, "entry-now", decodedNowID)

	// Entry IDs containing the separator survive because of SplitN
	pipeToken := EncodeEntryToken(createdAt, "entry|with|pipes")
	_, pipeID, err := DecodeEntryToken(pipeToken)
	assert.NoError(t, err)
	assert.Equal(t, "entry|with|pipes", pipeID)
}

func TestDecodeEntryTokenError(t *testing.T) {
	// Invalid base64
	_, _, err := DecodeEntryToken("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode", "Error should mention base64 decoding")

	// Missing separator
	noSeparator := base64.StdEncoding.EncodeToString([]byte("2025-05-15T00:00:00Z"))
	_, _, err = DecodeEntryToken(noSeparator)
	assert.Error(t, err, "Should return an error for a token without a separator")
	assert.Contains(t, err.Error(), "split", "Error should mention splitting issue")

	// Empty entry ID
	emptyID := base64.StdEncoding.EncodeToString([]byte("2025-05-15T00:00:00Z|"))
	_, _, err = DecodeEntryToken(emptyID)
	assert.Error(t, err, "Should return an error for an empty entry ID")

	// Unparseable timestamp
	badDate := base64.StdEncoding.EncodeToString([]byte("notadate|entry-123"))
	_, _, err = DecodeEntryToken(badDate)
	assert.Error(t, err, "Should return an error for an invalid timestamp")
	assert.Contains(t, err.Error(), "created_at parse", "Error should mention timestamp parsing")
}
