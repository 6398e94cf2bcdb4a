package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeToken(t *testing.T) {
	// Test case 1: Standard date/time values
	createdAt := time.Date(2023, 5, 15, 14, 30, 45, 123456789, time.UTC)
	id := "550e8400-e29b-41d4-a716-446655440000"

	token := EncodeToken(createdAt, id)
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedCreatedAt, decodedID, err := DecodeToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, createdAt, decodedCreatedAt, "Created at time should match after decode")
	assert.Equal(t, id, decodedID, "ID should match after decode")

	// Test case 2: Zero time value
	zeroToken := EncodeToken(time.Time{}, "")
	decodedZeroTime, decodedEmptyID, err := DecodeToken(zeroToken)
	assert.NoError(t, err, "Decoding zero time should not return an error")
	assert.Equal(t, time.Time{}, decodedZeroTime, "Zero time should match after decode")
	assert.Empty(t, decodedEmptyID, "ID should be empty after decode")

	// Test case 3: ID containing the separator character survives the round trip
	pipeToken := EncodeToken(createdAt, "id|with|pipes")
	_, decodedPipeID, err := DecodeToken(pipeToken)
	assert.NoError(t, err)
	assert.Equal(t, "id|with|pipes", decodedPipeID)
}

func TestDecodeTokenInvalid(t *testing.T) {
	_, _, err := DecodeToken("not-base64!!!")
	assert.Error(t, err, "Invalid base64 should return an error")

	_, _, err = DecodeToken("bm8tc2VwYXJhdG9y") // "no-separator"
	assert.Error(t, err, "Token without separator should return an error")

	_, _, err = DecodeToken("bm90LWEtZGF0ZXxpZA==") // "not-a-date|id"
	assert.Error(t, err, "Token with unparseable time should return an error")
}
