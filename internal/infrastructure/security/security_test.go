package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSysopTokenRoundTrip(t *testing.T) {
	token, expires, err := GenerateSysopToken("s3cret", time.Hour, time.Now())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	assert.NoError(t, ValidateSysopToken(token, "s3cret"))
	assert.ErrorIs(t, ValidateSysopToken(token, "other"), ErrInvalidToken)
}

func TestExpiredSysopToken(t *testing.T) {
	token, _, err := GenerateSysopToken("s3cret", time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.ErrorIs(t, ValidateSysopToken(token, "s3cret"), ErrInvalidToken)
}

func TestForeignSubjectRejected(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "visitor",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("s3cret"))
	require.NoError(t, err)
	assert.ErrorIs(t, ValidateSysopToken(signed, "s3cret"), ErrInvalidToken)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "battery staple"))
	assert.False(t, CheckPassword("not-a-hash", "correct horse"))
}

func TestGenerators(t *testing.T) {
	assert.Len(t, GenerateULID(), 26)
	assert.NotEqual(t, GenerateULID(), GenerateULID())

	key, err := GenerateSecureKey(64)
	require.NoError(t, err)
	assert.Len(t, key, 64)
}
