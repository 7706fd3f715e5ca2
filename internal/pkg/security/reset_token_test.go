package security

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestPasswordResetToken_RoundTrip(t *testing.T) {
	token, err := GeneratePasswordResetToken(42, "abc123", time.Hour, testSecret)
	require.NoError(t, err)

	claims, err := VerifyPasswordResetToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "abc123", claims.Stamp)
	assert.Greater(t, claims.ExpiresAt, time.Now().Unix())
}

func TestPasswordResetToken_Rejects(t *testing.T) {
	token, err := GeneratePasswordResetToken(42, "abc123", time.Hour, testSecret)
	require.NoError(t, err)
	parts := strings.SplitN(token, ".", 2)

	forged := base64.RawURLEncoding.EncodeToString([]byte(`{"user_id":1,"stamp":"abc123","exp":9999999999}`)) + "." + parts[1]

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{"wrong secret", token, "other"},
		{"no dot", "abc", testSecret},
		{"bad payload encoding", "!!!." + parts[1], testSecret},
		{"bad signature encoding", parts[0] + ".!!!", testSecret},
		{"forged payload", forged, testSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := VerifyPasswordResetToken(tt.token, tt.secret)
			assert.True(t, errors.Is(err, ErrTokenInvalid), "got %v", err)
		})
	}
}

func TestPasswordResetToken_Expired(t *testing.T) {
	token, err := GeneratePasswordResetToken(1, "s", -time.Hour, testSecret)
	require.NoError(t, err)
	// non-positive ttl falls back to the default
	_, err = VerifyPasswordResetToken(token, testSecret)
	require.NoError(t, err)

	claims := ResetTokenClaims{UserID: 1, Stamp: "s", ExpiresAt: time.Now().Add(-time.Minute).Unix()}
	expired := encodeForTest(t, claims)
	_, err = VerifyPasswordResetToken(expired, testSecret)
	assert.True(t, errors.Is(err, ErrTokenExpired))
}

func TestPasswordResetToken_NoSecret(t *testing.T) {
	_, err := GeneratePasswordResetToken(1, "s", time.Hour, "")
	assert.ErrorIs(t, err, ErrNoSecret)
	_, err = VerifyPasswordResetToken("a.b", "")
	assert.ErrorIs(t, err, ErrNoSecret)
}

func encodeForTest(t *testing.T, claims ResetTokenClaims) string {
	t.Helper()
	payload, err := json.Marshal(claims)
	require.NoError(t, err)
	return base64.RawURLEncoding.EncodeToString(payload) + "." + base64.RawURLEncoding.EncodeToString(sign(payload, testSecret))
}
