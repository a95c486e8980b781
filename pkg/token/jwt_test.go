package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", 1, 1)

	access, err := m.GenerateToken(7, "alice", "Recruiter")
	require.NoError(t, err)

	claims, err := m.VerifyTokenOfType(access, TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "Recruiter", claims.Role)
}

func TestJWTManager_RefreshTokenIsNotAccessToken(t *testing.T) {
	m := NewJWTManager("secret", 1, 1)
	refresh, err := m.GenerateRefreshToken(7, "alice", "Recruiter")
	require.NoError(t, err)

	_, err = m.VerifyTokenOfType(refresh, TypeAccess)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	_, err = m.VerifyTokenOfType(refresh, TypeRefresh)
	assert.NoError(t, err)
}

func TestJWTManager_RejectsForeignSignature(t *testing.T) {
	tok, err := NewJWTManager("one", 1, 1).GenerateToken(1, "bob", "Talent")
	require.NoError(t, err)

	_, err = NewJWTManager("two", 1, 1).VerifyToken(tok)
	assert.Error(t, err)
}

func TestJWTManager_Expired(t *testing.T) {
	m := NewJWTManager("secret", 0, 0)
	tok, err := m.GenerateToken(1, "bob", "Talent")
	require.NoError(t, err)

	_, err = m.VerifyToken(tok)
	assert.Error(t, err)
}
