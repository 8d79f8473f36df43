package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-verified-here"))
	require.NoError(t, err)
	return s
}

func TestFromValues(t *testing.T) {
	v := map[string]string{"access_token": "at", "token_type": "Bearer", "state": "ignored"}
	tok := FromValues(func(k string) string { return v[k] })
	assert.Equal(t, &Token{AccessToken: "at", TokenType: "Bearer"}, tok)
}

func TestClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := &Token{IDToken: signed(t, jwt.MapClaims{"sub": "auth0|123", "email": "alice@corp.com", "exp": exp.Unix()})}

	claims, err := tok.Claims()
	require.NoError(t, err)
	assert.Equal(t, "alice@corp.com", claims["email"])

	sub, err := tok.Subject()
	require.NoError(t, err)
	assert.Equal(t, "auth0|123", sub)

	got, err := tok.ExpiresAt()
	require.NoError(t, err)
	assert.True(t, exp.Equal(got))
}

func TestClaims_Errors(t *testing.T) {
	_, err := (&Token{AccessToken: "at"}).Claims()
	require.ErrorIs(t, err, ErrNoIDToken)

	var nilTok *Token
	_, err = nilTok.Subject()
	require.ErrorIs(t, err, ErrNoIDToken)

	_, err = (&Token{IDToken: "not-a-jwt"}).Claims()
	require.Error(t, err)

	at, err := (&Token{IDToken: signed(t, jwt.MapClaims{"sub": "x"})}).ExpiresAt()
	require.NoError(t, err)
	assert.True(t, at.IsZero())
}
