package callback

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAuthorizationURI(t *testing.T) {
	u, err := BuildAuthorizationURI("https://acme.auth0.com/authorize?prompt=login", AuthorizeParams{
		Connection:  "facebook",
		State:       "st4te",
		ClientID:    "client123",
		RedirectURI: "https://acme.auth0.com/android/com.acme/callback",
		ClientInfo:  "eyJuYW1lIjoibG9jayJ9",
		Extra: map[string]any{
			"device":        "pixel",
			"nonce":         nil,
			"max_age":       3600,
			"response_type": "code",
			"state":         "attacker",
		},
	})
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "acme.auth0.com", u.Host)
	assert.Equal(t, "/authorize", u.Path)
	assert.Equal(t, "openid", q.Get("scope"))
	assert.Equal(t, "token", q.Get("response_type"))
	assert.Equal(t, "st4te", q.Get("state"))
	assert.Equal(t, "facebook", q.Get("connection"))
	assert.Equal(t, "client123", q.Get("client_id"))
	assert.Equal(t, "https://acme.auth0.com/android/com.acme/callback", q.Get("redirect_uri"))
	assert.Equal(t, "eyJuYW1lIjoibG9jayJ9", q.Get("auth0Client"))
	assert.Equal(t, "pixel", q.Get("device"))
	assert.Equal(t, "3600", q.Get("max_age"))
	assert.Equal(t, "login", q.Get("prompt"))
	assert.False(t, q.Has("nonce"))
}

func TestBuildAuthorizationURI_ScopeOverride(t *testing.T) {
	u, err := BuildAuthorizationURI("https://acme.auth0.com/authorize", AuthorizeParams{
		Connection: "github",
		Extra:      map[string]any{"scope": "openid offline_access"},
	})
	require.NoError(t, err)
	assert.Equal(t, "openid offline_access", u.Query().Get("scope"))
	assert.False(t, u.Query().Has("auth0Client"))
}

func TestBuildAuthorizationURI_Invalid(t *testing.T) {
	for _, base := range []string{"", "   ", "://nope", "/authorize", "acme.auth0.com"} {
		_, err := BuildAuthorizationURI(base, AuthorizeParams{})
		require.ErrorIs(t, err, ErrInvalidAuthorizeURL, "base %q", base)
	}
}

func TestBuildRedirectURI(t *testing.T) {
	assert.Equal(t, "https://acme.auth0.com/android/com.acme.app/callback", BuildRedirectURI("https://acme.auth0.com", "com.acme.app"))
	assert.Equal(t, "https://acme.auth0.com/android/com.acme.app/callback", BuildRedirectURI("acme.auth0.com/", "com.acme.app"))
	assert.Equal(t, "http://localhost:3000/android/pkg/callback", BuildRedirectURI("http://localhost:3000", "pkg"))
}

func TestParseCallback_DropsMalformed(t *testing.T) {
	u, err := url.Parse("https://app/callback?a=1&b=2&bad")
	require.NoError(t, err)
	assert.Equal(t, Values{"a": "1", "b": "2"}, ParseCallback(u))
}

func TestParseCallback_FragmentAndPrecedence(t *testing.T) {
	v, err := ParseCallbackString("https://app/callback#access_token=abc&token_type=Bearer&state=xyz")
	require.NoError(t, err)
	assert.Equal(t, Values{"access_token": "abc", "token_type": "Bearer", "state": "xyz"}, v)

	v, err = ParseCallbackString("https://app/callback?error=access_denied#access_token=abc")
	require.NoError(t, err)
	assert.Equal(t, Values{"error": "access_denied"}, v)

	v, err = ParseCallbackString("https://app/callback?#state=s")
	require.NoError(t, err)
	assert.Equal(t, "s", v.Get("state"))
}

func TestParseCallback_Decoding(t *testing.T) {
	v, err := ParseCallbackString("https://app/callback?error_description=User%20did%20not%20authorize&k=%zz&x=a=b&=empty")
	require.NoError(t, err)
	assert.Equal(t, "User did not authorize", v.Get("error_description"))
	assert.Equal(t, "%zz", v.Get("k"))
	assert.False(t, v.Has("x"))
	assert.Equal(t, "empty", v[""])
}

func TestParseCallback_Empty(t *testing.T) {
	assert.Empty(t, ParseCallback(nil))
	v, err := ParseCallbackString("https://app/callback")
	require.NoError(t, err)
	assert.Empty(t, v)
}
