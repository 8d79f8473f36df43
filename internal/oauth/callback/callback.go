// Package callback arma la URI de /authorize y parsea la URI de redirect que
// vuelve del identity provider.
package callback

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Claves reconocidas en el request y en el redirect.
const (
	KeyError        = "error"
	KeyErrorDesc    = "error_description"
	KeyState        = "state"
	KeyIDToken      = "id_token"
	KeyAccessToken  = "access_token"
	KeyTokenType    = "token_type"
	KeyRefreshToken = "refresh_token"

	KeyScope        = "scope"
	KeyResponseType = "response_type"
	KeyConnection   = "connection"
	KeyClientID     = "client_id"
	KeyRedirectURI  = "redirect_uri"
	KeyAuth0Client  = "auth0Client"

	ScopeOpenID       = "openid"
	ResponseTypeToken = "token"
)

const redirectURIFormat = "%s/android/%s/callback"

var ErrInvalidAuthorizeURL = errors.New("callback: invalid authorize url")

// AuthorizeParams son los parámetros de un request a /authorize.
type AuthorizeParams struct {
	Connection  string
	State       string
	ClientID    string
	RedirectURI string
	// ClientInfo va como auth0Client cuando no está vacío.
	ClientInfo string
	// Extra se mezcla antes de los parámetros obligatorios; los nil se ignoran.
	Extra map[string]any
}

// BuildAuthorizationURI agrega los parámetros a base conservando su query.
// scope=openid salvo que Extra lo reemplace; response_type, state, connection,
// client_id y redirect_uri siempre ganan sobre Extra.
func BuildAuthorizationURI(base string, p AuthorizeParams) (*url.URL, error) {
	if strings.TrimSpace(base) == "" {
		return nil, ErrInvalidAuthorizeURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAuthorizeURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not absolute", ErrInvalidAuthorizeURL, base)
	}

	q := u.Query()
	q.Set(KeyScope, ScopeOpenID)
	for k, v := range p.Extra {
		if v == nil {
			continue
		}
		q.Set(k, fmt.Sprint(v))
	}
	if p.ClientInfo != "" {
		q.Set(KeyAuth0Client, p.ClientInfo)
	}
	q.Set(KeyResponseType, ResponseTypeToken)
	q.Set(KeyState, p.State)
	q.Set(KeyConnection, p.Connection)
	q.Set(KeyClientID, p.ClientID)
	q.Set(KeyRedirectURI, p.RedirectURI)
	u.RawQuery = q.Encode()
	return u, nil
}

// BuildRedirectURI => <domain>/android/<packageID>/callback.
func BuildRedirectURI(domain, packageID string) string {
	domain = strings.TrimRight(strings.TrimSpace(domain), "/")
	if domain != "" && !strings.Contains(domain, "://") {
		domain = "https://" + domain
	}
	return fmt.Sprintf(redirectURIFormat, domain, packageID)
}
