package webflow

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellojohn-lock/internal/connection"
)

type fakeLauncher struct {
	reqs     []LaunchRequest
	err      error
	canceled int
	cleared  int
	onLaunch func(LaunchRequest)
}

func (f *fakeLauncher) Launch(_ context.Context, req LaunchRequest) error {
	f.reqs = append(f.reqs, req)
	if f.onLaunch != nil {
		f.onLaunch(req)
	}
	return f.err
}

func (f *fakeLauncher) Cancel()       { f.canceled++ }
func (f *fakeLauncher) ClearSession() { f.cleared++ }

var facebook = connection.MustNew("facebook", map[string]any{"name": "facebook"})

func testAccount() Account {
	return Account{
		ClientID:     "client123",
		Domain:       "https://acme.auth0.com",
		AuthorizeURL: "https://acme.auth0.com/authorize",
		PackageID:    "com.acme.app",
	}
}

func started(t *testing.T) (*Controller, *fakeLauncher) {
	t.Helper()
	l := &fakeLauncher{}
	c := New(testAccount(), Options{UseBrowser: true, Browser: l, Parameters: map[string]any{"prompt": "login"}})
	require.NoError(t, c.Start(context.Background(), facebook))
	require.Equal(t, StatusAwaitingRedirect, c.Status())
	require.Len(t, l.reqs, 1)
	return c, l
}

func redirect(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestStart_BuildsAuthorizeRequest(t *testing.T) {
	c, l := started(t)
	req := l.reqs[0]
	a := c.Attempt()

	assert.Equal(t, a.ID, req.AttemptID)
	assert.Equal(t, "facebook", req.Connection)
	assert.Equal(t, "https://acme.auth0.com/android/com.acme.app/callback", req.RedirectURI)
	q := req.URI.Query()
	assert.Equal(t, a.State, q.Get("state"))
	assert.Equal(t, "facebook", q.Get("connection"))
	assert.Equal(t, "client123", q.Get("client_id"))
	assert.Equal(t, "token", q.Get("response_type"))
	assert.Equal(t, "openid", q.Get("scope"))
	assert.Equal(t, "login", q.Get("prompt"))
	assert.Equal(t, req.RedirectURI, q.Get("redirect_uri"))
}

func TestStart_UsesSurfaceWhenBrowserDisabled(t *testing.T) {
	browser, surface := &fakeLauncher{}, &fakeLauncher{}
	c := New(testAccount(), Options{UseBrowser: false, Browser: browser, Surface: surface})
	require.NoError(t, c.Start(context.Background(), facebook))
	assert.Empty(t, browser.reqs)
	assert.Len(t, surface.reqs, 1)
}

func TestStart_MissingAuthorizeURLFailsFast(t *testing.T) {
	l := &fakeLauncher{}
	acc := testAccount()
	acc.AuthorizeURL = ""
	c := New(acc, Options{UseBrowser: true, Browser: l})

	var got []Outcome
	c.OnResult = func(o Outcome) { got = append(got, o) }

	err := c.Start(context.Background(), facebook)
	require.ErrorIs(t, err, ErrInvalidAuthorizeURL)
	assert.Empty(t, l.reqs)
	assert.Equal(t, StatusFailed, c.Status())
	require.Len(t, got, 1)
	assert.ErrorIs(t, got[0].Err, ErrInvalidAuthorizeURL)

	select {
	case <-c.Done():
	default:
		t.Fatal("done not closed")
	}
}

func TestStart_LaunchErrors(t *testing.T) {
	boom := errors.New("no browser")
	c := New(testAccount(), Options{UseBrowser: true, Browser: &fakeLauncher{err: boom}})
	err := c.Start(context.Background(), facebook)
	require.ErrorIs(t, err, ErrLaunchFailed)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, StatusFailed, c.Status())

	c = New(testAccount(), Options{UseBrowser: true})
	require.ErrorIs(t, c.Start(context.Background(), facebook), ErrNoLauncher)
}

func TestStart_Twice(t *testing.T) {
	c, _ := started(t)
	require.ErrorIs(t, c.Start(context.Background(), facebook), ErrAttemptInProgress)
}

func TestAuthorize_BeforeStart(t *testing.T) {
	c := New(testAccount(), Options{})
	_, err := c.Authorize(context.Background(), RedirectResult{})
	require.ErrorIs(t, err, ErrNotStarted)
}

func TestAuthorize_Success(t *testing.T) {
	c, _ := started(t)
	a := c.Attempt()

	var hook Outcome
	c.OnResult = func(o Outcome) { hook = o }

	out, err := c.Authorize(context.Background(), RedirectResult{
		AttemptID: a.ID,
		URI:       redirect(t, "https://acme.auth0.com/android/com.acme.app/callback#access_token=at&id_token=it&token_type=Bearer&state="+url.QueryEscape(a.State)),
	})
	require.NoError(t, err)
	assert.True(t, out.Handled)
	assert.Equal(t, StatusSucceeded, out.Status)
	require.NotNil(t, out.Token)
	assert.Equal(t, "at", out.Token.AccessToken)
	assert.Equal(t, "it", out.Token.IDToken)
	assert.Equal(t, "Bearer", out.Token.TokenType)
	assert.Empty(t, out.Token.RefreshToken)
	assert.Equal(t, out, hook)

	final, ok := c.Outcome()
	assert.True(t, ok)
	assert.Equal(t, out, final)
	<-c.Done()

	// terminal: una segunda entrega no se procesa
	again, err := c.Authorize(context.Background(), RedirectResult{AttemptID: a.ID, URI: redirect(t, "https://x/cb?error=access_denied")})
	require.NoError(t, err)
	assert.False(t, again.Handled)
	assert.Equal(t, StatusSucceeded, c.Status())
}

func TestAuthorize_ErrorClassification(t *testing.T) {
	cases := []struct {
		query string
		want  error
	}{
		{"error=access_denied", ErrAccessDenied},
		{"error=ACCESS_DENIED&state=whatever", ErrAccessDenied},
		{"error=server_error&error_description=boom", ErrProviderError},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			c, _ := started(t)
			out, err := c.Authorize(context.Background(), RedirectResult{
				AttemptID: c.Attempt().ID,
				URI:       redirect(t, "https://x/cb?"+tc.query),
			})
			require.NoError(t, err)
			assert.True(t, out.Handled)
			assert.Equal(t, StatusFailed, out.Status)
			assert.ErrorIs(t, out.Err, tc.want)
			assert.Nil(t, out.Token)
		})
	}
}

func TestAuthorize_StateMismatch(t *testing.T) {
	c, _ := started(t)
	out, err := c.Authorize(context.Background(), RedirectResult{
		AttemptID: c.Attempt().ID,
		URI:       redirect(t, "https://x/cb#access_token=at&state=forged"),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, out.Status)
	assert.ErrorIs(t, out.Err, ErrInvalidState)
	assert.Equal(t, KindInvalidState, KindOf(out.Err))
}

func TestAuthorize_AbsentStateIsMismatch(t *testing.T) {
	c, _ := started(t)
	out, err := c.Authorize(context.Background(), RedirectResult{
		AttemptID: c.Attempt().ID,
		URI:       redirect(t, "https://x/cb#access_token=at"),
	})
	require.NoError(t, err)
	assert.ErrorIs(t, out.Err, ErrInvalidState)
}

func TestAuthorize_NotHandled(t *testing.T) {
	c, _ := started(t)
	a := c.Attempt()

	foreign, err := c.Authorize(context.Background(), RedirectResult{
		AttemptID: "someone-else",
		URI:       redirect(t, "https://x/cb?state="+url.QueryEscape(a.State)+"&access_token=at"),
	})
	require.NoError(t, err)
	assert.False(t, foreign.Handled)

	empty, err := c.Authorize(context.Background(), RedirectResult{AttemptID: a.ID, URI: redirect(t, "https://x/cb")})
	require.NoError(t, err)
	assert.False(t, empty.Handled)

	canceled, err := c.Authorize(context.Background(), RedirectResult{AttemptID: a.ID, Canceled: true})
	require.NoError(t, err)
	assert.False(t, canceled.Handled)

	assert.Equal(t, StatusAwaitingRedirect, c.Status())
	_, done := c.Outcome()
	assert.False(t, done)

	// el state sigue vigente después de las entregas ignoradas
	ok, err := c.Authorize(context.Background(), RedirectResult{
		AttemptID: a.ID,
		URI:       redirect(t, "https://x/cb?state="+url.QueryEscape(a.State)+"&access_token=at"),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, ok.Status)
}

func TestAuthorize_SynchronousDelivery(t *testing.T) {
	l := &fakeLauncher{}
	c := New(testAccount(), Options{UseBrowser: true, Browser: l})
	var out Outcome
	l.onLaunch = func(req LaunchRequest) {
		var err error
		out, err = c.Authorize(context.Background(), RedirectResult{
			AttemptID: req.AttemptID,
			URI:       redirect(t, "https://x/cb?state="+url.QueryEscape(req.URI.Query().Get("state"))+"&access_token=at"),
		})
		require.NoError(t, err)
	}
	require.NoError(t, c.Start(context.Background(), facebook))
	assert.Equal(t, StatusSucceeded, out.Status)
	assert.Equal(t, StatusSucceeded, c.Status())
}

func TestStopClearSessionReset(t *testing.T) {
	c, l := started(t)
	first := c.Attempt()

	c.Stop()
	assert.Equal(t, 1, l.canceled)
	assert.Equal(t, StatusAwaitingRedirect, c.Status())

	c.ClearSession()
	assert.Equal(t, 2, l.canceled)
	assert.Equal(t, 1, l.cleared)

	c.Reset()
	assert.Equal(t, StatusIdle, c.Status())
	assert.Equal(t, 3, l.canceled)
	assert.Empty(t, c.Attempt().ID)

	c.SetParameters(map[string]any{"audience": "api"})
	require.NoError(t, c.Start(context.Background(), facebook))
	second := c.Attempt()
	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, first.State, second.State)
	assert.Equal(t, "api", l.reqs[1].URI.Query().Get("audience"))
	assert.False(t, l.reqs[1].URI.Query().Has("prompt"))

	// el state del intento anterior ya no sirve
	out, err := c.Authorize(context.Background(), RedirectResult{
		AttemptID: second.ID,
		URI:       redirect(t, "https://x/cb?state="+url.QueryEscape(first.State)+"&access_token=at"),
	})
	require.NoError(t, err)
	assert.ErrorIs(t, out.Err, ErrInvalidState)
}

func TestReset_WakesDoneWaiters(t *testing.T) {
	c, _ := started(t)
	done := c.Done()

	woke := make(chan struct{})
	go func() {
		<-done
		close(woke)
	}()

	c.Reset()
	select {
	case <-woke:
	case <-time.After(time.Second):
		t.Fatal("Done del intento cancelado no se cerró con Reset")
	}
	_, ok := c.Outcome()
	assert.False(t, ok)

	// el canal nuevo queda abierto hasta el próximo final
	select {
	case <-c.Done():
		t.Fatal("Done nuevo no debería estar cerrado")
	default:
	}
}

func TestReset_AfterTerminalDoesNotPanic(t *testing.T) {
	c, _ := started(t)
	out, err := c.Authorize(context.Background(), RedirectResult{
		AttemptID: c.Attempt().ID,
		URI:       redirect(t, "https://x/cb?error=access_denied"),
	})
	require.NoError(t, err)
	require.ErrorIs(t, out.Err, ErrAccessDenied)
	<-c.Done()

	assert.NotPanics(t, c.Reset)
	assert.Equal(t, StatusIdle, c.Status())
	// Reset en Idle tampoco
	assert.NotPanics(t, c.Reset)
}
