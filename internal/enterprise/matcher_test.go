package enterprise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellojohn-lock/internal/connection"
)

func fixtures() []connection.Connection {
	return []connection.Connection{
		connection.MustNew("auth0", map[string]any{"name": "Username-Password-Authentication", "domain": "corp.com"}),
		connection.MustNew("ad", map[string]any{"name": "corp-ad", "domain": "corp.com"}),
		connection.MustNew("samlp", map[string]any{"name": "partner", "domain": "partner.io", "domain_aliases": []any{"Partner.NET"}}),
		connection.MustNew("waad", map[string]any{"name": "second-corp", "domain": "CORP.COM"}),
		connection.MustNew("adfs", map[string]any{"name": "no-domain"}),
	}
}

func TestMatch(t *testing.T) {
	m := NewMatcher(fixtures())

	c, ok := m.Match("alice@corp.com")
	require.True(t, ok)
	assert.Equal(t, "corp-ad", c.Name(), "first enterprise match wins; database connections are ignored")

	c, ok = m.Match("bob@partner.net")
	require.True(t, ok)
	assert.Equal(t, "partner", c.Name())

	_, ok = m.Match("alice@other.com")
	assert.False(t, ok)
}

func TestMatch_CaseInsensitive(t *testing.T) {
	m := NewMatcher(fixtures())
	upper, ok1 := m.Match("X@CORP.COM")
	lower, ok2 := m.Match("x@corp.com")
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, lower.Name(), upper.Name())
}

func TestMatch_Malformed(t *testing.T) {
	m := NewMatcher(fixtures())
	for _, email := range []string{"", "alice", "alice@", "@"} {
		_, ok := m.Match(email)
		assert.False(t, ok, "email %q", email)
	}
}

func TestMatch_EmptyMatcher(t *testing.T) {
	for _, m := range []*Matcher{NewMatcher(nil), NewMatcher([]connection.Connection{}), nil} {
		_, ok := m.Match("alice@corp.com")
		assert.False(t, ok)
	}
	assert.Len(t, NewMatcher(fixtures()).Connections(), 4)
}

func TestExtractUsername(t *testing.T) {
	u, ok := ExtractUsername("alice@corp.com")
	require.True(t, ok)
	assert.Equal(t, "alice", u)

	u, ok = ExtractUsername("@corp.com")
	require.True(t, ok)
	assert.Equal(t, "", u)

	_, ok = ExtractUsername("alice")
	assert.False(t, ok)
}

func TestDomainFor(t *testing.T) {
	assert.Equal(t, "partner.io", DomainFor(fixtures()[2]))
	assert.Equal(t, "", DomainFor(fixtures()[4]))
}

func TestMatch_AliasOnlyConnection(t *testing.T) {
	m := NewMatcher([]connection.Connection{
		connection.MustNew("ad", map[string]any{"name": "corp", "domain_aliases": []any{"Corp.IO"}}),
	})
	c, ok := m.Match("alice@corp.io")
	require.True(t, ok)
	assert.Equal(t, "corp", c.Name())

	_, ok = m.Match("alice@corp.com")
	assert.False(t, ok)
}
