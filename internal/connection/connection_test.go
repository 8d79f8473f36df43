package connection

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeForStrategy(t *testing.T) {
	cases := map[string]Type{
		"auth0":         Database,
		"sms":           Passwordless,
		"email":         Passwordless,
		"ad":            Enterprise,
		"adfs":          Enterprise,
		"auth0-adldap":  Enterprise,
		"custom":        Enterprise,
		"google-apps":   Enterprise,
		"google-openid": Enterprise,
		"ip":            Enterprise,
		"mscrm":         Enterprise,
		"office365":     Enterprise,
		"pingfederate":  Enterprise,
		"samlp":         Enterprise,
		"sharepoint":    Enterprise,
		"waad":          Enterprise,
		"facebook":      Social,
		"github":        Social,
		"":              Social,
		"brand-new-idp": Social,
	}
	for strategy, want := range cases {
		assert.Equal(t, want, TypeForStrategy(strategy), "strategy %q", strategy)
	}
}

func TestNew_NameIsNotKeptInValues(t *testing.T) {
	src := map[string]any{"name": "facebook", "scope": "email"}
	c, err := New("facebook", src)
	require.NoError(t, err)

	assert.Equal(t, "facebook", c.Name())
	_, ok := c.Values().Get("name")
	assert.False(t, ok)
	assert.Equal(t, "email", c.Values().String("scope"))

	// el map original no se toca
	src["scope"] = "changed"
	assert.Equal(t, "email", c.Values().String("scope"))
	assert.Contains(t, src, "name")
}

func TestNew_MissingName(t *testing.T) {
	for _, values := range []map[string]any{nil, {}, {"name": ""}, {"name": 42}} {
		_, err := New("auth0", values)
		require.ErrorIs(t, err, ErrMissingName)
	}
}

func TestUsernameLength(t *testing.T) {
	bounds := func(min, max any) map[string]any {
		return map[string]any{
			"name": "db",
			"validation": map[string]any{
				"username": map[string]any{"min": min, "max": max},
			},
		}
	}
	cases := []struct {
		name     string
		values   map[string]any
		min, max int
	}{
		{"strings", bounds("10", "60"), 10, 60},
		{"numbers", bounds(float64(3), float64(20)), 3, 20},
		{"max below min", bounds(float64(60), float64(10)), 1, 15},
		{"zero min", bounds(float64(0), float64(10)), 1, 15},
		{"garbage", bounds("ten", "sixty"), 1, 15},
		{"no validation", map[string]any{"name": "db"}, 1, 15},
		{"validation without username", map[string]any{"name": "db", "validation": map[string]any{}}, 1, 15},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := MustNew("auth0", tc.values)
			min, max := c.UsernameLength()
			assert.Equal(t, tc.min, min)
			assert.Equal(t, tc.max, max)
		})
	}
}

func TestTypedAccessors(t *testing.T) {
	c := MustNew("auth0", map[string]any{
		"name":              "Username-Password-Authentication",
		"requires_username": true,
		"showSignup":        false,
		"passwordPolicy":    "good",
	})
	assert.True(t, c.RequiresUsername())
	v, set := c.ShowSignUp()
	assert.True(t, set)
	assert.False(t, v)
	_, set = c.ShowForgot()
	assert.False(t, set)
	assert.Equal(t, PasswordGood, c.PasswordPolicy())
	assert.False(t, c.IsActiveFlowEnabled())

	ad := MustNew("ad", map[string]any{
		"name":           "corp",
		"domain":         "Corp.com",
		"domain_aliases": []any{"CORP.io", 7, "corp.net"},
	})
	assert.True(t, ad.IsActiveFlowEnabled())
	assert.Equal(t, []string{"CORP.io", "corp.net"}, ad.DomainAliases())
	assert.Equal(t, map[string]struct{}{"corp.com": {}, "corp.io": {}, "corp.net": {}}, ad.DomainSet())

	aliasOnly := MustNew("adfs", map[string]any{"name": "alias", "domain_aliases": []any{"Alias.IO"}})
	assert.Equal(t, map[string]struct{}{"alias.io": {}}, aliasOnly.DomainSet())
	assert.Empty(t, MustNew("adfs", map[string]any{"name": "bare"}).DomainSet())
	assert.Equal(t, PasswordNone, ad.PasswordPolicy())
}

func TestCatalog_PartitionsInput(t *testing.T) {
	strategies := []string{"auth0", "facebook", "ad", "sms", "email", "twitter", "auth0", "waad", "unknown"}
	var in []Connection
	for i, s := range strategies {
		in = append(in, MustNew(s, map[string]any{"name": s + string(rune('a'+i))}))
	}
	cat := NewCatalog(in)

	views := [][]Connection{cat.Database(), cat.Social(), cat.Enterprise(), cat.Passwordless()}
	seen := map[string]int{}
	total := 0
	for _, view := range views {
		for _, c := range view {
			seen[c.Name()]++
			total++
		}
	}
	assert.Equal(t, len(in), total)
	for _, c := range in {
		assert.Equal(t, 1, seen[c.Name()], "connection %s", c.Name())
	}
	assert.Equal(t, in, cat.All())

	assert.Len(t, cat.Database(), 2)
	assert.Len(t, cat.Social(), 3)
	assert.Len(t, cat.Enterprise(), 2)
	assert.Len(t, cat.Passwordless(), 2)
	assert.Equal(t, "auth0a", cat.Database()[0].Name())
	assert.Equal(t, "auth0g", cat.Database()[1].Name())
}

func TestCatalog_ViewsAreCopies(t *testing.T) {
	cat := NewCatalog([]Connection{MustNew("auth0", map[string]any{"name": "db"})})
	v := cat.Database()
	v[0] = MustNew("auth0", map[string]any{"name": "other"})
	assert.Equal(t, "db", cat.Database()[0].Name())

	got, ok := cat.ByName("db")
	require.True(t, ok)
	assert.Equal(t, "auth0", got.Strategy())
	_, ok = cat.ByName("missing")
	assert.False(t, ok)
}

func TestCatalog_Empty(t *testing.T) {
	var nilCat *Catalog
	assert.Empty(t, nilCat.All())
	assert.Empty(t, NewCatalog(nil).Social())
	assert.Equal(t, 0, nilCat.Len())
}

const descriptorJSON = `{
  "id": "client123",
  "tenant": "acme",
  "authorize": "https://acme.auth0.com/authorize",
  "callback": "https://acme.auth0.com/android/com.acme/callback",
  "strategies": [
    {"name": "auth0", "connections": [{"name": "Username-Password-Authentication", "passwordPolicy": "fair"}]},
    {"name": "facebook", "connections": [{"name": "facebook"}]},
    {"name": "ad", "connections": [{"name": "corp", "domain": "corp.com"}]}
  ]
}`

func TestDescriptor(t *testing.T) {
	var d Descriptor
	require.NoError(t, json.Unmarshal([]byte(descriptorJSON), &d))
	require.NoError(t, d.Validate())

	cat, err := d.Catalog()
	require.NoError(t, err)
	require.Equal(t, 3, cat.Len())
	assert.Equal(t, PasswordFair, cat.Database()[0].PasswordPolicy())
	assert.Equal(t, "corp.com", cat.Enterprise()[0].Domain())
}

func TestDescriptor_Invalid(t *testing.T) {
	require.ErrorIs(t, (&Descriptor{}).Validate(), ErrInvalidDescriptor)
	require.ErrorIs(t, (&Descriptor{ID: "x", Tenant: "t", AuthorizeURL: "a", CallbackURL: "c"}).Validate(), ErrInvalidDescriptor)

	d := &Descriptor{Strategies: []Strategy{{Name: "auth0", Connections: []map[string]any{{"passwordPolicy": "low"}}}}}
	_, err := d.Connections()
	require.ErrorIs(t, err, ErrMissingName)
}
