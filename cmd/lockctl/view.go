package main

import (
	"fmt"
	"sort"

	"github.com/dropDatabas3/hellojohn-lock/internal/authconfig"
	"github.com/dropDatabas3/hellojohn-lock/internal/connection"
)

// configView es la forma serializable de un AuthConfig.
type configView struct {
	InitialMode      string   `json:"initial_mode"`
	InitialScreen    string   `json:"initial_screen"`
	Database         []string `json:"database"`
	Social           []string `json:"social"`
	Enterprise       []string `json:"enterprise"`
	Passwordless     []string `json:"passwordless"`
	DefaultDatabase  string   `json:"default_database,omitempty"`
	PasswordlessMode string   `json:"passwordless_mode"`
	AllowLogIn       bool     `json:"allow_login"`
	AllowSignUp      bool     `json:"allow_signup"`
	AllowForgot      bool     `json:"allow_forgot_password"`
	UsernameRequired bool     `json:"username_required"`
	UsernameLength   [2]int   `json:"username_length"`
	PasswordPolicy   string   `json:"password_policy"`
	CustomFields     []string `json:"custom_fields,omitempty"`
}

func newConfigView(ac *authconfig.AuthConfig) configView {
	v := configView{
		InitialMode:      ac.InitialMode().String(),
		InitialScreen:    string(ac.InitialScreen),
		Database:         names(ac.DatabaseConnections),
		Social:           names(ac.SocialConnections),
		Enterprise:       names(ac.EnterpriseConnections),
		Passwordless:     names(ac.PasswordlessConnections),
		PasswordlessMode: ac.PasswordlessMode.String(),
		AllowLogIn:       ac.AllowLogIn,
		AllowSignUp:      ac.AllowSignUp,
		AllowForgot:      ac.AllowForgotPassword,
		UsernameRequired: ac.UsernameRequired,
		UsernameLength:   [2]int{ac.MinUsernameLength, ac.MaxUsernameLength},
		PasswordPolicy:   ac.PasswordPolicy.String(),
	}
	if ac.DefaultDatabase != nil {
		v.DefaultDatabase = ac.DefaultDatabase.Name()
	}
	for _, f := range ac.CustomFields {
		v.CustomFields = append(v.CustomFields, f.Key)
	}
	return v
}

func (v configView) lines() []string {
	return []string{
		"modo inicial:      " + v.InitialMode + " (" + v.InitialScreen + ")",
		"database:          " + joinOrDash(v.Database) + defaultSuffix(v.DefaultDatabase),
		"social:            " + joinOrDash(v.Social),
		"enterprise:        " + joinOrDash(v.Enterprise),
		"passwordless:      " + joinOrDash(v.Passwordless) + " [" + v.PasswordlessMode + "]",
		fmt.Sprintf("login/signup/forgot: %t/%t/%t", v.AllowLogIn, v.AllowSignUp, v.AllowForgot),
		fmt.Sprintf("username:          requerido=%t largo=%d..%d", v.UsernameRequired, v.UsernameLength[0], v.UsernameLength[1]),
		"password policy:   " + v.PasswordPolicy,
		"custom fields:     " + joinOrDash(v.CustomFields),
	}
}

func defaultSuffix(name string) string {
	if name == "" {
		return ""
	}
	return " (default " + name + ")"
}

func names(list []connection.Connection) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.Name())
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
