package authconfig

import "github.com/dropDatabas3/hellojohn-lock/internal/connection"

// PasswordlessMode indica canal (email/sms) y variante (code/link).
type PasswordlessMode int

const (
	PasswordlessDisabled PasswordlessMode = iota
	PasswordlessSMSLink
	PasswordlessSMSCode
	PasswordlessEmailLink
	PasswordlessEmailCode
)

func (m PasswordlessMode) String() string {
	switch m {
	case PasswordlessSMSLink:
		return "sms_link"
	case PasswordlessSMSCode:
		return "sms_code"
	case PasswordlessEmailLink:
		return "email_link"
	case PasswordlessEmailCode:
		return "email_code"
	default:
		return "disabled"
	}
}

func (m PasswordlessMode) IsCode() bool {
	return m == PasswordlessSMSCode || m == PasswordlessEmailCode
}

// Mode es el modo de autenticación con el que arranca la UI.
type Mode int

const (
	ModeNone Mode = iota
	ModeClassic
	ModePasswordless
)

func (m Mode) String() string {
	switch m {
	case ModeClassic:
		return "classic"
	case ModePasswordless:
		return "passwordless"
	default:
		return "none"
	}
}

// UsernameStyle controla qué identificador pide el formulario de login.
type UsernameStyle string

const (
	UsernameStyleDefault  UsernameStyle = ""
	UsernameStyleUsername UsernameStyle = "username"
	UsernameStyleEmail    UsernameStyle = "email"
)

// InitialScreen es la pantalla clásica inicial.
type InitialScreen string

const (
	ScreenLogIn          InitialScreen = "login"
	ScreenSignUp         InitialScreen = "signup"
	ScreenForgotPassword InitialScreen = "forgot_password"
)

func passwordlessModeFor(c connection.Connection, useCode bool) PasswordlessMode {
	switch c.Strategy() {
	case connection.StrategyEmail:
		if useCode {
			return PasswordlessEmailCode
		}
		return PasswordlessEmailLink
	case connection.StrategySMS:
		if useCode {
			return PasswordlessSMSCode
		}
		return PasswordlessSMSLink
	default:
		return PasswordlessDisabled
	}
}
