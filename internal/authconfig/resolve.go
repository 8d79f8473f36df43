package authconfig

import (
	"go.uber.org/zap"

	"github.com/dropDatabas3/hellojohn-lock/internal/connection"
	"github.com/dropDatabas3/hellojohn-lock/internal/observability/logger"
)

// Resolve es puro: mismo catálogo + mismos overrides => mismo resultado. Nunca
// falla; la metadata ausente o inválida cae a los defaults.
func Resolve(cat *connection.Catalog, o Overrides) *AuthConfig {
	log := logger.L().With(logger.Layer("authconfig"), logger.Op("Resolve"))

	allowed := allowFilter(o.AllowedConnections)
	cfg := &AuthConfig{
		DatabaseConnections:     filter(cat.Database(), allowed),
		SocialConnections:       filter(cat.Social(), allowed),
		EnterpriseConnections:   filter(cat.Enterprise(), allowed),
		PasswordlessConnections: filter(cat.Passwordless(), allowed),
		webForm:                 toSet(o.EnterpriseConnectionsUsingWebForm),
	}
	log.Debug("connections filtered",
		logger.Count(cfg.ConnectionCount()),
		zap.Bool("filtered", allowed != nil),
	)

	cfg.DefaultDatabase = pickDefaultDatabase(cfg.DatabaseConnections, o.DefaultDatabaseConnection, log)

	if pc, ok := pickPasswordless(cfg.PasswordlessConnections); ok {
		cfg.PasswordlessConnection = &pc
		cfg.PasswordlessMode = passwordlessModeFor(pc, boolOr(o.UseCodePasswordless, true))
	}
	log.Debug("passwordless resolved", logger.Mode(cfg.PasswordlessMode.String()))

	cfg.MinUsernameLength = connection.DefaultMinUsernameLength
	cfg.MaxUsernameLength = connection.DefaultMaxUsernameLength
	if db := cfg.DefaultDatabase; db != nil {
		signUpAllowed, forgotAllowed := true, true
		if v, set := db.ShowSignUp(); set {
			signUpAllowed = v
		}
		if v, set := db.ShowForgot(); set {
			forgotAllowed = v
		}
		cfg.AllowLogIn = boolOr(o.AllowLogIn, true)
		cfg.AllowSignUp = boolOr(o.AllowSignUp, true) && signUpAllowed
		cfg.AllowForgotPassword = boolOr(o.AllowForgotPassword, true) && forgotAllowed
		cfg.InitialScreen = initialScreen(o.InitialScreen, cfg)

		cfg.UsernameRequired = db.RequiresUsername()
		cfg.MinUsernameLength, cfg.MaxUsernameLength = db.UsernameLength()
		cfg.PasswordPolicy = db.PasswordPolicy()
	}

	cfg.AllowShowPassword = boolOr(o.AllowShowPassword, true)
	cfg.LoginAfterSignUp = boolOr(o.LoginAfterSignUp, true)
	cfg.UsernameStyle = o.UsernameStyle
	cfg.MustAcceptTerms = o.MustAcceptTerms
	cfg.TermsURL = stringOr(o.TermsURL, DefaultTermsURL)
	cfg.PrivacyURL = stringOr(o.PrivacyURL, DefaultPrivacyURL)
	cfg.SupportURL = o.SupportURL

	for _, f := range o.CustomFields {
		if err := f.Validate(); err != nil {
			log.Warn("custom field dropped", zap.String("key", f.Key), logger.Err(err))
			continue
		}
		cfg.CustomFields = append(cfg.CustomFields, f)
	}
	return cfg
}

// allowFilter: nil => sin filtro. Un slice vacío produce un set vacío no-nil.
func allowFilter(names []string) map[string]struct{} {
	if names == nil {
		return nil
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

func filter(in []connection.Connection, allowed map[string]struct{}) []connection.Connection {
	if allowed == nil {
		return in
	}
	out := make([]connection.Connection, 0, len(in))
	for _, c := range in {
		if _, ok := allowed[c.Name()]; ok {
			out = append(out, c)
		}
	}
	return out
}

func pickDefaultDatabase(dbs []connection.Connection, forced string, log *zap.Logger) *connection.Connection {
	if forced != "" {
		for i := range dbs {
			if dbs[i].Name() == forced {
				return &dbs[i]
			}
		}
		log.Warn("default database connection not available, falling back", logger.Connection(forced))
	}
	var picked *connection.Connection
	switch len(dbs) {
	case 0:
		return nil
	case 1:
		picked = &dbs[0]
	default:
		picked = &dbs[0]
		for i := range dbs {
			if dbs[i].Name() == DefaultDatabaseName {
				picked = &dbs[i]
				break
			}
		}
	}
	log.Debug("default database selected", logger.Connection(picked.Name()))
	return picked
}

// pickPasswordless prefiere email sobre sms sin importar el orden.
func pickPasswordless(conns []connection.Connection) (connection.Connection, bool) {
	var sms *connection.Connection
	for i := range conns {
		switch conns[i].Strategy() {
		case connection.StrategyEmail:
			return conns[i], true
		case connection.StrategySMS:
			if sms == nil {
				sms = &conns[i]
			}
		}
	}
	if sms != nil {
		return *sms, true
	}
	return connection.Connection{}, false
}

// initialScreen no deja arrancar en una pantalla deshabilitada.
func initialScreen(want InitialScreen, cfg *AuthConfig) InitialScreen {
	switch want {
	case ScreenSignUp:
		if cfg.AllowSignUp {
			return ScreenSignUp
		}
	case ScreenForgotPassword:
		if cfg.AllowForgotPassword {
			return ScreenForgotPassword
		}
	}
	return ScreenLogIn
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func stringOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
