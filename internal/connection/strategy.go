// Package connection modela las connections que expone un tenant y las clasifica
// por tipo (database, social, enterprise, passwordless).
package connection

// Type es la familia de autenticación de una connection.
type Type int

const (
	Social Type = iota
	Database
	Enterprise
	Passwordless
)

func (t Type) String() string {
	switch t {
	case Database:
		return "database"
	case Enterprise:
		return "enterprise"
	case Passwordless:
		return "passwordless"
	default:
		return "social"
	}
}

// Strategy names with special handling.
const (
	StrategyAuth0 = "auth0"
	StrategyEmail = "email"
	StrategySMS   = "sms"
)

// strategyTypes es la tabla strategy -> Type. Cualquier strategy que no esté acá
// es Social: el tenant puede habilitar providers nuevos sin que el SDK los conozca.
var strategyTypes = map[string]Type{
	StrategyAuth0: Database,

	StrategyEmail: Passwordless,
	StrategySMS:   Passwordless,

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
}

// activeFlowStrategies admiten login nativo usuario/password (sin web form).
var activeFlowStrategies = map[string]bool{
	"ad":   true,
	"adfs": true,
	"waad": true,
}

// TypeForStrategy clasifica una strategy. Unknown => Social.
func TypeForStrategy(strategy string) Type {
	if t, ok := strategyTypes[strategy]; ok {
		return t
	}
	return Social
}
