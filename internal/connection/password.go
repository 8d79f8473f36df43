package connection

// PasswordStrength es la política de password configurada en una database connection.
type PasswordStrength int

const (
	PasswordNone PasswordStrength = iota
	PasswordLow
	PasswordFair
	PasswordGood
	PasswordExcellent
)

var passwordStrengths = map[string]PasswordStrength{
	"none":      PasswordNone,
	"low":       PasswordLow,
	"fair":      PasswordFair,
	"good":      PasswordGood,
	"excellent": PasswordExcellent,
}

// ParsePasswordStrength: valores desconocidos => PasswordNone.
func ParsePasswordStrength(s string) PasswordStrength {
	return passwordStrengths[s]
}

func (p PasswordStrength) String() string {
	switch p {
	case PasswordLow:
		return "low"
	case PasswordFair:
		return "fair"
	case PasswordGood:
		return "good"
	case PasswordExcellent:
		return "excellent"
	default:
		return "none"
	}
}
