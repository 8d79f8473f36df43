package connection

import (
	"sort"
	"strconv"
	"strings"
)

// Values es una vista de solo lectura sobre la metadata de una connection.
// Los valores vienen de JSON: string, float64, bool, []any, map[string]any.
type Values struct {
	m map[string]any
}

func newValues(src map[string]any) Values {
	m := make(map[string]any, len(src))
	for k, v := range src {
		m[k] = v
	}
	return Values{m: m}
}

// Get retorna el valor crudo de key.
func (v Values) Get(key string) (any, bool) {
	val, ok := v.m[key]
	return val, ok
}

// Len cantidad de claves.
func (v Values) Len() int { return len(v.m) }

// Keys en orden alfabético.
func (v Values) Keys() []string {
	out := make([]string, 0, len(v.m))
	for k := range v.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// String retorna el valor si es string, "" si no existe o es de otro tipo.
func (v Values) String(key string) string {
	s, _ := v.m[key].(string)
	return s
}

// Bool retorna (valor, presente). Un valor no-bool cuenta como ausente.
func (v Values) Bool(key string) (bool, bool) {
	b, ok := v.m[key].(bool)
	return b, ok
}

// Strings acepta []string o []any de strings; los elementos no-string se ignoran.
func (v Values) Strings(key string) []string {
	switch raw := v.m[key].(type) {
	case []string:
		return append([]string(nil), raw...)
	case []any:
		out := make([]string, 0, len(raw))
		for _, e := range raw {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Map retorna un sub-objeto como Values.
func (v Values) Map(key string) (Values, bool) {
	m, ok := v.m[key].(map[string]any)
	if !ok {
		return Values{}, false
	}
	return newValues(m), true
}

// Int acepta números JSON y strings decimales.
func (v Values) Int(key string) (int, bool) {
	switch n := v.m[key].(type) {
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}
