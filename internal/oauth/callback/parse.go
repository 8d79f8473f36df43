package callback

import (
	"net/url"
	"strings"
)

// Values son los parámetros planos de un redirect.
type Values map[string]string

func (v Values) Get(key string) string { return v[key] }

func (v Values) Has(key string) bool {
	_, ok := v[key]
	return ok
}

// ParseCallback lee la query si no está vacía y si no el fragment. Las entradas
// que no parten en exactamente clave=valor se descartan.
func ParseCallback(u *url.URL) Values {
	if u == nil {
		return Values{}
	}
	raw := u.RawQuery
	if raw == "" {
		raw = u.EscapedFragment()
	}
	return parse(raw)
}

// ParseCallbackString parsea una URI cruda.
func ParseCallbackString(raw string) (Values, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	return ParseCallback(u), nil
}

func parse(raw string) Values {
	out := Values{}
	if raw == "" {
		return out
	}
	for _, entry := range strings.Split(raw, "&") {
		kv := strings.Split(entry, "=")
		if len(kv) != 2 {
			continue
		}
		out[unescape(kv[0])] = unescape(kv[1])
	}
	return out
}

func unescape(s string) string {
	if d, err := url.QueryUnescape(s); err == nil {
		return d
	}
	return s
}
