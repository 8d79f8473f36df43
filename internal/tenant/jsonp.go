package tenant

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dropDatabas3/hellojohn-lock/internal/connection"
)

// JSONPPrefix envuelve el descriptor publicado en client/<clientID>.js.
const JSONPPrefix = "Auth0.setClient("

var ErrInvalidJSONP = errors.New("tenant: invalid application JSONP")

// StripJSONP retorna el objeto JSON de un body "Auth0.setClient({...});".
// Un body que ya es JSON plano se acepta tal cual.
func StripJSONP(body []byte) (json.RawMessage, error) {
	b := bytes.TrimSpace(body)
	if bytes.HasPrefix(b, []byte(JSONPPrefix)) {
		b = b[len(JSONPPrefix):]
	} else if len(b) == 0 || b[0] != '{' {
		return nil, ErrInvalidJSONP
	}
	var raw json.RawMessage
	if err := json.NewDecoder(bytes.NewReader(b)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSONP, err)
	}
	if len(raw) == 0 || raw[0] != '{' {
		return nil, fmt.Errorf("%w: not an object", ErrInvalidJSONP)
	}
	return raw, nil
}

// Decode parsea y valida el descriptor.
func Decode(raw []byte) (*connection.Descriptor, error) {
	var d connection.Descriptor
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSONP, err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}
