package connection

import (
	"errors"
	"fmt"
)

var ErrInvalidDescriptor = errors.New("connection: invalid tenant descriptor")

// Descriptor es la configuración pública de una aplicación tal como la publica
// el tenant (client/<clientID>.js, sin el wrapper JSONP).
type Descriptor struct {
	ID              string     `json:"id"`
	Tenant          string     `json:"tenant"`
	AuthorizeURL    string     `json:"authorize"`
	CallbackURL     string     `json:"callback"`
	SubscriptionTag string     `json:"subscription,omitempty"`
	Strategies      []Strategy `json:"strategies"`
}

// Strategy agrupa las connections de un mismo provider.
type Strategy struct {
	Name        string           `json:"name"`
	Connections []map[string]any `json:"connections"`
}

// Validate chequea las claves requeridas.
func (d *Descriptor) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: nil", ErrInvalidDescriptor)
	}
	switch {
	case d.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidDescriptor)
	case d.Tenant == "":
		return fmt.Errorf("%w: missing tenant", ErrInvalidDescriptor)
	case d.AuthorizeURL == "":
		return fmt.Errorf("%w: missing authorize", ErrInvalidDescriptor)
	case d.CallbackURL == "":
		return fmt.Errorf("%w: missing callback", ErrInvalidDescriptor)
	case d.Strategies == nil:
		return fmt.Errorf("%w: missing strategies", ErrInvalidDescriptor)
	}
	for i, s := range d.Strategies {
		if s.Name == "" {
			return fmt.Errorf("%w: strategies[%d] missing name", ErrInvalidDescriptor, i)
		}
	}
	return nil
}

// Connections aplana strategies -> connections respetando el orden del descriptor.
func (d *Descriptor) Connections() ([]Connection, error) {
	if d == nil {
		return nil, nil
	}
	var out []Connection
	for _, s := range d.Strategies {
		for j, raw := range s.Connections {
			c, err := New(s.Name, raw)
			if err != nil {
				return nil, fmt.Errorf("strategy %q connection %d: %w", s.Name, j, err)
			}
			out = append(out, c)
		}
	}
	return out, nil
}

// Catalog = NewCatalog(Connections()).
func (d *Descriptor) Catalog() (*Catalog, error) {
	conns, err := d.Connections()
	if err != nil {
		return nil, err
	}
	return NewCatalog(conns), nil
}
