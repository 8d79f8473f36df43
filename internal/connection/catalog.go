package connection

// Catalog clasifica las connections del tenant por tipo. Es puro: no descarta
// connections y preserva el orden de entrada. Seguro para uso concurrente.
type Catalog struct {
	all    []Connection
	byType map[Type][]Connection
	byName map[string]int
}

// NewCatalog copia la lista recibida.
func NewCatalog(conns []Connection) *Catalog {
	c := &Catalog{
		all:    make([]Connection, 0, len(conns)),
		byType: make(map[Type][]Connection, 4),
		byName: make(map[string]int, len(conns)),
	}
	for _, conn := range conns {
		c.all = append(c.all, conn)
		t := conn.Type()
		c.byType[t] = append(c.byType[t], conn)
		if _, dup := c.byName[conn.Name()]; !dup {
			c.byName[conn.Name()] = len(c.all) - 1
		}
	}
	return c
}

func (c *Catalog) All() []Connection {
	if c == nil {
		return []Connection{}
	}
	return clone(c.all)
}

func (c *Catalog) Database() []Connection     { return c.OfType(Database) }
func (c *Catalog) Social() []Connection       { return c.OfType(Social) }
func (c *Catalog) Enterprise() []Connection   { return c.OfType(Enterprise) }
func (c *Catalog) Passwordless() []Connection { return c.OfType(Passwordless) }

func (c *Catalog) OfType(t Type) []Connection {
	if c == nil {
		return []Connection{}
	}
	return clone(c.byType[t])
}

// ByName retorna la primera connection con ese nombre.
func (c *Catalog) ByName(name string) (Connection, bool) {
	if c == nil {
		return Connection{}, false
	}
	i, ok := c.byName[name]
	if !ok {
		return Connection{}, false
	}
	return c.all[i], true
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.all)
}

func clone(in []Connection) []Connection {
	out := make([]Connection, len(in))
	copy(out, in)
	return out
}
