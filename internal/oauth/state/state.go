// Package state genera y valida el token anti-CSRF de un intento de autorización.
package state

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// TokenBytes es la entropía del state antes de codificar.
const TokenBytes = 32

var ErrEntropy = errors.New("state: random source failed")

// Guard guarda un único state activo. Una instancia por intento en vuelo.
type Guard struct {
	mu     sync.Mutex
	active string
}

func NewGuard() *Guard { return &Guard{} }

// Issue genera un state nuevo y reemplaza al anterior.
func (g *Guard) Issue() (string, error) {
	tok, err := randB64(TokenBytes)
	if err != nil {
		return "", err
	}
	g.mu.Lock()
	g.active = tok
	g.mu.Unlock()
	return tok, nil
}

// Validate compara en tiempo constante y consume el state activo, matchee o no.
func (g *Guard) Validate(received string) bool {
	g.mu.Lock()
	active := g.active
	g.active = ""
	g.mu.Unlock()
	if received == "" || active == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(received), []byte(active)) == 1
}

// Pending indica si hay un state emitido sin validar.
func (g *Guard) Pending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active != ""
}

// Attempt correlaciona la entrega del redirect con el intento que la originó.
type Attempt struct {
	ID    string
	State string
}

// NewAttempt emite un state en g y le asocia un id de correlación.
func NewAttempt(g *Guard) (Attempt, error) {
	st, err := g.Issue()
	if err != nil {
		return Attempt{}, err
	}
	return Attempt{ID: uuid.NewString(), State: st}, nil
}

func randB64(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrEntropy, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
