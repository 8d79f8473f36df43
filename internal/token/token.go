// Package token contiene las credenciales devueltas por un redirect exitoso.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoIDToken = errors.New("token: no id_token")

// Token: cualquier campo puede venir vacío (depende del response_type y scope).
type Token struct {
	IDToken      string `json:"id_token,omitempty"`
	AccessToken  string `json:"access_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// FromValues arma el token con las claves estándar del redirect.
func FromValues(get func(string) string) *Token {
	return &Token{
		IDToken:      get("id_token"),
		AccessToken:  get("access_token"),
		TokenType:    get("token_type"),
		RefreshToken: get("refresh_token"),
	}
}

// Claims decodifica el id_token SIN verificar la firma. Solo sirve para mostrar
// datos del usuario; la verificación corresponde al backend que consume el token.
func (t *Token) Claims() (jwt.MapClaims, error) {
	if t == nil || t.IDToken == "" {
		return nil, ErrNoIDToken
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(t.IDToken, claims); err != nil {
		return nil, fmt.Errorf("token: decode id_token: %w", err)
	}
	return claims, nil
}

func (t *Token) Subject() (string, error) {
	c, err := t.Claims()
	if err != nil {
		return "", err
	}
	return c.GetSubject()
}

// ExpiresAt retorna el exp del id_token; zero time si no tiene.
func (t *Token) ExpiresAt() (time.Time, error) {
	c, err := t.Claims()
	if err != nil {
		return time.Time{}, err
	}
	exp, err := c.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, err
	}
	return exp.Time, nil
}
