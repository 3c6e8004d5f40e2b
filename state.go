package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

const stateLifetime = 5 * time.Minute

type StateClaims struct {
	RedirectURI string `json:"redirect_uri"`
	jwt.StandardClaims
}

// StateSigner issues and checks the OAuth state parameter. A nil
// *StateSigner disables state entirely.
type StateSigner struct {
	key []byte
	now func() time.Time
}

func NewStateSigner(key []byte) *StateSigner {
	if len(key) == 0 {
		return nil
	}
	return &StateSigner{key: key, now: time.Now}
}

func (s *StateSigner) Issue(redirectURI string) (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	now := s.now()
	claims := StateClaims{
		RedirectURI: redirectURI,
		StandardClaims: jwt.StandardClaims{
			Id:        hex.EncodeToString(nonce),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(stateLifetime).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.key)
}

// Verify checks signature and expiry of state and that it was issued for
// redirectURI.
func (s *StateSigner) Verify(state, redirectURI string) error {
	if state == "" {
		return errors.New("state missing")
	}

	parser := &jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	token, err := parser.ParseWithClaims(state, &StateClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.key, nil
	})
	if err != nil {
		return err
	} else if !token.Valid {
		return errors.New("invalid token")
	}

	claims, ok := token.Claims.(*StateClaims)
	if !ok {
		return errors.New("invalid token claims")
	}

	if claims.RedirectURI != redirectURI {
		return fmt.Errorf("state issued for %q", claims.RedirectURI)
	}

	return nil
}
