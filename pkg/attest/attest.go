// Package attest signs and verifies a run attestation: a small claim set
// summarizing one completed program run (module name, its source
// fingerprint, outcome) so a downstream consumer can trust a run
// happened without re-executing it. The signing/verification shape is
// this project's own JWT auth helpers, repurposed from authenticating a
// user session to authenticating a finished run.
package attest

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Summary is the claim payload for one run.
type Summary struct {
	Module     string `json:"module"`
	Digest     string `json:"digest"`
	Succeeded  bool   `json:"succeeded"`
	ErrorKind  string `json:"error_kind,omitempty"`
	FinishedAt int64  `json:"finished_at"`
}

// Sign produces a JWT carrying s as claims, valid for ttl from now.
func Sign(s Summary, secret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"module":      s.Module,
		"digest":      s.Digest,
		"succeeded":   s.Succeeded,
		"finished_at": s.FinishedAt,
		"exp":         time.Now().Add(ttl).Unix(),
	}
	if s.ErrorKind != "" {
		claims["error_kind"] = s.ErrorKind
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Verify checks tokenString's signature and expiry and decodes it back
// into a Summary.
func Verify(tokenString, secret string) (Summary, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Summary{}, err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return Summary{}, fmt.Errorf("invalid attestation token")
	}

	s := Summary{}
	if m, ok := claims["module"].(string); ok {
		s.Module = m
	}
	if d, ok := claims["digest"].(string); ok {
		s.Digest = d
	}
	if b, ok := claims["succeeded"].(bool); ok {
		s.Succeeded = b
	}
	if e, ok := claims["error_kind"].(string); ok {
		s.ErrorKind = e
	}
	if f, ok := claims["finished_at"].(float64); ok {
		s.FinishedAt = int64(f)
	}
	return s, nil
}
