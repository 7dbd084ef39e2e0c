package infra

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// InfraManager abstracts the lifecycle of the campi instance under test.
// Process-based: builds nothing, runs a campi binary given on the command line.
// External: no-op, campi is started by whoever runs the suite.
type InfraManager interface {
	StartCampi(cfg CampiConfig) error
	StopCampi() error
	GenerateToken(subject string) (string, error)
}

// CampiConfig holds the flags passed to `campi run`.
type CampiConfig struct {
	Address      string
	AdminAddress string
	Workers      int
	JWTSecret    string
}

// signToken creates an HS256 token accepted by the admin api.
func signToken(secret, subject string) (string, error) {
	if secret == "" {
		return "", nil
	}
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		NotBefore: jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
