package google

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoEmailClaim = errors.New("id_token has no email claim")

// EmailFromIDToken extracts the email claim from an id_token without verifying
// its signature. The token arrived over the provider's own TLS channel during
// the code exchange, so this is a non-authoritative hint only; callers fall
// back to the authenticated userinfo endpoint when it fails.
func EmailFromIDToken(idToken string) (string, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(idToken, claims); err != nil {
		return "", err
	}

	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", ErrNoEmailClaim
	}
	return email, nil
}
