package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginAction is the value of the action claim on tokens that grant API access
const LoginAction = "login"

var (
	// ErrMissingToken is returned when the request carries no bearer token
	ErrMissingToken = errors.New("missing bearer token")
	// ErrTokenInvalid is returned when the signature or expiry does not verify
	ErrTokenInvalid = errors.New("token invalid")
	// ErrNotLoginToken is returned when a valid token was not issued for login
	ErrNotLoginToken = errors.New("token is not a login token")
)

// Claims are the verified claims of a web token
type Claims = jwt.MapClaims

// TokenService signs and verifies HS256 web tokens with a single key
type TokenService struct {
	secretKey []byte
	tokenTTL  time.Duration
}

// NewTokenService creates a TokenService. A zero ttl issues tokens without expiry.
func NewTokenService(secretKey string, tokenTTL time.Duration) *TokenService {
	return &TokenService{
		secretKey: []byte(secretKey),
		tokenTTL:  tokenTTL,
	}
}

// GenerateToken signs a login token carrying the given claims
func (s *TokenService) GenerateToken(claims Claims) (string, error) {
	now := time.Now()
	signed := jwt.MapClaims{}
	for k, v := range claims {
		signed[k] = v
	}
	signed["action"] = LoginAction
	signed["iat"] = now.Unix()
	if s.tokenTTL > 0 {
		signed["exp"] = now.Add(s.tokenTTL).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, signed)
	return token.SignedString(s.secretKey)
}

// ValidateToken verifies a token and returns its claims. The action claim must be "login".
func (s *TokenService) ValidateToken(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Verify exact signing method to prevent algorithm confusion attacks
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}
	if action, _ := claims["action"].(string); action != LoginAction {
		return nil, ErrNotLoginToken
	}

	return claims, nil
}

// BearerToken extracts the token of an "Authorization: Bearer <token>" header value
func BearerToken(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrMissingToken
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}
