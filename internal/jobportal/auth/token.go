package auth

import (
	"fmt"
	"time"

	"github.com/gartstein/jobportal/internal/jobportal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTTL is the lifetime of issued tokens.
const TokenTTL = 24 * time.Hour

// GenerateToken issues an HS256 token carrying the user id as subject and
// the user's role.
func GenerateToken(userID uuid.UUID, role models.Role, secret string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID.String(),
		"role": string(role),
		"exp":  time.Now().Add(TokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// validateToken checks the token signature and returns parsed claims if valid.
func validateToken(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token claims")
}

// actorFromClaims turns validated claims into the identity the services
// act on. Both the subject and the role must be present and well-formed.
func actorFromClaims(claims jwt.MapClaims) (models.Actor, error) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return models.Actor{}, fmt.Errorf("subject missing")
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return models.Actor{}, fmt.Errorf("subject is not a user id: %w", err)
	}
	name, _ := claims["role"].(string)
	role, err := models.ParseRole(name)
	if err != nil {
		return models.Actor{}, err
	}
	return models.Actor{UserID: id, Role: role}, nil
}

// Authenticate validates a bearer token and returns the identity it
// carries.
func Authenticate(tokenString, secret string) (models.Actor, error) {
	claims, err := validateToken(tokenString, secret)
	if err != nil {
		return models.Actor{}, err
	}
	return actorFromClaims(claims)
}
