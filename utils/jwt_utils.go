package utils

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/dgrijalva/jwt-go"
)

// ExtractUserIDFromToken pulls the stable user identity (the "uuid" claim,
// issued by the identity provider) out of a signed token.
func ExtractUserIDFromToken(tokenString string) (string, error) {
	secretKey := os.Getenv("JWT_SECRET")
	if secretKey == "" {
		return "", fmt.Errorf("JWT_SECRET is not set")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(secretKey), nil
	})

	if err != nil {
		return "", fmt.Errorf("error parsing token: %v", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		uuid, exists := claims["uuid"]
		if !exists {
			return "", fmt.Errorf("uuid claim not found in token")
		}

		id, ok := uuid.(string)
		if !ok {
			return "", fmt.Errorf("uuid claim is not a string")
		}
		return id, nil
	}

	return "", fmt.Errorf("invalid token")
}

// CallerIdentity resolves the verified caller from the Authorization header
// or, for EventSource clients that cannot set headers, a token query
// parameter.
func CallerIdentity(r *http.Request) (string, error) {
	tokenString := r.Header.Get("Authorization")
	if tokenString == "" {
		tokenString = r.URL.Query().Get("token")
	}
	if tokenString == "" {
		return "", fmt.Errorf("authorization token required")
	}
	return ExtractUserIDFromToken(strings.TrimPrefix(tokenString, "Bearer "))
}
