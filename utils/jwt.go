package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const issuer = "wizard-access"

// Claims names a player and, for table tokens, the one room the token is
// good for. Guest tokens carry no room.
type Claims struct {
	UserID string `json:"user_id"`
	RoomID string `json:"room_id,omitempty"`
	jwt.RegisteredClaims
}

// GenerateAccessToken signs a token for userID at roomID, valid for ttl. An
// empty roomID makes a guest token.
func GenerateAccessToken(secret []byte, userID, roomID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RoomID: roomID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func ParseAccessToken(secret []byte, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.UserID != "" {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
