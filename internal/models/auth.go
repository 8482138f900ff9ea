package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the payload of the access tokens issued by the auth layer.
// This service only validates tokens; issuance lives elsewhere.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}
