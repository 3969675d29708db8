package model

import "github.com/golang-jwt/jwt/v5"

// AccessClaims are issued by the identity provider.
type AccessClaims struct {
	jwt.RegisteredClaims

	Premium bool `json:"premium"`
}

// ConnectClaims authorize a single live connection.
type ConnectClaims struct {
	jwt.RegisteredClaims

	Premium bool `json:"premium"`
}
