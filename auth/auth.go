// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidToken   = errors.New("invalid identity token")
	ErrMissingToken   = errors.New("identity token required")
	ErrEmptyIdentity  = errors.New("identity must not be empty")
	ErrUnsignedSecret = errors.New("identity salt must not be empty")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// sign returns the HMAC of identity under salt, URL-safe base64 without
// padding
func sign(identity, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(identity))
	return strings.TrimRight(base64.URLEncoding.EncodeToString(h.Sum(nil)), "=")
}

// IssueIdentityToken creates a token binding identity to this deployment.
// Format: <identity>.<signature>
func IssueIdentityToken(identity, salt string) (string, error) {
	if identity == "" {
		return "", ErrEmptyIdentity
	}
	if salt == "" {
		return "", ErrUnsignedSecret
	}
	return identity + "." + sign(identity, salt), nil
}

// VerifyIdentityToken checks the signature and returns the identity the
// token was issued for
func VerifyIdentityToken(token, salt string) (string, error) {
	if token == "" {
		return "", ErrMissingToken
	}
	if salt == "" {
		return "", ErrUnsignedSecret
	}

	// Signatures never contain '.', identities may
	dot := strings.LastIndexByte(token, '.')
	if dot <= 0 || dot == len(token)-1 {
		return "", ErrInvalidToken
	}

	identity, sig := token[:dot], token[dot+1:]
	expected := sign(identity, salt)
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return "", ErrInvalidToken
	}
	return identity, nil
}
