// Copyright (c) 2026 Agora. All rights reserved.
// Author: bao.nguyen.dn@gmail.com

package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// passwordHashCost is the fixed bcrypt work factor for all credential hashes.
//
// Cost 10 balances brute-force resistance against CPU utilization during
// login spikes. Changing it only affects newly created hashes; existing
// hashes keep the cost they were created with.
const passwordHashCost = 10

// HashPassword hashes a plain-text password using the bcrypt algorithm.
//
// bcrypt embeds a random per-hash salt, so hashing the same plaintext twice
// yields two different outputs.
func HashPassword(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), passwordHashCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plain-text password with its hashed version.
//
// The comparison is constant-time inside bcrypt. Malformed or empty hashes
// never produce an error for the caller — they simply report false.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}
