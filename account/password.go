package account

import "github.com/kmercer/storegate/internal/util"

// HashPassword returns the salted argon2id encoding of a login password.
// Passwords are hashed verbatim — no normalization, unlike answers.
func HashPassword(password string) (string, error) {
	return util.HashArgon2id(password, util.DefaultArgon2idParams())
}

// VerifyPassword checks a candidate password against a stored hash using a
// constant-time comparison of the derived key.
func VerifyPassword(encodedHash, password string) bool {
	ok, err := util.VerifyArgon2id(password, encodedHash)
	return err == nil && ok
}
