package security

import "golang.org/x/crypto/bcrypt"

// bcrypt work factor. Matches bcrypt.DefaultCost; pinned so a library
// default change does not silently alter hashing behaviour.
const hashCost = 10

// HashPassword hashes a plain text password with bcrypt. The salt is
// random per call, so two hashes of the same password differ.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), hashCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPassword reports whether plain matches the stored bcrypt hash.
// A malformed hash counts as a mismatch, never a panic.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
