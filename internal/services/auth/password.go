package auth

import (
	"strconv"
	"strings"
	"unicode/utf16"

	"golang.org/x/crypto/bcrypt"
)

// legacyChecksum is the rolling 31-multiplier sum older records were stored
// with: int32 arithmetic over UTF-16 code units, rendered in decimal.
func legacyChecksum(password string) string {
	var hash int32
	for _, unit := range utf16.Encode([]rune(password)) {
		hash = hash*31 + int32(unit)
	}
	return strconv.FormatInt(int64(hash), 10)
}

// isLegacyHash reports whether stored is a checksum rather than a bcrypt hash
func isLegacyHash(stored string) bool {
	return !strings.HasPrefix(stored, "$2")
}

func (s *Service) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// checkPassword verifies password against either hash format
func checkPassword(stored, password string) bool {
	if isLegacyHash(stored) {
		return stored == legacyChecksum(password)
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}
