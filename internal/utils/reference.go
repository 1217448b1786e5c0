package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateAssignmentReference generates a random assignment reference in the
// format AST-XXXX-XXXX
func GenerateAssignmentReference() (string, error) {
	bytes := make([]byte, 4)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	hex := hex.EncodeToString(bytes)
	return fmt.Sprintf("AST-%s-%s", hex[0:4], hex[4:8]), nil
}
