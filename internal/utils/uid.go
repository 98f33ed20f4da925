package utils

import (
	"strings"

	"github.com/google/uuid"
)

// NewUID returns a short public identifier such as "reg_1a2b3c4d5e6f".
func NewUID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
