package registry

import (
	"fmt"
	"strings"

	"educhain/sentinel"
)

// Input limits.
const (
	maxNameLen        = 256
	maxIdentityLen    = 1024
	maxMetadataLen    = 8192
	maxSubjectLen     = 256
	maxDescriptionLen = 4096
	maxReasonLen      = 1024
)

func validateRequiredString(input, field string, max int) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("%w: %s cannot be empty", sentinel.ErrInvalidInput, field)
	}
	if len(input) > max {
		return fmt.Errorf("%w: %s exceeds max length %d", sentinel.ErrInvalidInput, field, max)
	}
	return nil
}

func validateOptionalString(input, field string, max int) error {
	if input != "" && len(input) > max {
		return fmt.Errorf("%w: %s exceeds max length %d", sentinel.ErrInvalidInput, field, max)
	}
	return nil
}

func validateIdentity(id, field string) error {
	return validateRequiredString(id, field, maxIdentityLen)
}
