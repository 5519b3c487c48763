package analysis

import (
	"encoding/base64"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"cyguard-backend/pkg/api"
)

// ErrInvalidInput wraps every input validation failure so callers can map the
// whole family to a 400.
var ErrInvalidInput = errors.New("invalid input")

const (
	MaxMessageChars = 2000
	MaxImageBytes   = 4 << 20

	MinLogChars = 10
	MaxLogChars = 10000

	MinReportChars = 10
	MaxReportChars = 5000

	MinPolicyChars = 100
)

var allowedImageTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/webp"}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidInput}, args...)...)
}

func validateMessageText(text string) error {
	if text == "" {
		return invalidf("message cannot be empty")
	}
	if utf8.RuneCountInString(text) > MaxMessageChars {
		return invalidf("message exceeds %d characters", MaxMessageChars)
	}
	return nil
}

func validateHistory(history []api.ChatTurn) error {
	for _, turn := range history {
		if turn.Role != api.RoleUser && turn.Role != api.RoleModel {
			return invalidf("history role %q is not %q or %q", turn.Role, api.RoleUser, api.RoleModel)
		}
	}
	return nil
}

// validateImageDataURI checks that the payload is a base64 data URI of an
// accepted image type whose decoded size fits the upload limit.
func validateImageDataURI(uri string) error {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return invalidf("screenshot must be a data URI")
	}
	mediaType, payload, ok := strings.Cut(rest, ";base64,")
	if !ok {
		return invalidf("screenshot data URI must be base64 encoded")
	}
	if !slices.Contains(allowedImageTypes, strings.ToLower(mediaType)) {
		return invalidf("unsupported image type %q", mediaType)
	}
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return invalidf("screenshot payload is not valid base64")
	}
	if len(decoded) > MaxImageBytes {
		return invalidf("screenshot exceeds %d bytes after decoding", MaxImageBytes)
	}
	return nil
}

func checkPresent(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("collaborator response is missing %s", field)
	}
	return nil
}

func checkScore(field string, score float64) error {
	if score < 0 || score > 10 {
		return fmt.Errorf("collaborator returned %s %v outside 0-10", field, score)
	}
	return nil
}

func checkEnum(field, value string, allowed ...string) error {
	if !slices.Contains(allowed, value) {
		return fmt.Errorf("collaborator returned %s %q, expected one of %v", field, value, allowed)
	}
	return nil
}
