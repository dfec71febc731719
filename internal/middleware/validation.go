package middleware

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// Field length limits.
const (
	MaxVideoIDLen  = 16
	MaxActorLen    = 64
	MaxQueryLen    = 200
	MaxHistoryPage = 500
)

var (
	// videoIDRe matches YouTube video IDs: alphanumeric, dash, underscore.
	videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidateVideoID checks that a video ID is well-formed.
func ValidateVideoID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "videoId is required"
	}
	if len(id) > MaxVideoIDLen {
		return "", "videoId must be at most 16 characters"
	}
	if !videoIDRe.MatchString(id) {
		return "", "videoId contains invalid characters"
	}
	return id, ""
}

// ValidateActor checks the caller identity label. It is not authenticated,
// only bounded so it is safe to store and display.
func ValidateActor(actor string) (string, string) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return "", "X-Actor header is required"
	}
	if len(actor) > MaxActorLen {
		return "", "X-Actor must be at most 64 characters"
	}
	for _, r := range actor {
		if !unicode.IsPrint(r) {
			return "", "X-Actor contains non-printable characters"
		}
	}
	return actor, ""
}

// ValidateChangeID checks that a change id is a UUID.
func ValidateChangeID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "changeId is required"
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", "changeId must be a UUID"
	}
	return parsed.String(), ""
}

// ValidateHistoryIndex parses a non-negative history position.
func ValidateHistoryIndex(raw string) (int, string) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, "index must be a non-negative integer"
	}
	return n, ""
}

// ValidatePage parses offset and limit query values. An empty limit means
// the maximum page size.
func ValidatePage(rawOffset, rawLimit string) (offset, limit int, errMsg string) {
	if rawOffset != "" {
		n, err := strconv.Atoi(rawOffset)
		if err != nil || n < 0 {
			return 0, 0, "offset must be a non-negative integer"
		}
		offset = n
	}
	limit = MaxHistoryPage
	if rawLimit != "" {
		n, err := strconv.Atoi(rawLimit)
		if err != nil || n < 1 || n > MaxHistoryPage {
			return 0, 0, "limit must be between 1 and 500"
		}
		limit = n
	}
	return offset, limit, ""
}

// ValidateQuery trims a search query and enforces its length.
func ValidateQuery(q string) (string, string) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", "q is required"
	}
	if len(q) > MaxQueryLen {
		return "", "q must be at most 200 characters"
	}
	return q, ""
}
