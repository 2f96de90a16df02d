package utils

import (
	"encoding/json"
	"strings"
	"time"

	"waste-logistics/errs"
	"waste-logistics/types"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// ActorFromClaims returns the caller identity recorded on every mutation.
// Falls back from username to uuid to "unknown".
func ActorFromClaims(c *fiber.Ctx) string {
	claims, ok := c.Locals("user").(jwt.MapClaims)
	if !ok {
		return "unknown"
	}
	if username, ok := claims["username"].(string); ok && username != "" {
		return username
	}
	if uuid, ok := claims["uuid"].(string); ok && uuid != "" {
		return uuid
	}
	return "unknown"
}

// SiteIDFromClaims extracts the caller's operating-site claim. A zero value
// means the token carries no site restriction.
func SiteIDFromClaims(c *fiber.Ctx) uint {
	claims, ok := c.Locals("user").(jwt.MapClaims)
	if !ok {
		return 0
	}
	// JSON numbers arrive as float64
	if siteID, ok := claims["site_id"].(float64); ok {
		return uint(siteID)
	}
	return 0
}

// CheckSiteAccess rejects callers whose token is bound to a different site
// than the entity they are trying to mutate. Runs before any mutation.
func CheckSiteAccess(c *fiber.Ctx, siteID uint) error {
	claimed := SiteIDFromClaims(c)
	if claimed != 0 && claimed != siteID {
		return errs.ErrUnauthorized
	}
	return nil
}

// ParseDate parses a 2006-01-02 date string.
func ParseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}

// ParseTimeOfDay parses a 15:04 clock string onto the given date.
func ParseTimeOfDay(value string, date time.Time) (time.Time, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location()), nil
}

// sanitizeRequestBody sanitizes request body for large or encoded content
func sanitizeRequestBody(c *fiber.Ctx) string {
	contentType := c.Get("Content-Type")
	if strings.Contains(contentType, "multipart/form-data") {
		formData := make(map[string]interface{})

		if form, err := c.MultipartForm(); err == nil {
			for key, values := range form.Value {
				if len(values) > 0 {
					formData[key] = values[0]
				}
			}
		}

		if jsonBytes, err := json.Marshal(formData); err == nil {
			return string(jsonBytes)
		}
		return "[MULTIPART_FORM_DATA]"
	}

	body := string(c.Body())
	if len(body) > 1000 && (strings.Contains(body, "data:image/") ||
		strings.Contains(body, "base64") ||
		isLikelyBase64(body)) {
		return "[LARGE_REQUEST_BODY_WITH_POSSIBLE_FILE_CONTENT]"
	}

	return body
}

// isLikelyBase64 detects if content looks like base64
func isLikelyBase64(content string) bool {
	if len(content) < 100 {
		return false
	}

	base64Chars := 0
	for _, char := range content {
		if (char >= 'A' && char <= 'Z') ||
			(char >= 'a' && char <= 'z') ||
			(char >= '0' && char <= '9') ||
			char == '+' || char == '/' || char == '=' {
			base64Chars++
		}
	}

	return float64(base64Chars)/float64(len(content)) > 0.8
}

// CreateSanitizedLogEntry creates a deep copied and sanitized log entry for logging
func CreateSanitizedLogEntry(c *fiber.Ctx) types.LogEntry {
	// Deep copies prevent fasthttp buffer reuse from corrupting the entry.
	method := string([]byte(c.Method()))
	url := string([]byte(c.OriginalURL()))
	requestBody := sanitizeRequestBody(c)
	responseBody := string(append([]byte(nil), c.Response().Body()...))

	requestHeaders := make([]byte, len(c.Request().Header.Header()))
	copy(requestHeaders, c.Request().Header.Header())

	responseHeaders := make([]byte, len(c.Response().Header.Header()))
	copy(responseHeaders, c.Response().Header.Header())

	return types.LogEntry{
		Method:          method,
		URL:             url,
		RequestBody:     requestBody,
		ResponseBody:    responseBody,
		RequestHeaders:  string(requestHeaders),
		ResponseHeaders: string(responseHeaders),
		StatusCode:      c.Response().StatusCode(),
		CreatedAt:       time.Now(),
	}
}
