package fiberauth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// TokenExtractor pulls a raw session token out of a request.
type TokenExtractor func(c *fiber.Ctx) string

// GetExtractors parses a lookup definition such as
// "header:Authorization,cookie:chat_session,query:token".
func GetExtractors(tokenLookup string, authScheme string) []TokenExtractor {
	if authScheme == "" {
		authScheme = "Bearer"
	}

	extractors := make([]TokenExtractor, 0)
	for _, rootPart := range strings.Split(tokenLookup, ",") {
		parts := strings.SplitN(strings.TrimSpace(rootPart), ":", 2)
		if len(parts) != 2 {
			continue
		}

		source, name := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		switch source {
		case "header":
			extractors = append(extractors, fromHeader(name, authScheme))
		case "cookie":
			extractors = append(extractors, fromCookie(name))
		case "query":
			extractors = append(extractors, fromQuery(name))
		}
	}

	return extractors
}

// ExtractToken returns the first non empty token found by extractors.
func ExtractToken(c *fiber.Ctx, extractors []TokenExtractor) string {
	for _, extractor := range extractors {
		if raw := extractor(c); raw != "" {
			return raw
		}
	}
	return ""
}

func fromHeader(header, authScheme string) TokenExtractor {
	return func(c *fiber.Ctx) string {
		a := c.Get(header)
		l := len(authScheme)
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) && a[l] == ' ' {
			return strings.TrimSpace(a[l:])
		}
		return ""
	}
}

func fromCookie(name string) TokenExtractor {
	return func(c *fiber.Ctx) string {
		return c.Cookies(name)
	}
}

func fromQuery(param string) TokenExtractor {
	return func(c *fiber.Ctx) string {
		return c.Query(param)
	}
}
