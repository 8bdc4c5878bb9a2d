package html

import (
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

const rfc3339 = time.RFC3339

var (
	markupPolicyOnce sync.Once
	markupPolicy     *bluemonday.Policy
)

func sanitizeMarkup(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(markupSanitizer().Sanitize(trimmed))
}

// markupSanitizer allows user generated content plus inline SVG icons.
func markupSanitizer() *bluemonday.Policy {
	markupPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.RequireNoFollowOnLinks(true)
		policy.AddTargetBlankToFullyQualifiedLinks(true)
		policy.AllowAttrs("class").Globally()

		policy.AllowElements("svg", "g", "path", "circle", "rect", "title")
		policy.AllowAttrs("xmlns", "viewBox", "width", "height", "fill", "stroke", "aria-hidden", "role").OnElements("svg")
		for _, el := range []string{"path", "circle", "rect"} {
			policy.AllowAttrs("d", "cx", "cy", "r", "x", "y", "rx", "ry", "width", "height", "fill", "stroke", "stroke-width").OnElements(el)
		}
		markupPolicy = policy
	})
	return markupPolicy
}

// safeURL keeps http(s), relative, and deep link style URLs and drops
// javascript: and data: schemes.
func safeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "javascript", "data", "vbscript":
		return ""
	}
	return parsed.String()
}

func parseTime(raw string) (time.Time, error) {
	return time.Parse(rfc3339, strings.TrimSpace(raw))
}
