package rules

import (
	"net/mail"
	"regexp"
	"strings"
)

var (
	urlPattern        = regexp.MustCompile(`https?://\S+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	domainPattern     = regexp.MustCompile(`@([a-z0-9.\-]+)`)
)

// CleanText collapses whitespace and removes URLs.
func CleanText(s string) string {
	s = urlPattern.ReplaceAllString(s, " ")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// normalizeText prepares text for phrase matching.
func normalizeText(s string) string {
	return strings.ToLower(CleanText(s))
}

// SenderDomain returns the lowercased domain of a From header value, or the
// whole lowercased value when no address can be found.
func SenderDomain(sender string) string {
	lower := strings.ToLower(strings.TrimSpace(sender))
	if addr, err := mail.ParseAddress(lower); err == nil {
		if at := strings.LastIndexByte(addr.Address, '@'); at >= 0 {
			return addr.Address[at+1:]
		}
	}
	if m := domainPattern.FindStringSubmatch(lower); m != nil {
		return strings.TrimRight(m[1], ".")
	}
	return lower
}

// InferCompany guesses an organization name from the sender domain: the
// second-level label after dropping a "mail." subdomain.
func InferCompany(sender string) string {
	if !strings.Contains(sender, "@") {
		return ""
	}
	domain := strings.ReplaceAll(SenderDomain(sender), "mail.", "")
	parts := strings.Split(domain, ".")
	if len(parts) >= 2 {
		return parts[len(parts)-2]
	}
	return parts[0]
}

// containsAny reports whether text contains any of the phrases.
// Phrases are matched case-insensitively against normalized text.
func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" && strings.Contains(text, p) {
			return true
		}
	}
	return false
}
