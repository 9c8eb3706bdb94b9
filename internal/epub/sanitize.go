package epub

import (
	"regexp"
	"strings"
)

// Sanitization rewrites generated markup so every id attribute and every
// internal href fragment is drawn from [A-Za-z0-9_.-]. Both passes are
// purely textual transforms over the whole document string and idempotent:
// values already inside the allowed set (including the replacement token)
// pass through unchanged.

var (
	disallowedIDChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)
	idAttr            = regexp.MustCompile(`\bid="([^"]*)"`)
	hrefAttr          = regexp.MustCompile(`\bhref="([^"]*)"`)
)

// externalSchemes are link prefixes never rewritten, fragment or not.
var externalSchemes = []string{"http", "https", "ftp", "mailto", "irc"}

// SanitizeID replaces every run of characters outside [A-Za-z0-9_.-] with
// the literal token "--".
func SanitizeID(s string) string {
	return disallowedIDChars.ReplaceAllString(s, "--")
}

// isExternalLink reports whether the href value starts with a recognized
// scheme followed by "://".
func isExternalLink(v string) bool {
	for _, scheme := range externalSchemes {
		if strings.HasPrefix(v, scheme+"://") {
			return true
		}
	}
	return false
}

// SanitizeLinks rewrites the fragment of every internal href attribute.
// External links pass through byte-for-byte; internal values without a
// fragment are left untouched so path bytes are never re-encoded.
func SanitizeLinks(doc string) string {
	return hrefAttr.ReplaceAllStringFunc(doc, func(m string) string {
		val := m[len(`href="`) : len(m)-1]
		if isExternalLink(val) {
			return m
		}
		hash := strings.Index(val, "#")
		if hash < 0 {
			return m
		}
		return `href="` + val[:hash] + "#" + SanitizeID(val[hash+1:]) + `"`
	})
}

// SanitizeIDs rewrites every id attribute value.
func SanitizeIDs(doc string) string {
	return idAttr.ReplaceAllStringFunc(doc, func(m string) string {
		val := m[len(`id="`) : len(m)-1]
		return `id="` + SanitizeID(val) + `"`
	})
}

// Sanitize applies the link pass followed by the id pass.
func Sanitize(doc string) string {
	return SanitizeIDs(SanitizeLinks(doc))
}
