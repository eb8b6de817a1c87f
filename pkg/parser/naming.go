package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxProjectNameLength bounds sanitised project names, in runes.
const MaxProjectNameLength = 30

const (
	fallbackSlugLength = 20
	fallbackDigits     = 6
)

var nameReplacer = strings.NewReplacer(" ", "_", "-", "_", "/", "_", "\\", "_")

// SanitizeProjectName turns a raw model answer into a directory-safe name.
// Only the first line counts and anything up to its last colon is dropped.
// The result never starts or ends with a dot and may be empty.
func SanitizeProjectName(raw string) string {
	line := strings.TrimSpace(raw)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if i := strings.LastIndex(line, ":"); i >= 0 {
		line = line[i+1:]
	}
	line = nameReplacer.Replace(strings.TrimSpace(line))
	line = truncateRunes(line, MaxProjectNameLength)
	// Leading or trailing dots would let "." and ".." through as names.
	return strings.Trim(line, "_.")
}

// FallbackProjectName builds Project_<slug>_<digits> from the request and
// the last six digits of the Unix time. It is never empty.
func FallbackProjectName(request string, now time.Time) string {
	slug := requestSlug(request)
	ts := strconv.FormatInt(now.Unix(), 10)
	if len(ts) > fallbackDigits {
		ts = ts[len(ts)-fallbackDigits:]
	}
	return fmt.Sprintf("Project_%s_%s", slug, ts)
}

func requestSlug(request string) string {
	s := truncateRunes(request, fallbackSlugLength)
	s = cases.Lower(language.Und).String(s)

	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}

	var sb strings.Builder
	for _, r := range strings.ReplaceAll(s, " ", "_") {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			sb.WriteRune(r)
		}
	}

	slug := strings.Trim(sb.String(), "_")
	if slug == "" {
		return "project"
	}
	return slug
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
