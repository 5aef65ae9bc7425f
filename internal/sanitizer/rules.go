package sanitizer

import "regexp"

// patternRule - набор регулярных выражений с общей заменой.
type patternRule struct {
	patterns    []*regexp.Regexp
	replacement string
}

func (r *patternRule) Sanitize(text string) string {
	for _, p := range r.patterns {
		text = p.ReplaceAllString(text, r.replacement)
	}
	return text
}

var (
	credentialsInURL = &patternRule{
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)([a-z][a-z0-9+.-]*://[^:/@\s]+:)([^@\s]+)(@)`),
		},
		replacement: `${1}[FILTERED]${3}`,
	}

	passwordRule = &patternRule{
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(password|passwd|pwd|пароль)(\s*[:=]\s*)["']?[^"'\s]{3,}["']?`),
		},
		replacement: `${1}${2}[FILTERED]`,
	}

	tokenRule = &patternRule{
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)((?:token|api[_-]?key|secret|access[_-]?key)\s*[:=]\s*["']?)[a-zA-Z0-9_-]{20,}["']?`),
			regexp.MustCompile(`(?i)(bearer\s+)[a-zA-Z0-9._-]{20,}`),
		},
		replacement: `${1}[FILTERED]`,
	}

	cookieRule = &patternRule{
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)((?:set-)?cookie\s*[:=]\s*)[^\n]{10,}`),
			regexp.MustCompile(`(?i)(session[_-]?(?:id|token)\s*[:=]\s*["']?)[a-zA-Z0-9_-]{10,}["']?`),
		},
		replacement: `${1}[FILTERED]`,
	}

	emailRule = &patternRule{
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`),
		},
		replacement: `[FILTERED_EMAIL]`,
	}
)
