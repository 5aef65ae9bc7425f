// Package sanitizer вычищает секреты из текста ошибок перед записью в лог и БД.
package sanitizer

import (
	"sort"
	"strings"
)

type DataSanitizer struct {
	rules []SanitizerRule
}

type SanitizerRule interface {
	Sanitize(text string) string
}

// New собирает цепочку правил. secrets - значения, которые нельзя показывать
// ни в каком виде (пароль приложения, пароль БД).
func New(secrets ...string) *DataSanitizer {
	return &DataSanitizer{
		rules: []SanitizerRule{
			NewSecretSanitizer(secrets...),
			credentialsInURL,
			passwordRule,
			tokenRule,
			cookieRule,
			emailRule,
		},
	}
}

func (s *DataSanitizer) Sanitize(text string) string {
	if text == "" {
		return text
	}

	result := text
	for _, rule := range s.rules {
		result = rule.Sanitize(result)
	}
	return result
}

// SanitizeError - очищенный текст ошибки; для nil пустая строка.
func (s *DataSanitizer) SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return s.Sanitize(err.Error())
}

// SecretSanitizer заменяет известные значения целиком.
type SecretSanitizer struct {
	secrets []string
}

func NewSecretSanitizer(secrets ...string) *SecretSanitizer {
	var kept []string
	for _, v := range secrets {
		if strings.TrimSpace(v) != "" {
			kept = append(kept, v)
		}
	}
	// Длинные первыми, чтобы секрет-префикс не оставил хвост другого.
	sort.Slice(kept, func(i, j int) bool { return len(kept[i]) > len(kept[j]) })
	return &SecretSanitizer{secrets: kept}
}

func (s *SecretSanitizer) Sanitize(text string) string {
	for _, v := range s.secrets {
		text = strings.ReplaceAll(text, v, "[FILTERED]")
	}
	return text
}
