// Package sanitizer маскирует секреты и персональные данные в тексте,
// который попадает в логи и историю прогонов.
package sanitizer

type DataSanitizer struct {
	rules []SanitizerRule
}

type SanitizerRule interface {
	Sanitize(text string) string
}

func New() *DataSanitizer {
	return &DataSanitizer{
		rules: []SanitizerRule{
			&QueryParamSanitizer{},
			&TokenSanitizer{},
			&APIKeySanitizer{},
			&EmailSanitizer{},
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

var std = New()

// Sanitize применяет набор правил по умолчанию.
func Sanitize(text string) string {
	return std.Sanitize(text)
}
