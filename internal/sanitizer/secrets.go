package sanitizer

import "regexp"

// QueryParamSanitizer скрывает значения секретных параметров в адресах
// запросов, например key= у YouTube Data API.
type QueryParamSanitizer struct{}

var queryParamPattern = regexp.MustCompile(`(?i)([?&](?:key|api_key|access_token|token)=)[^&\s"']+`)

func (s *QueryParamSanitizer) Sanitize(text string) string {
	return queryParamPattern.ReplaceAllString(text, `${1}[FILTERED]`)
}

type TokenSanitizer struct{}

var tokenPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(bearer\s+)([a-zA-Z0-9._-]{20,})`),
	regexp.MustCompile(`(?i)(token|токен)(\s*[:=]\s*["']?)([a-zA-Z0-9_-]{20,})["']?`),
}

func (s *TokenSanitizer) Sanitize(text string) string {
	text = tokenPatterns[0].ReplaceAllString(text, `${1}[FILTERED]`)
	return tokenPatterns[1].ReplaceAllString(text, `${1}${2}[FILTERED]`)
}

// APIKeySanitizer знает форматы ключей Google, Groq и OpenAI.
type APIKeySanitizer struct{}

var apiKeyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`),
	regexp.MustCompile(`gsk_[a-zA-Z0-9]{20,}`),
	regexp.MustCompile(`sk-[a-zA-Z0-9_-]{32,}`),
}

var apiKeyAssignment = regexp.MustCompile(`(?i)((?:api|secret)[_-]?(?:key|secret)\s*[:=]\s*)["']?[a-zA-Z0-9_-]{20,}["']?`)

func (s *APIKeySanitizer) Sanitize(text string) string {
	for _, pattern := range apiKeyPatterns {
		text = pattern.ReplaceAllString(text, `[FILTERED]`)
	}
	return apiKeyAssignment.ReplaceAllString(text, `${1}[FILTERED]`)
}

type EmailSanitizer struct{}

var emailPattern = regexp.MustCompile(`\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`)

func (s *EmailSanitizer) Sanitize(text string) string {
	return emailPattern.ReplaceAllString(text, `[FILTERED_EMAIL]`)
}
