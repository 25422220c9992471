package debuginfos

import (
	"regexp"
	"strings"
)

const hidden = "<hidden>"

// Anonymizer removes personal data from log content.
type Anonymizer interface {
	Anonymize(content string) string
}

var (
	ipv4Pattern  = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
	paramPattern = regexp.MustCompile(`(?i)\b((?:apikey|api_key|password|passwd|username|user|token)=)[^&\s"']+`)
)

// RegexAnonymizer masks IPv4 addresses, credential-like query parameters and
// any of the configured secrets.
type RegexAnonymizer struct {
	secrets []string
}

func NewRegexAnonymizer(secrets ...string) *RegexAnonymizer {
	a := &RegexAnonymizer{}
	for _, s := range secrets {
		if strings.TrimSpace(s) != "" {
			a.secrets = append(a.secrets, s)
		}
	}
	return a
}

func (a *RegexAnonymizer) Anonymize(content string) string {
	for _, s := range a.secrets {
		content = strings.ReplaceAll(content, s, hidden)
	}
	content = paramPattern.ReplaceAllString(content, "${1}"+hidden)
	return ipv4Pattern.ReplaceAllString(content, "<hidden-ip>")
}
