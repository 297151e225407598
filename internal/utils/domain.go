package utils

import (
	"strings"

	"github.com/yukikurage/task-analytics-api/internal/constants"
)

// EmailDomain returns the lower-cased part of email after the last '@'
func EmailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(email[at+1:]))
}

// IsPublicDomain reports whether domain belongs to a consumer mail provider
func IsPublicDomain(domain string) bool {
	_, ok := constants.PublicEmailDomains[strings.ToLower(domain)]
	return ok
}
