package respond

import "regexp"

var (
	// user:password@ in URL-style DSNs
	urlPassword = regexp.MustCompile(`://([^:/@\s]+):([^@\s]+)@`)
	// password=... in key/value DSNs
	kvPassword = regexp.MustCompile(`(?i)(password=)(\S+)`)
)

// SanitizeError masks credentials that drivers echo back in error text.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := urlPassword.ReplaceAllString(err.Error(), "://$1:****@")
	return kvPassword.ReplaceAllString(msg, "${1}****")
}
