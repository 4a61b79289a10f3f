package utils

import "regexp"

// credentialPart matches the ":password@" segment of a connection URL.
var credentialPart = regexp.MustCompile(`(:)([^:@]+)(@)`)

// MaskDSN redacts the password in a DSN so the string is safe to log.
func MaskDSN(dsn string) string {
	return credentialPart.ReplaceAllString(dsn, ":***@")
}
