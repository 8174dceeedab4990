// Package format implements the checks behind field descriptor format tags.
package format

import (
	"net/mail"
	"net/url"
	"strings"
)

// Email reports whether s is a bare RFC 5322 address (no display name).
func Email(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s
}

// URL reports whether s is an absolute URL with a scheme and host.
func URL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}
