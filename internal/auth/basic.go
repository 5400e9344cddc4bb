package auth

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"
)

// basicScheme is the Authorization scheme accepted by the parser. The
// comparison is case-sensitive.
const basicScheme = "Basic"

// ParseBasicAuth parses a raw Authorization header value into a username
// and password pair.
//
// The header is split once on the first space; the first part must be the
// literal "Basic". A wrong scheme, invalid base64 or non-UTF-8 credential
// bytes fail with a bare 401 carrying no message, so nothing about the
// parser leaks to the caller. Decoded credentials are split once on the
// first colon; an empty username or password fails with the same generic
// message every later verification failure uses.
func ParseBasicAuth(header string) (string, string, error) {
	scheme, encoded, _ := strings.Cut(header, " ")
	if scheme != basicScheme {
		return "", "", DenyBare()
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", "", DenyBare()
	}
	if !utf8.Valid(decoded) {
		return "", "", DenyBare()
	}

	username, password, _ := strings.Cut(string(decoded), ":")
	if username == "" || password == "" {
		return "", "", DenyIncorrectCredentials()
	}

	return username, password, nil
}
