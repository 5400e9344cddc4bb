// Package password provides the password verification capability consumed
// by the credential verifier. The stored format is an argon2id PHC string:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<parallelism>$<saltB64>$<keyB64>
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Verification errors.
var (
	// ErrEmptyPassword indicates an empty plaintext password.
	ErrEmptyPassword = errors.New("empty password")

	// ErrMalformedHash indicates that the stored hash is not a valid
	// argon2id PHC string.
	ErrMalformedHash = errors.New("malformed password hash")
)

// Verifier checks a plaintext password against stored credential material.
type Verifier interface {
	// Verify reports whether plain matches the stored encoded hash. An
	// error is returned only for malformed stored material, never for a
	// simple mismatch.
	Verify(plain, encoded string) (bool, error)
}

// Params holds argon2id cost parameters.
type Params struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

// DefaultParams returns the cost parameters used for new hashes.
func DefaultParams() Params {
	return Params{Memory: 64 * 1024, Time: 3, Parallelism: 1, SaltLen: 16, KeyLen: 32}
}

// Argon2Verifier implements Verifier using argon2id.
type Argon2Verifier struct {
	params Params
}

// NewArgon2Verifier creates a verifier with the given parameters for
// hashing. Verification always uses the parameters embedded in the stored
// string.
func NewArgon2Verifier(params Params) *Argon2Verifier {
	if params.KeyLen == 0 {
		params = DefaultParams()
	}
	return &Argon2Verifier{params: params}
}

// Hash derives a new PHC string from plain.
func (v *Argon2Verifier) Hash(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, v.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(plain), salt,
		v.params.Time, v.params.Memory, v.params.Parallelism, v.params.KeyLen)

	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		v.params.Memory, v.params.Time, v.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether plain matches the stored PHC string in constant
// time with respect to the derived key comparison.
func (v *Argon2Verifier) Verify(plain, encoded string) (bool, error) {
	params, salt, key, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}

	derived := argon2.IDKey([]byte(plain), salt,
		params.Time, params.Memory, params.Parallelism, uint32(len(key)))

	return subtle.ConstantTimeCompare(derived, key) == 1, nil
}

// decodeHash parses an argon2id PHC string into its parts.
func decodeHash(encoded string) (Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return Params{}, nil, nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return Params{}, nil, nil, ErrMalformedHash
	}

	params, err := parseCostParams(parts[3])
	if err != nil {
		return Params{}, nil, nil, err
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, ErrMalformedHash
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return Params{}, nil, nil, ErrMalformedHash
	}

	return params, salt, key, nil
}

// parseCostParams parses "m=...,t=...,p=..." into Params.
func parseCostParams(s string) (Params, error) {
	var params Params

	for _, field := range strings.Split(s, ",") {
		name, value, found := strings.Cut(field, "=")
		if !found {
			return Params{}, ErrMalformedHash
		}

		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return Params{}, ErrMalformedHash
		}

		switch name {
		case "m":
			params.Memory = uint32(n)
		case "t":
			params.Time = uint32(n)
		case "p":
			if n > 255 {
				return Params{}, ErrMalformedHash
			}
			params.Parallelism = uint8(n)
		default:
			return Params{}, ErrMalformedHash
		}
	}

	if params.Memory == 0 || params.Time == 0 || params.Parallelism == 0 {
		return Params{}, ErrMalformedHash
	}

	return params, nil
}
