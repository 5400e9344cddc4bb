package auth

import (
	"errors"
	"fmt"
	"net/http"
)

// IncorrectCredentialsMessage is the single message used for every
// credential failure: malformed credential text, unknown username and wrong
// password all read identically so a caller cannot tell them apart.
const IncorrectCredentialsMessage = "Incorrect username or password"

// Sentinel errors for authentication operations.
var (
	// ErrNoCredentials indicates that no Authorization header was present.
	ErrNoCredentials = errors.New("no credentials provided")
)

// Denial is a terminal authentication or access denial. It carries the
// HTTP status and an optional message; an empty message means an empty
// response body.
type Denial struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (d *Denial) Error() string {
	if d.Message == "" {
		return fmt.Sprintf("denied with status %d", d.Status)
	}
	return fmt.Sprintf("denied with status %d: %s", d.Status, d.Message)
}

// Is checks if the error matches the target.
func (d *Denial) Is(target error) bool {
	other, ok := target.(*Denial)
	if !ok {
		return false
	}
	return d.Status == other.Status && d.Message == other.Message
}

// DenyBare returns a 401 denial with an empty body, used for failures
// whose details must not reach the caller at all (e.g. scheme or encoding
// problems in the credential parser).
func DenyBare() *Denial {
	return &Denial{Status: http.StatusUnauthorized}
}

// DenyIncorrectCredentials returns the uniform 401 credential denial.
func DenyIncorrectCredentials() *Denial {
	return &Denial{Status: http.StatusUnauthorized, Message: IncorrectCredentialsMessage}
}

// DenyNotFound returns the 404 denial used when a repository does not
// exist. It deliberately carries no detail.
func DenyNotFound() *Denial {
	return &Denial{Status: http.StatusNotFound}
}

// AsDenial unwraps err into a *Denial if it is one.
func AsDenial(err error) (*Denial, bool) {
	var denial *Denial
	if errors.As(err, &denial) {
		return denial, true
	}
	return nil, false
}
