// Package protocol defines the git smart-HTTP service surface the gateway
// fronts. The gateway decides access; pack negotiation itself is delegated
// to a Handler implementation.
package protocol

import (
	"context"
	"net/http"

	"github.com/vyrodovalexey/avgitgw/internal/store"
)

// Service identifies a git smart-HTTP service.
type Service string

// The two services of the smart protocol.
const (
	ServiceUploadPack  Service = "git-upload-pack"
	ServiceReceivePack Service = "git-receive-pack"
)

// ParseService maps a service query parameter to a known Service.
func ParseService(s string) (Service, bool) {
	switch Service(s) {
	case ServiceUploadPack:
		return ServiceUploadPack, true
	case ServiceReceivePack:
		return ServiceReceivePack, true
	default:
		return "", false
	}
}

// AdvertisementContentType is the response content type for the ref
// advertisement phase (GET info/refs).
func (s Service) AdvertisementContentType() string {
	return "application/x-" + string(s) + "-advertisement"
}

// ResultContentType is the response content type for the pack exchange
// phase (POST).
func (s Service) ResultContentType() string {
	return "application/x-" + string(s) + "-result"
}

// Request describes an authorized protocol exchange.
type Request struct {
	// Repo is the target repository.
	Repo *store.Repository

	// User is the authenticated caller, nil for anonymous reads.
	User *store.User

	// Service is the negotiated service.
	Service Service

	// Advertise is true for the ref advertisement phase.
	Advertise bool
}

// Handler runs the pack negotiation for an authorized request.
type Handler interface {
	Serve(ctx context.Context, w http.ResponseWriter, r *http.Request, req Request) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, w http.ResponseWriter, r *http.Request, req Request) error

// Serve implements Handler.
func (f HandlerFunc) Serve(ctx context.Context, w http.ResponseWriter, r *http.Request, req Request) error {
	return f(ctx, w, r, req)
}

// Unimplemented is a Handler that answers 501 for every service. It stands
// in where no pack negotiation backend is wired.
type Unimplemented struct{}

// Serve implements Handler.
func (Unimplemented) Serve(_ context.Context, w http.ResponseWriter, _ *http.Request, req Request) error {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotImplemented)
	return nil
}
