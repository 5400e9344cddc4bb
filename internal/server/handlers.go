package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/avgitgw/internal/auth"
	"github.com/vyrodovalexey/avgitgw/internal/authz"
	"github.com/vyrodovalexey/avgitgw/internal/observability"
	"github.com/vyrodovalexey/avgitgw/internal/protocol"
	"github.com/vyrodovalexey/avgitgw/internal/signature"
	"github.com/vyrodovalexey/avgitgw/internal/store"
)

// handleAttribution maps a commit-author signature to a platform account.
// Commit pages call this when rendering authorship.
func (s *Server) handleAttribution(c *gin.Context) {
	sig := signature.NewSignature(c.Query("name"), c.Query("email"))

	attr, err := s.attributor.Disassemble(c.Request.Context(), sig)
	if err != nil {
		s.logger.Error("attribution lookup failed",
			observability.Error(err),
			observability.String("requestID", GetRequestID(c)))
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name":    attr.DisplayName,
		"user_id": attr.UserID,
	})
}

// handleInfoRefs serves the ref advertisement phase of the smart protocol.
func (s *Server) handleInfoRefs(c *gin.Context) {
	svc, ok := protocol.ParseService(c.Query("service"))
	if !ok {
		// The dumb protocol is not supported.
		c.String(http.StatusBadRequest, "smart protocol service required")
		return
	}

	s.serveService(c, svc, true)
}

// handleUploadPack serves fetch and clone pack exchanges.
func (s *Server) handleUploadPack(c *gin.Context) {
	s.serveService(c, protocol.ServiceUploadPack, false)
}

// handleReceivePack serves push pack exchanges.
func (s *Server) handleReceivePack(c *gin.Context) {
	s.serveService(c, protocol.ServiceReceivePack, false)
}

// serveService authorizes the request and delegates to the protocol
// backend.
func (s *Server) serveService(c *gin.Context, svc protocol.Service, advertise bool) {
	contentType := svc.ResultContentType()
	if advertise {
		contentType = svc.AdvertisementContentType()
	}

	decision, ok := s.authorize(c, svc, contentType)
	if !ok {
		return
	}

	req := protocol.Request{
		Repo:      decision.Repo,
		User:      decision.User,
		Service:   svc,
		Advertise: advertise,
	}

	if err := s.protocol.Serve(c.Request.Context(), c.Writer, c.Request, req); err != nil {
		s.logger.Error("protocol exchange failed",
			observability.Error(err),
			observability.String("requestID", GetRequestID(c)),
			observability.String("service", string(svc)))
		if !c.Writer.Written() {
			c.Status(http.StatusInternalServerError)
		}
	}
}

// authorize resolves the target repository and runs the access decision.
// It writes the response itself on every outcome except allow.
func (s *Server) authorize(c *gin.Context, svc protocol.Service, contentType string) (*authz.Decision, bool) {
	ctx := c.Request.Context()
	owner := c.Param("owner")
	name := strings.TrimSuffix(c.Param("name"), ".git")

	repo, err := s.repos.ByOwnerAndName(ctx, owner, name)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.logger.Error("repository lookup failed",
			observability.Error(err),
			observability.String("requestID", GetRequestID(c)))
		c.Status(http.StatusInternalServerError)
		return nil, false
	}

	decide := s.access.Decide
	if svc == protocol.ServiceReceivePack {
		decide = s.access.DecideWrite
	}

	decision, challenge, err := decide(ctx, repo, contentType, c.Request)
	if challenge != nil {
		c.Header("WWW-Authenticate", challenge.Header())
		c.Header("Content-Type", challenge.ContentType)
		c.Status(http.StatusUnauthorized)
		return nil, false
	}
	if err != nil {
		if denial, ok := auth.AsDenial(err); ok {
			if denial.Message != "" {
				c.String(denial.Status, denial.Message)
			} else {
				c.Status(denial.Status)
			}
			return nil, false
		}

		s.logger.Error("access decision failed",
			observability.Error(err),
			observability.String("requestID", GetRequestID(c)))
		c.Status(http.StatusInternalServerError)
		return nil, false
	}

	return decision, true
}
