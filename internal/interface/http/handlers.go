package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-hub/course-registry/internal/application/directory"
	"github.com/campus-hub/course-registry/internal/domain/discipline"
	"github.com/campus-hub/course-registry/internal/domain/shared"
)

// LoggedOutMessage acknowledges a successful logout.
const LoggedOutMessage = "Logged out successfully"

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleHealth(c *gin.Context) {
	if s.deps.HealthChecker == nil {
		respond(c, http.StatusOK, gin.H{"healthy": true, "uptime": s.Uptime().String(), "version": s.config.Version})
		return
	}

	status := s.deps.HealthChecker.Check(c.Request.Context())
	if !status.Healthy {
		respond(c, http.StatusServiceUnavailable, status)
		return
	}
	respond(c, http.StatusOK, status)
}

func (s *Server) handleReady(c *gin.Context) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(c.Request.Context())
		if !status.Ready {
			respond(c, http.StatusServiceUnavailable, gin.H{"status": "not_ready", "reason": status.Message})
			return
		}
	}
	respond(c, http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) handleLive(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type loginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "login and password are required")
		return
	}

	session, err := s.deps.Gate.Login(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, session)
}

func (s *Server) handleLogout(c *gin.Context) {
	id, _ := identityFrom(c)
	if err := s.deps.Gate.Logout(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, LoggedOutMessage)
}

// ══════════════════════════════════════════════════════════════════════════════
// DISCIPLINE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleListDisciplines(c *gin.Context) {
	id, _ := identityFrom(c)
	items, err := s.deps.Directory.List(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, items)
}

func (s *Server) handleGetDiscipline(c *gin.Context) {
	id, _ := identityFrom(c)
	d, err := s.deps.Directory.Detail(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, d)
}

func (s *Server) handleCreateDiscipline(c *gin.Context) {
	var in discipline.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.fail(c, badBody(err))
		return
	}

	id, _ := identityFrom(c)
	d, err := s.deps.Directory.Create(c.Request.Context(), id, in)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, d)
}

func (s *Server) handleUpdateDiscipline(c *gin.Context) {
	var in discipline.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		s.fail(c, badBody(err))
		return
	}

	id, _ := identityFrom(c)
	d, err := s.deps.Directory.Update(c.Request.Context(), id, c.Param("id"), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, d)
}

func (s *Server) handleDeleteDiscipline(c *gin.Context) {
	id, _ := identityFrom(c)
	if err := s.deps.Directory.Delete(c.Request.Context(), id, c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, directory.DeletedMessage)
}

// ══════════════════════════════════════════════════════════════════════════════
// USER HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleListUsers(c *gin.Context) {
	id, _ := identityFrom(c)
	users, err := s.deps.Gate.ListUsers(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, users)
}

// badBody turns a JSON decoding failure into an InvalidInput error.
func badBody(err error) error {
	return shared.WrapError("http", "Bind", shared.KindInvalidInput, "Invalid request body: "+err.Error(), err)
}
