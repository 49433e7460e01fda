package ui

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"healthcorr/app"
	"healthcorr/domain/core"
	"healthcorr/domain/correlation"

	"github.com/gin-gonic/gin"
)

const defaultTopPairs = 10

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case stderrors.Is(err, core.ErrStorageDisabled):
		return http.StatusServiceUnavailable
	case core.IsNotFoundError(err):
		return http.StatusNotFound
	case core.IsValidationError(err):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		c.Error(err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleVariables(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"variables": s.session.View.Codebook().Variables()})
}

func (s *Server) handleDataset(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"stats":     s.session.Stats,
		"loaded_at": s.session.LoadedAt,
		"load_ms":   s.session.LoadMs,
	})
}

func (s *Server) handleMatrix(c *gin.Context) {
	c.JSON(http.StatusOK, s.session.View.State())
}

func (s *Server) handleToggleOrder(c *gin.Context) {
	state, err := s.session.View.ToggleOrder(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (s *Server) handleSetOrder(c *gin.Context) {
	mode, err := correlation.ParseOrderMode(c.Param("mode"))
	if err != nil {
		s.fail(c, err)
		return
	}
	state, err := s.session.View.SetOrder(c.Request.Context(), mode)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (s *Server) handleSchemes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"schemes": app.ColorSchemes,
		"current": s.session.View.State().Scheme,
	})
}

func (s *Server) handleSetScheme(c *gin.Context) {
	state, err := s.session.View.SetScheme(c.Param("name"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (s *Server) handleProfiles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"profiles": s.session.Profiles})
}

func (s *Server) handleTopPairs(c *gin.Context) {
	k := defaultTopPairs
	if raw := c.Query("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "k must be a non-negative integer"})
			return
		}
		k = n
	}

	state := s.session.View.State()
	c.JSON(http.StatusOK, gin.H{
		"mode":  state.Mode,
		"pairs": state.Matrix.TopPairs(k),
	})
}

func (s *Server) handleSaveSnapshot(c *gin.Context) {
	snap, err := s.service.SaveSnapshot(c.Request.Context(), s.session.View)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

func (s *Server) handleListSnapshots(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
		return
	}
	list, err := s.service.ListSnapshots(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshots": list})
}

func (s *Server) handleGetSnapshot(c *gin.Context) {
	id, err := core.ParseSnapshotID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	snap, err := s.service.GetSnapshot(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}
