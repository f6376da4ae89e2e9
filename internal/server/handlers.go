package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/khrees2412/jobtracker/internal/auth"
	"github.com/khrees2412/jobtracker/internal/cache"
	"github.com/khrees2412/jobtracker/internal/validation"
	"github.com/khrees2412/jobtracker/internal/view"
	"github.com/khrees2412/jobtracker/pkg/models"
)

type signUpRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
}

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
}

type sessionResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

type statsResponse struct {
	models.Stats
	ResponseRate float64 `json:"response_rate"`
}

type listResponse struct {
	Applications []models.Application `json:"applications"`
	Stats        statsResponse        `json:"stats"`
	Filter       view.Filter          `json:"filter"`
	CacheStatus  string               `json:"cache_status"`
}

func newSessionResponse(session *auth.Session) sessionResponse {
	return sessionResponse{
		Token:     session.Token(),
		ExpiresAt: session.ExpiresAt(),
		User:      session.CurrentUser(),
	}
}

func newStatsResponse(stats models.Stats) statsResponse {
	return statsResponse{Stats: stats, ResponseRate: stats.ResponseRate()}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeBindError(c, err)
		return
	}

	session, err := s.auth.SignUp(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.sessions.register(session)
	s.logger.Info("user signed up", "user", session.CurrentUser().ID)

	c.JSON(http.StatusCreated, newSessionResponse(session))
}

func (s *Server) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeBindError(c, err)
		return
	}

	session, err := s.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}
	s.sessions.register(session)

	c.JSON(http.StatusOK, newSessionResponse(session))
}

func (s *Server) signOut(c *gin.Context) {
	entry := currentEntry(c)
	if err := s.auth.SignOut(c.Request.Context(), entry.session); err != nil {
		s.writeError(c, err)
		return
	}
	s.sessions.release(entry.session.Token())

	c.Status(http.StatusNoContent)
}

func (s *Server) profile(c *gin.Context) {
	user, err := s.auth.Profile(c.Request.Context(), currentEntry(c).session)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeBindError(c, err)
		return
	}

	user, err := s.auth.UpdateDisplayName(c.Request.Context(), currentEntry(c).session, req.DisplayName)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) listApplications(c *gin.Context) {
	filter := view.Filter{
		Status: strings.TrimSpace(c.Query("status")),
		Query:  c.Query("q"),
	}
	if filter.Status != "" && !strings.EqualFold(filter.Status, view.StatusAll) {
		if _, err := validation.ParseStatus(filter.Status); err != nil {
			s.writeError(c, err)
			return
		}
	}

	apps := currentEntry(c).cache
	if err := s.ensureLoaded(c, apps); err != nil {
		s.writeError(c, err)
		return
	}

	records := apps.Records()
	c.JSON(http.StatusOK, listResponse{
		Applications: view.Apply(records, filter),
		Stats:        newStatsResponse(view.Statistics(records)),
		Filter:       filter,
		CacheStatus:  apps.Status().String(),
	})
}

func (s *Server) createApplication(c *gin.Context) {
	input := models.NewApplicationInput(time.Now())
	if err := c.ShouldBindJSON(&input); err != nil {
		s.writeBindError(c, err)
		return
	}

	created, err := currentEntry(c).cache.Add(c.Request.Context(), input)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) updateApplication(c *gin.Context) {
	var patch models.ApplicationPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		s.writeBindError(c, err)
		return
	}

	updated, err := currentEntry(c).cache.Change(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteApplication(c *gin.Context) {
	if err := currentEntry(c).cache.Remove(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) stats(c *gin.Context) {
	apps := currentEntry(c).cache
	if err := s.ensureLoaded(c, apps); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newStatsResponse(view.Statistics(apps.Records())))
}

// ensureLoaded fetches when the cache has nothing usable or the client asks
// for ?refresh=true.
func (s *Server) ensureLoaded(c *gin.Context, apps *cache.Cache) error {
	refresh, _ := strconv.ParseBool(c.Query("refresh"))
	switch apps.Status() {
	case cache.StatusUninitialized, cache.StatusError:
		refresh = true
	}
	if !refresh {
		return nil
	}
	return apps.Load(c.Request.Context())
}
