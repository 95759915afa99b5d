package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DThang8583/SEP490-Pet-Cafe-sub008/internal/lifecycle"
	"github.com/DThang8583/SEP490-Pet-Cafe-sub008/internal/model"
	"github.com/DThang8583/SEP490-Pet-Cafe-sub008/internal/orchestrator"
	"github.com/DThang8583/SEP490-Pet-Cafe-sub008/internal/permission"
	"github.com/DThang8583/SEP490-Pet-Cafe-sub008/internal/reconcile"
	"github.com/DThang8583/SEP490-Pet-Cafe-sub008/internal/taskstore"
)

const dateLayout = "2006-01-02"

// Server exposes the core operations over HTTP. Authentication is handled by
// the gateway in front of this service; the actor arrives as headers.
type Server struct {
	loader     *orchestrator.Loader
	engine     *lifecycle.Engine
	reconciler *reconcile.Engine
	guard      *permission.Guard
	store      taskstore.Store
	loc        *time.Location
}

func New(loader *orchestrator.Loader, engine *lifecycle.Engine, reconciler *reconcile.Engine, guard *permission.Guard, store taskstore.Store, loc *time.Location) *Server {
	return &Server{
		loader:     loader,
		engine:     engine,
		reconciler: reconciler,
		guard:      guard,
		store:      store,
		loc:        loc,
	}
}

func (s *Server) Router() *gin.Engine {
	router := gin.Default()
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api := router.Group("/api/v1")
	api.GET("/tasks", s.listTasks)
	api.POST("/tasks/:id/status", s.transitionTask)
	api.POST("/tasks/:id/permission", s.checkPermission)
	return router
}

// listTasks handles GET /api/v1/tasks?scope=week|month&date=YYYY-MM-DD&team_id=...
func (s *Server) listTasks(c *gin.Context) {
	actor, ok := s.actor(c)
	if !ok {
		return
	}
	ref := time.Now().In(s.loc)
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation(dateLayout, raw, s.loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		ref = parsed
	}
	window, err := orchestrator.ResolveWindow(c.Query("scope"), ref, s.loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.loader.LoadTasks(c.Request.Context(), window, c.Query("team_id"), actor)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if result.Tasks == nil {
		result.Tasks = []model.EnrichedTask{}
	}
	if result.Warnings == nil {
		result.Warnings = []model.TeamFetchWarning{}
	}
	c.JSON(http.StatusOK, result)
}

// transitionTask handles POST /api/v1/tasks/:id/status.
func (s *Server) transitionTask(c *gin.Context) {
	actor, ok := s.actor(c)
	if !ok {
		return
	}
	var req struct {
		Status model.TaskStatus `json:"status" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status " + string(req.Status)})
		return
	}

	task, err := s.engine.Transition(c.Request.Context(), c.Param("id"), req.Status, actor)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, lifecycle.ErrInvalidTransition):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, lifecycle.ErrPermissionDenied):
			status = http.StatusForbidden
		case errors.Is(err, taskstore.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, taskstore.ErrConflict):
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	enriched := s.reconciler.Enrich(c.Request.Context(), []model.Task{task})
	c.JSON(http.StatusOK, enriched[0])
}

// checkPermission handles POST /api/v1/tasks/:id/permission. Advisory only:
// the same rule runs again inside every transition.
func (s *Server) checkPermission(c *gin.Context) {
	actor, ok := s.actor(c)
	if !ok {
		return
	}
	task, err := s.store.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, taskstore.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	allowed := s.guard.CanActorMutate(c.Request.Context(), task, actor)
	c.JSON(http.StatusOK, gin.H{"allowed": allowed})
}

func (s *Server) actor(c *gin.Context) (model.Actor, bool) {
	actor := model.Actor{
		ID:    c.GetHeader("X-Actor-ID"),
		Email: c.GetHeader("X-Actor-Email"),
	}
	if actor.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-Actor-ID header is required"})
		return model.Actor{}, false
	}
	return actor, true
}
