// Package httpapi exposes the authentication and todo services over a
// JSON/HTTP API built on gin. All business rules live in the services
// package; handlers only translate between HTTP and service calls.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/opavlenko/taskhub/internal/logging"
	"github.com/opavlenko/taskhub/internal/server/models"
	"github.com/opavlenko/taskhub/internal/server/services"
)

// AuthService is the part of the auth service the HTTP layer depends on.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	VerifyAccessToken(token string) (string, error)
	Me(ctx context.Context, userID string) (*models.User, error)
}

// TodoService is the part of the todo service the HTTP layer depends on.
type TodoService interface {
	Create(ctx context.Context, ownerID string, in services.TodoInput) (*models.Todo, error)
	Get(ctx context.Context, ownerID, id string) (*models.Todo, error)
	List(ctx context.Context, ownerID string, completed *bool, limit, offset int) ([]*models.Todo, error)
	Update(ctx context.Context, ownerID, id string, in services.TodoInput) (*models.Todo, error)
	Delete(ctx context.Context, ownerID, id string) error
	Toggle(ctx context.Context, ownerID, id string) (*models.Todo, error)
	Stats(ctx context.Context, ownerID string) (*services.TodoStats, error)
}

// Server wires the services into a gin router.
type Server struct {
	router *gin.Engine
	auth   AuthService
	todos  TodoService
	db     *sql.DB
	logger logging.Logger
}

func NewServer(auth AuthService, todos TodoService, db *sql.DB, logger logging.Logger) *Server {
	s := &Server{
		router: gin.New(),
		auth:   auth,
		todos:  todos,
		db:     db,
		logger: logger.With("component", "httpapi"),
	}
	s.router.Use(gin.Recovery())
	s.registerRoutes()
	return s
}

// Handler returns the root http.Handler for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", s.healthz)
	s.router.GET("/readyz", s.readyz)

	v1 := s.router.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", s.register)
	authGroup.POST("/login", s.login)
	authGroup.POST("/refresh", s.refresh)
	authGroup.POST("/logout", s.logout)
	authGroup.GET("/me", s.requireAuth(), s.me)

	todoGroup := v1.Group("/todos", s.requireAuth())
	todoGroup.POST("", s.createTodo)
	todoGroup.GET("", s.listTodos)
	todoGroup.GET("/stats", s.todoStats)
	todoGroup.GET("/:id", s.getTodo)
	todoGroup.PUT("/:id", s.updateTodo)
	todoGroup.DELETE("/:id", s.deleteTodo)
	todoGroup.POST("/:id/toggle", s.toggleTodo)
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// readyz additionally checks database connectivity, so load balancers stop
// routing to an instance that lost its store.
func (s *Server) readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn(c.Request.Context(), "readiness probe failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
