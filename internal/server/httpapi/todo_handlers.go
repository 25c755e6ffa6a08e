package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/opavlenko/taskhub/internal/server/services"
)

type todoRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	Priority    string `json:"priority"`
}

func (r todoRequest) input() services.TodoInput {
	return services.TodoInput{
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		Priority:    r.Priority,
	}
}

func (s *Server) createTodo(c *gin.Context) {
	var req todoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request payload"})
		return
	}

	todo, err := s.todos.Create(c.Request.Context(), userID(c), req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTodoResponse(todo))
}

func (s *Server) listTodos(c *gin.Context) {
	var completed *bool
	if raw, ok := c.GetQuery("completed"); ok {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid completed filter"})
			return
		}
		completed = &v
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	todos, err := s.todos.List(c.Request.Context(), userID(c), completed, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}

	result := make([]todoResponse, 0, len(todos))
	for _, todo := range todos {
		result = append(result, toTodoResponse(todo))
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) todoStats(c *gin.Context) {
	stats, err := s.todos.Stats(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, statsResponse{
		Total:          stats.Total,
		Completed:      stats.Completed,
		Pending:        stats.Pending,
		CompletionRate: stats.CompletionRate,
	})
}

func (s *Server) getTodo(c *gin.Context) {
	todo, err := s.todos.Get(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTodoResponse(todo))
}

func (s *Server) updateTodo(c *gin.Context) {
	var req todoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request payload"})
		return
	}

	todo, err := s.todos.Update(c.Request.Context(), userID(c), c.Param("id"), req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTodoResponse(todo))
}

func (s *Server) deleteTodo(c *gin.Context) {
	if err := s.todos.Delete(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) toggleTodo(c *gin.Context) {
	todo, err := s.todos.Toggle(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTodoResponse(todo))
}
