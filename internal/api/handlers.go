package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/javiermolinar/dayblocks/internal/schedule"
	"github.com/javiermolinar/dayblocks/internal/task"
)

type errorResponse struct {
	Error string `json:"error"`
}

// taskRequest is the body of create, update and shift requests.
// Field names match the stored task.
type taskRequest struct {
	Name  string `json:"task_name"`
	Start string `json:"task_time_start"`
	End   string `json:"task_time_end"`
	Color string `json:"task_color"`

	// Shift only; defaults to the stored end of the task.
	OriginalEnd string `json:"original_end,omitempty"`
}

type overlapResponse struct {
	Overlap   bool         `json:"overlap"`
	Conflicts []*task.Task `json:"conflicts"`
}

type shiftPreviewResponse struct {
	Delta   int               `json:"delta"`
	Updates []task.TimeUpdate `json:"updates"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) listTasks(c *gin.Context) {
	tasks, err := s.store.List(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	if tasks == nil {
		tasks = []*task.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) createTask(c *gin.Context) {
	t, ok := s.bindTask(c)
	if !ok {
		return
	}

	created, err := s.store.Create(c.Request.Context(), t.Name, t.Start, t.End, t.Color)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) updateTask(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	t, ok := s.bindTask(c)
	if !ok {
		return
	}

	updated, err := s.store.Update(c.Request.Context(), id, t.Name, t.Start, t.End, t.Color)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) shiftTask(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	t, err := task.New(req.Name, req.Start, req.End, s.colorOr(req.Color))
	if err != nil {
		s.writeError(c, err)
		return
	}

	// An empty original end is resolved by the store under its lock.
	if req.OriginalEnd != "" {
		if err := task.ValidateTime(req.OriginalEnd); err != nil {
			s.writeError(c, err)
			return
		}
	}

	updated, err := s.store.UpdateWithShift(c.Request.Context(), id, t.Name, t.Start, t.End, t.Color, req.OriginalEnd)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) previewShift(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	end := c.Query("end")
	if err := task.ValidateTime(end); err != nil {
		s.writeError(c, err)
		return
	}
	originalEnd := c.Query("original_end")
	if originalEnd != "" {
		if err := task.ValidateTime(originalEnd); err != nil {
			s.writeError(c, err)
			return
		}
	}

	delta, updates, err := s.store.PreviewShift(c.Request.Context(), id, end, originalEnd)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if updates == nil {
		updates = []task.TimeUpdate{}
	}
	c.JSON(http.StatusOK, shiftPreviewResponse{Delta: delta, Updates: updates})
}

func (s *Server) deleteTask(c *gin.Context) {
	id, ok := s.pathID(c)
	if !ok {
		return
	}
	if err := s.store.Delete(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) deleteAllTasks(c *gin.Context) {
	if err := s.store.DeleteAll(c.Request.Context()); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) checkOverlap(c *gin.Context) {
	start, end := c.Query("start"), c.Query("end")
	for _, v := range []string{start, end} {
		if err := task.ValidateTime(v); err != nil {
			s.writeError(c, err)
			return
		}
	}

	var excludeID *int64
	if raw := c.Query("exclude_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid exclude_id"})
			return
		}
		excludeID = &id
	}

	conflicts, err := s.store.Conflicts(c.Request.Context(), start, end, excludeID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if conflicts == nil {
		conflicts = []*task.Task{}
	}
	c.JSON(http.StatusOK, overlapResponse{Overlap: len(conflicts) > 0, Conflicts: conflicts})
}

// bindTask decodes and validates a task body, writing the error response on failure.
func (s *Server) bindTask(c *gin.Context) (*task.Task, bool) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return nil, false
	}
	t, err := task.New(req.Name, req.Start, req.End, s.colorOr(req.Color))
	if err != nil {
		s.writeError(c, err)
		return nil, false
	}
	return t, true
}

func (s *Server) colorOr(color string) string {
	if color == "" {
		return s.defaultColor
	}
	return color
}

func (s *Server) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid task id"})
		return 0, false
	}
	return id, true
}

// writeError maps err to a status code. Storage details are logged, not returned.
func (s *Server) writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, task.ErrTimeBlockOverlap):
		status = http.StatusConflict
	case errors.Is(err, task.ErrTaskNotFound):
		status = http.StatusNotFound
	case errors.Is(err, task.ErrEmptyName),
		errors.Is(err, task.ErrInvalidTimeFormat),
		errors.Is(err, task.ErrEndBeforeStart),
		errors.Is(err, task.ErrInvalidColor):
		status = http.StatusBadRequest
	case errors.Is(err, schedule.ErrStorage):
		c.JSON(status, errorResponse{Error: "storage failure"})
		return
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	c.JSON(status, errorResponse{Error: msg})
}
