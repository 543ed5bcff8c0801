package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"lector/backend/internal/logger"
	"lector/backend/internal/service"
)

type RefreshHandler struct {
	refresh service.RefreshService
	tasks   service.RefreshTaskService
}

type refreshStartedResponse struct {
	TaskID string `json:"taskId"`
	Status string `json:"status"`
}

type refreshCancelledResponse struct {
	Cancelled bool `json:"cancelled"`
}

type feedOutcomeResponse struct {
	FeedID       string `json:"feedId"`
	FeedURL      string `json:"feedUrl"`
	Status       string `json:"status"`
	NotModified  bool   `json:"notModified,omitempty"`
	NewItemCount int    `json:"newItemCount"`
	ErrorCode    string `json:"errorCode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

func NewRefreshHandler(refresh service.RefreshService, tasks service.RefreshTaskService) *RefreshHandler {
	return &RefreshHandler{refresh: refresh, tasks: tasks}
}

func (h *RefreshHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/refresh", h.Start)
	g.GET("/refresh/status", h.Status)
	g.POST("/refresh/cancel", h.Cancel)
	g.POST("/feeds/:id/refresh", h.RefreshFeed)
}

// Start kicks off a background refresh of all the owner's feeds and returns
// immediately with a task id to poll.
func (h *RefreshHandler) Start(c echo.Context) error {
	owner := ownerID(c)
	taskID, taskCtx := h.tasks.Start(owner)

	go func() {
		summary, err := h.refresh.RefreshAllWithProgress(taskCtx, owner, func(done, total int, feedURL string) {
			h.tasks.Update(owner, taskID, done, total, feedURL)
		})
		if err != nil {
			logger.Error("background refresh failed", "owner", owner, "error", err)
			h.tasks.Fail(owner, taskID, err)
			return
		}
		h.tasks.Complete(owner, taskID, summary)
	}()

	return c.JSON(http.StatusAccepted, refreshStartedResponse{TaskID: taskID, Status: "running"})
}

func (h *RefreshHandler) Status(c echo.Context) error {
	task := h.tasks.Get(ownerID(c))
	if task == nil {
		return c.JSON(http.StatusOK, map[string]string{"status": "idle"})
	}
	return c.JSON(http.StatusOK, task)
}

func (h *RefreshHandler) Cancel(c echo.Context) error {
	cancelled := h.tasks.Cancel(ownerID(c))
	return c.JSON(http.StatusOK, refreshCancelledResponse{Cancelled: cancelled})
}

// RefreshFeed refreshes a single feed synchronously.
func (h *RefreshHandler) RefreshFeed(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid request")
	}

	outcome, err := h.refresh.RefreshFeed(c.Request().Context(), ownerID(c), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toFeedOutcomeResponse(outcome))
}

func toFeedOutcomeResponse(outcome service.FeedOutcome) feedOutcomeResponse {
	return feedOutcomeResponse{
		FeedID:       formatID(outcome.FeedID),
		FeedURL:      outcome.FeedURL,
		Status:       outcome.Status,
		NotModified:  outcome.NotModified,
		NewItemCount: outcome.NewItemCount,
		ErrorCode:    outcome.ErrorCode,
		ErrorMessage: outcome.ErrorMessage,
	}
}
