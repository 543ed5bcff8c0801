package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"lector/backend/internal/model"
	"lector/backend/internal/repository"
	"lector/backend/internal/service"
)

type ItemHandler struct {
	service service.ItemService
}

type itemQuery struct {
	FeedID   *string `query:"feedId"`
	FolderID *string `query:"folderId"`
	Unread   bool    `query:"unread"`
	Limit    int     `query:"limit"`
	Offset   int     `query:"offset"`
}

type updateReadRequest struct {
	Read bool `json:"read"`
}

type markAllReadRequest struct {
	FeedID   *string `json:"feedId"`
	FolderID *string `json:"folderId"`
}

type itemResponse struct {
	ID          string  `json:"id"`
	FeedID      string  `json:"feedId"`
	Title       *string `json:"title,omitempty"`
	URL         *string `json:"url,omitempty"`
	Content     *string `json:"content,omitempty"`
	Author      *string `json:"author,omitempty"`
	PublishedAt *string `json:"publishedAt,omitempty"`
	Read        bool    `json:"read"`
	CreatedAt   string  `json:"createdAt"`
}

type unreadCountResponse struct {
	FeedID string `json:"feedId"`
	Count  int    `json:"count"`
}

func NewItemHandler(service service.ItemService) *ItemHandler {
	return &ItemHandler{service: service}
}

func (h *ItemHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/items", h.List)
	g.GET("/items/:id", h.Get)
	g.PATCH("/items/:id/read", h.UpdateReadStatus)
	g.POST("/items/mark-read", h.MarkAllRead)
	g.GET("/items/unread-counts", h.UnreadCounts)
}

func (h *ItemHandler) List(c echo.Context) error {
	var query itemQuery
	if err := c.Bind(&query); err != nil {
		return Error(c, http.StatusBadRequest, "invalid request")
	}
	feedID, err := parseOptionalID(query.FeedID)
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid feed ID")
	}
	folderID, err := parseOptionalID(query.FolderID)
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid folder ID")
	}

	items, err := h.service.List(c.Request().Context(), repository.ItemListFilter{
		OwnerID:    ownerID(c),
		FeedID:     feedID,
		FolderID:   folderID,
		UnreadOnly: query.Unread,
		Limit:      query.Limit,
		Offset:     query.Offset,
	})
	if err != nil {
		return writeServiceError(c, err)
	}

	response := make([]itemResponse, 0, len(items))
	for _, item := range items {
		response = append(response, toItemResponse(item))
	}
	return c.JSON(http.StatusOK, response)
}

func (h *ItemHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid request")
	}

	item, err := h.service.Get(c.Request().Context(), ownerID(c), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toItemResponse(item))
}

func (h *ItemHandler) UpdateReadStatus(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid request")
	}
	var req updateReadRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid request")
	}
	if err := h.service.SetRead(c.Request().Context(), ownerID(c), id, req.Read); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ItemHandler) MarkAllRead(c echo.Context) error {
	var req markAllReadRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid request")
	}
	feedID, err := parseOptionalID(req.FeedID)
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid feed ID")
	}
	folderID, err := parseOptionalID(req.FolderID)
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid folder ID")
	}

	if err := h.service.MarkAllRead(c.Request().Context(), ownerID(c), feedID, folderID); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ItemHandler) UnreadCounts(c echo.Context) error {
	counts, err := h.service.UnreadCounts(c.Request().Context(), ownerID(c))
	if err != nil {
		return writeServiceError(c, err)
	}

	response := make([]unreadCountResponse, 0, len(counts))
	for _, count := range counts {
		response = append(response, unreadCountResponse{FeedID: formatID(count.FeedID), Count: count.Count})
	}
	return c.JSON(http.StatusOK, response)
}

func toItemResponse(item model.FeedItem) itemResponse {
	resp := itemResponse{
		ID:        formatID(item.ID),
		FeedID:    formatID(item.FeedID),
		Title:     item.Title,
		URL:       item.URL,
		Content:   item.Content,
		Author:    item.Author,
		Read:      item.Read(),
		CreatedAt: item.CreatedAt.Format(time.RFC3339),
	}
	if item.PublishedAt != nil {
		published := item.PublishedAt.Format(time.RFC3339)
		resp.PublishedAt = &published
	}
	return resp
}
