package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"lector/backend/internal/service"
)

type FolderHandler struct {
	service service.FolderService
}

type folderRequest struct {
	Name string `json:"name"`
}

type folderResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	FeedCount int    `json:"feedCount"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func NewFolderHandler(service service.FolderService) *FolderHandler {
	return &FolderHandler{service: service}
}

func (h *FolderHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/folders", h.Create)
	g.GET("/folders", h.List)
	g.PUT("/folders/:id", h.Rename)
	g.DELETE("/folders/:id", h.Delete)
}

func (h *FolderHandler) Create(c echo.Context) error {
	var req folderRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid request")
	}

	folder, err := h.service.Create(c.Request().Context(), ownerID(c), req.Name)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toFolderResponse(service.FolderWithFeedCount{Folder: folder}))
}

func (h *FolderHandler) List(c echo.Context) error {
	folders, err := h.service.List(c.Request().Context(), ownerID(c))
	if err != nil {
		return writeServiceError(c, err)
	}

	response := make([]folderResponse, 0, len(folders))
	for _, folder := range folders {
		response = append(response, toFolderResponse(folder))
	}
	return c.JSON(http.StatusOK, response)
}

func (h *FolderHandler) Rename(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid request")
	}
	var req folderRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid request")
	}

	folder, err := h.service.Rename(c.Request().Context(), ownerID(c), id, req.Name)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toFolderResponse(service.FolderWithFeedCount{Folder: folder}))
}

func (h *FolderHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid request")
	}
	if err := h.service.Delete(c.Request().Context(), ownerID(c), id); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func toFolderResponse(folder service.FolderWithFeedCount) folderResponse {
	return folderResponse{
		ID:        formatID(folder.Folder.ID),
		Name:      folder.Folder.Name,
		FeedCount: folder.FeedCount,
		CreatedAt: folder.Folder.CreatedAt.Format(time.RFC3339),
		UpdatedAt: folder.Folder.UpdatedAt.Format(time.RFC3339),
	}
}
