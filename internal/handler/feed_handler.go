package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"lector/backend/internal/model"
	"lector/backend/internal/service"
)

type FeedHandler struct {
	feeds       service.FeedService
	memberships service.MembershipService
}

type subscribeRequest struct {
	URL       string   `json:"url"`
	FolderIDs []string `json:"folderIds"`
	Title     string   `json:"title"`
}

type updateFeedRequest struct {
	Title string `json:"title"`
}

type setFoldersRequest struct {
	FolderIDs []string `json:"folderIds"`
}

type addFoldersRequest struct {
	FolderIDs []string `json:"folderIds"`
}

type discoverRequest struct {
	URL string `json:"url"`
}

type discoverResponse struct {
	Candidates []discoverCandidate `json:"candidates"`
}

type discoverCandidate struct {
	URL    string `json:"url"`
	Method string `json:"method"`
}

type feedResponse struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	CustomTitle     *string  `json:"customTitle,omitempty"`
	URL             string   `json:"url"`
	SiteURL         *string  `json:"siteUrl,omitempty"`
	Description     *string  `json:"description,omitempty"`
	FolderIDs       []string `json:"folderIds"`
	UnreadCount     int      `json:"unreadCount"`
	LastFetchedAt   *string  `json:"lastFetchedAt,omitempty"`
	LastFetchStatus *string  `json:"lastFetchStatus,omitempty"`
	LastErrorCode   *string  `json:"lastErrorCode,omitempty"`
	CreatedAt       string   `json:"createdAt"`
}

type subscribeResponse struct {
	Feed         feedResponse `json:"feed"`
	NewItemCount int          `json:"newItemCount"`
}

func NewFeedHandler(feeds service.FeedService, memberships service.MembershipService) *FeedHandler {
	return &FeedHandler{feeds: feeds, memberships: memberships}
}

func (h *FeedHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/feeds", h.Subscribe)
	g.GET("/feeds", h.List)
	g.GET("/feeds/:id", h.Get)
	g.PUT("/feeds/:id", h.Update)
	g.DELETE("/feeds/:id", h.Unsubscribe)
	g.PUT("/feeds/:id/folders", h.SetFolders)
	g.POST("/feeds/:id/folders", h.AddFolders)
	g.POST("/discover", h.Discover)
}

func (h *FeedHandler) Subscribe(c echo.Context) error {
	var req subscribeRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid request")
	}
	folderIDs, err := parseIDs(req.FolderIDs)
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid folder ID")
	}

	result, err := h.feeds.Subscribe(c.Request().Context(), ownerID(c), req.URL, folderIDs, req.Title)
	if err != nil {
		if code, ok := classifyFetchError(err); ok {
			return writeFetchError(c, code, err)
		}
		return writeServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, subscribeResponse{
		Feed:         toFeedResponse(result.Feed, result.FolderIDs, result.NewItemCount),
		NewItemCount: result.NewItemCount,
	})
}

func (h *FeedHandler) List(c echo.Context) error {
	feeds, err := h.feeds.List(c.Request().Context(), ownerID(c))
	if err != nil {
		return writeServiceError(c, err)
	}

	response := make([]feedResponse, 0, len(feeds))
	for _, feed := range feeds {
		response = append(response, toFeedResponse(feed.Feed, feed.FolderIDs, feed.UnreadCount))
	}
	return c.JSON(http.StatusOK, response)
}

func (h *FeedHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid request")
	}

	feed, err := h.feeds.Get(c.Request().Context(), ownerID(c), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toFeedResponse(feed.Feed, feed.FolderIDs, feed.UnreadCount))
}

func (h *FeedHandler) Update(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid request")
	}
	var req updateFeedRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid request")
	}

	owner := ownerID(c)
	feed, err := h.feeds.Update(c.Request().Context(), owner, id, req.Title)
	if err != nil {
		return writeServiceError(c, err)
	}
	folderIDs, err := h.memberships.ResolveForFeed(c.Request().Context(), owner, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toFeedResponse(feed, folderIDs, 0))
}

func (h *FeedHandler) Unsubscribe(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid request")
	}
	if err := h.feeds.Unsubscribe(c.Request().Context(), ownerID(c), id); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *FeedHandler) SetFolders(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid request")
	}
	var req setFoldersRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid request")
	}
	folderIDs, err := parseIDs(req.FolderIDs)
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid folder ID")
	}

	resolved, err := h.memberships.Set(c.Request().Context(), ownerID(c), id, folderIDs)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string][]string{"folderIds": formatIDs(resolved)})
}

func (h *FeedHandler) AddFolders(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid request")
	}
	var req addFoldersRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid request")
	}
	folderIDs, err := parseIDs(req.FolderIDs)
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid folder ID")
	}

	resolved, err := h.memberships.Add(c.Request().Context(), ownerID(c), id, folderIDs)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string][]string{"folderIds": formatIDs(resolved)})
}

func (h *FeedHandler) Discover(c echo.Context) error {
	var req discoverRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid request")
	}

	result, err := h.feeds.Discover(c.Request().Context(), req.URL)
	if err != nil {
		if code, ok := classifyFetchError(err); ok {
			return writeFetchError(c, code, err)
		}
		return writeServiceError(c, err)
	}

	candidates := make([]discoverCandidate, 0, len(result.Candidates))
	for _, url := range result.Candidates {
		candidates = append(candidates, discoverCandidate{URL: url, Method: result.Methods[url]})
	}
	return c.JSON(http.StatusOK, discoverResponse{Candidates: candidates})
}

func toFeedResponse(feed model.Feed, folderIDs []int64, unread int) feedResponse {
	resp := feedResponse{
		ID:              formatID(feed.ID),
		Title:           feed.DisplayTitle(),
		CustomTitle:     feed.CustomTitle,
		URL:             feed.URL,
		SiteURL:         feed.SiteURL,
		Description:     feed.Description,
		FolderIDs:       formatIDs(folderIDs),
		UnreadCount:     unread,
		LastFetchStatus: feed.LastFetchStatus,
		LastErrorCode:   feed.LastErrorCode,
		CreatedAt:       feed.CreatedAt.Format(time.RFC3339),
	}
	if feed.LastFetchedAt != nil {
		fetched := feed.LastFetchedAt.Format(time.RFC3339)
		resp.LastFetchedAt = &fetched
	}
	return resp
}
