package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"lector/backend/internal/feedparse"
	"lector/backend/internal/fetch"
	"lector/backend/internal/service"
	"lector/backend/internal/urlnorm"
)

type errorResponse struct {
	Error     string  `json:"error"`
	Code      string  `json:"code,omitempty"`
	FolderIDs []int64 `json:"folderIds,omitempty"`
}

func writeServiceError(c echo.Context, err error) error {
	var invalidFolders *service.InvalidFolderIDsError
	if errors.As(err, &invalidFolders) {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Error:     "unknown folder ids",
			Code:      "invalid_folder_ids",
			FolderIDs: invalidFolders.FolderIDs,
		})
	}

	var conflict *service.FeedConflictError
	if errors.As(err, &conflict) {
		return c.JSON(http.StatusConflict, errorResponse{Error: "feed already exists"})
	}

	switch {
	case errors.Is(err, service.ErrInvalid):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: "resource not found"})
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusConflict, errorResponse{Error: "conflict"})
	case errors.Is(err, service.ErrFeedFetch):
		return c.JSON(http.StatusBadGateway, errorResponse{Error: "feed fetch failed"})
	default:
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// classifyFetchError extracts the stable error code of a fetch, parse or URL
// validation failure; ok is false for anything else (storage errors and the
// like), which should be reported as internal.
func classifyFetchError(err error) (string, bool) {
	switch {
	case errors.Is(err, urlnorm.ErrInvalidURL):
		return service.CodeInvalidURL, true
	case errors.Is(err, feedparse.ErrInvalidFeed):
		return service.CodeInvalidXML, true
	}
	var fetchErr *fetch.Error
	if errors.As(err, &fetchErr) {
		return fetchErr.Code, true
	}
	return "", false
}

// writeFetchError reports a subscribe-time fetch or parse failure with its
// classified code so the client can distinguish a bad URL from a dead host.
func writeFetchError(c echo.Context, code string, err error) error {
	status := http.StatusBadGateway
	switch code {
	case service.CodeInvalidURL:
		status = http.StatusBadRequest
	case service.CodeInvalidXML:
		status = http.StatusUnprocessableEntity
	}
	return c.JSON(status, errorResponse{Error: err.Error(), Code: code})
}

// Error returns a JSON error response with the given status and message
func Error(c echo.Context, status int, message string) error {
	return c.JSON(status, errorResponse{Error: message})
}
