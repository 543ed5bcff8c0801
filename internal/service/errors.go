package service

import (
	"database/sql"
	"errors"
	"fmt"

	"lector/backend/internal/feedparse"
	"lector/backend/internal/fetch"
	"lector/backend/internal/model"
	"lector/backend/internal/urlnorm"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrConflict  = errors.New("conflict")
	ErrInvalid   = errors.New("invalid")
	ErrFeedFetch = errors.New("feed fetch failed")
)

// CodeUnreachable is the catch-all error code for fetch failures that do not
// classify as a timeout, a transport error, or an HTTP status.
const CodeUnreachable = "unreachable"

const (
	CodeInvalidURL = "invalid_url"
	CodeInvalidXML = "invalid_xml"
)

// FeedConflictError is returned when the normalized feed URL is already
// subscribed; it carries the existing feed so callers can point at it.
type FeedConflictError struct {
	ExistingFeed model.Feed
}

func (e *FeedConflictError) Error() string {
	return "feed already exists"
}

func (e *FeedConflictError) Is(target error) bool {
	return target == ErrConflict
}

// InvalidFolderIDsError is returned when a membership change names folders
// that do not exist for the owner.
type InvalidFolderIDsError struct {
	FolderIDs []int64
}

func (e *InvalidFolderIDsError) Error() string {
	return fmt.Sprintf("unknown folder ids: %v", e.FolderIDs)
}

func (e *InvalidFolderIDsError) Is(target error) bool {
	return target == ErrInvalid
}

// ErrorCode maps a fetch-or-parse failure to the stable code recorded on the
// feed and reported to clients.
func ErrorCode(err error) string {
	var fetchErr *fetch.Error
	if errors.As(err, &fetchErr) {
		return fetchErr.Code
	}
	if errors.Is(err, feedparse.ErrInvalidFeed) {
		return CodeInvalidXML
	}
	if errors.Is(err, urlnorm.ErrInvalidURL) {
		return CodeInvalidURL
	}
	return CodeUnreachable
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
