package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// ownerKey is where the auth middleware stores the resolved owner id.
const ownerKey = "owner"

func ownerID(c echo.Context) string {
	owner, _ := c.Get(ownerKey).(string)
	return owner
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// parseOptionalID parses a string-encoded id from a request body or query
// parameter; nil input stays nil.
func parseOptionalID(raw *string) (*int64, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(*raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseIDs(raw []string) ([]int64, error) {
	ids := make([]int64, 0, len(raw))
	for _, s := range raw {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func formatIDs(ids []int64) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, formatID(id))
	}
	return out
}
