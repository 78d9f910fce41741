package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/pdcommons/service/internal/auth"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 25
	maxPageSize     = 100
)

// paginationParameters converts ?_page and ?_count query parameters into
// limit/offset values.
func paginationParameters(r *http.Request) (limit, offset int, err error) {
	limit = defaultPageSize
	page := 1

	if raw := r.URL.Query().Get("_count"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return 0, 0, fmt.Errorf("_count must be a positive integer")
		}
		if limit > maxPageSize {
			limit = maxPageSize
		}
	}
	if raw := r.URL.Query().Get("_page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page <= 0 {
			return 0, 0, fmt.Errorf("_page must be a positive integer")
		}
	}
	return limit, (page - 1) * limit, nil
}

// createdByParameter resolves the optional ?createdBy filter. The literal
// "me" resolves to the authenticated user.
func createdByParameter(r *http.Request) (*uuid.UUID, error) {
	raw := r.URL.Query().Get("createdBy")
	if raw == "" {
		return nil, nil
	}
	if raw == "me" {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			return nil, fmt.Errorf("createdBy=me requires an authenticated request")
		}
		return &userID, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("createdBy must be a uuid or \"me\"")
	}
	return &id, nil
}
