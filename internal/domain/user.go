package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is an authenticated principal. The id is the subject claim of the
// identity provider token, so the row can be created lazily on first sight.
type User struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}
