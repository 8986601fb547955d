package http

import (
	"time"

	"github.com/transcendia/gamehub/internal/user/domain"
)

// userPayload is the public shape of a user record.
type userPayload struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserPayload(u domain.User) userPayload {
	return userPayload{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
	}
}

// publicUserPayload drops the email for users other than the caller.
func publicUserPayload(u domain.User) userPayload {
	p := toUserPayload(u)
	p.Email = ""
	return p
}
