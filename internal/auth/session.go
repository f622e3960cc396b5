package auth

import (
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/s/courseStore/internal/config"
)

const (
	SessionName = "session"

	KeyUserID     = "user_id"
	KeyEmail      = "email"
	KeyName       = "name"
	KeyPictureURL = "picture_url"
	KeyState      = "oauth_state"
)

const sessionMaxAge = 86400 * 7

func NewSessionStore(cfg config.SessionConfig) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.Key))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Identity is what the session cookie says about the caller.
type Identity struct {
	UserID     string
	Email      string
	Name       string
	PictureURL string
}

// SessionIdentity reads the signed-in identity, if any.
func SessionIdentity(r *http.Request, store sessions.Store) (Identity, bool) {
	session, err := store.Get(r, SessionName)
	if err != nil {
		return Identity{}, false
	}
	id := Identity{
		UserID:     toString(session.Values[KeyUserID]),
		Email:      toString(session.Values[KeyEmail]),
		Name:       toString(session.Values[KeyName]),
		PictureURL: toString(session.Values[KeyPictureURL]),
	}
	return id, id.Email != ""
}

func toString(v interface{}) string {
	s, _ := v.(string)
	return s
}
