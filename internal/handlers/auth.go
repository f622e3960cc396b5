package handlers

import (
	"net/http"

	"github.com/s/courseStore/internal/auth"
	"github.com/s/courseStore/internal/models"
	"github.com/s/courseStore/internal/storage"
)

func (h *Handler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := auth.NewState()
	if err != nil {
		h.Fail(w, r, err, "Failed to start sign-in")
		return
	}

	session, _ := h.Store.Get(r, auth.SessionName)
	session.Values[auth.KeyState] = state
	if err := session.Save(r, w); err != nil {
		h.Fail(w, r, err, "Failed to start sign-in")
		return
	}

	http.Redirect(w, r, h.Config.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

func (h *Handler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	session, _ := h.Store.Get(r, auth.SessionName)
	expected, _ := session.Values[auth.KeyState].(string)
	if expected == "" || r.URL.Query().Get("state") != expected {
		JSONError(w, "Invalid state", http.StatusUnauthorized)
		return
	}
	delete(session.Values, auth.KeyState)

	info, err := auth.FetchGoogleUser(r.Context(), h.Config, r.URL.Query().Get("code"))
	if err != nil {
		h.Log.Warn("google sign-in failed", "error", err)
		JSONError(w, "Sign-in failed", http.StatusBadRequest)
		return
	}

	user, err := storage.EnsureUser(r.Context(), h.DB, models.User{
		Email: info.Email,
		Name:  info.Name,
		Image: info.Picture,
	}, h.Cfg.AdminEmails)
	if err != nil {
		h.Fail(w, r, err, "Failed to save user")
		return
	}

	session.Values[auth.KeyUserID] = user.ID
	session.Values[auth.KeyEmail] = user.Email
	session.Values[auth.KeyName] = user.Name
	session.Values[auth.KeyPictureURL] = user.Image
	if err := session.Save(r, w); err != nil {
		h.Fail(w, r, err, "Failed to save session")
		return
	}

	h.Log.Info("user signed in", "user_id", user.ID)
	http.Redirect(w, r, h.Cfg.HTTP.AppURL+"/", http.StatusSeeOther)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.Store.Get(r, auth.SessionName)
	session.Options.MaxAge = -1
	session.Save(r, w)

	if r.Method == http.MethodPost {
		WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
		return
	}
	http.Redirect(w, r, h.Cfg.HTTP.AppURL+"/", http.StatusSeeOther)
}
