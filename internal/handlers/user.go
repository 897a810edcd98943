package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"
	_ "time/tzdata" // embedded zoneinfo for timezone validation

	"go.uber.org/zap"

	mw "mindlog/internal/middleware"
	"mindlog/internal/store"
)

type UserHandler struct {
	users store.UserStore
	log   *zap.Logger
}

func NewUserHandler(users store.UserStore, log *zap.Logger) *UserHandler {
	return &UserHandler{users: users, log: log}
}

// GetMe returns the current user's profile
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Get(r.Context(), mw.UserID(r.Context()))
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.log.Error("get user", zap.Error(err))
		http.Error(w, "could not fetch profile", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, ToUserDTO(u))
}

// UpdateMe updates provided fields on the current user's profile
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		AvatarID  *int    `json:"avatar_id"`
		Timezone  *string `json:"timezone"` // IANA name, e.g. Europe/Berlin
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if body.AvatarID != nil && *body.AvatarID < 1 {
		http.Error(w, "invalid avatar_id", http.StatusBadRequest)
		return
	}
	if body.Timezone != nil {
		if _, err := time.LoadLocation(*body.Timezone); err != nil || *body.Timezone == "" {
			http.Error(w, "invalid timezone", http.StatusBadRequest)
			return
		}
	}

	update := store.ProfileUpdate{
		FirstName: body.FirstName,
		LastName:  body.LastName,
		AvatarID:  body.AvatarID,
		Timezone:  body.Timezone,
	}
	if update.Empty() {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := h.users.UpdateProfile(r.Context(), mw.UserID(r.Context()), update); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		h.log.Error("update profile", zap.Error(err))
		http.Error(w, "could not update", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
