package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"bloodlink/internal/middleware"
	"bloodlink/internal/sqlinline"
)

type sessionRequest struct {
	IDToken string `json:"id_token"`
}

type sessionResponse struct {
	Token string  `json:"token"`
	User  userDTO `json:"user"`
}

type userDTO struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Locale string `json:"locale"`
}

// AuthSession exchanges a verified federated identity token for a platform
// session token plus the user's role. The identity provider stays opaque:
// only the verified claim set is consumed here.
func (a *App) AuthSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.IDToken == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "id_token required")
		return
	}
	if a.GoogleVerifier == nil {
		a.error(w, http.StatusServiceUnavailable, "not_ready", "identity verification is not configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	claims, err := a.GoogleVerifier.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("id token rejected")
		a.error(w, http.StatusUnauthorized, "unauthorized", "invalid identity token")
		return
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	picture, _ := claims["picture"].(string)
	locale, _ := claims["locale"].(string)
	if locale == "" {
		locale = middleware.LocaleFromContext(r.Context())
	}

	row := a.SQL.QueryRow(r.Context(), sqlinline.QUpsertGoogleUser, sub, email, name, picture, locale)
	var userID, role string
	if err := row.Scan(&userID, &role); err != nil {
		a.Logger.Error().Err(err).Msg("upsert user failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to persist user")
		return
	}

	token, err := middleware.SignJWT(a.JWTSecret, middleware.TokenClaims{
		Sub:      userID,
		Email:    email,
		Role:     role,
		Locale:   locale,
		Exp:      time.Now().Add(24 * time.Hour).Unix(),
		Issuer:   "bloodlink",
		Audience: "bloodlink-clients",
	})
	if err != nil {
		a.Logger.Error().Err(err).Msg("sign jwt failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to sign token")
		return
	}

	a.json(w, http.StatusOK, sessionResponse{
		Token: token,
		User:  userDTO{ID: userID, Email: email, Name: name, Role: role, Locale: locale},
	})
}

// Me returns the profile backing the current session token.
func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	row := a.SQL.QueryRow(r.Context(), sqlinline.QSelectUserByID, userID)
	var id, googleSub, email, name, locale, role string
	var createdAt, updatedAt time.Time
	if err := row.Scan(&id, &googleSub, &email, &name, &locale, &role, &createdAt, &updatedAt); err != nil {
		a.error(w, http.StatusNotFound, "not_found", "user not found")
		return
	}
	a.json(w, http.StatusOK, userDTO{ID: id, Email: email, Name: name, Role: role, Locale: locale})
}
