// backend/src/handlers/auth_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/username/finsight/backend/src/config"
	"github.com/username/finsight/backend/src/database"
	"github.com/username/finsight/backend/src/logger"
	"github.com/username/finsight/backend/src/model"
	"github.com/username/finsight/backend/src/security"
	"github.com/username/finsight/backend/src/utils"
)

var googleOauthConfig *oauth2.Config

func InitializeGoogleOAuthConfig() {
	googleOauthConfig = &oauth2.Config{
		RedirectURL:  config.Cfg.GoogleRedirectURL,
		ClientID:     config.Cfg.GoogleClientID,
		ClientSecret: config.Cfg.GoogleClientSecret,
		Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
		Endpoint:     google.Endpoint,
	}
}

// AuthHandler owns login, logout and session issuance. Identity is delegated
// to Google; no local credentials exist.
type AuthHandler struct {
	authService *security.AuthService
}

func NewAuthHandler(authService *security.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	url := googleOauthConfig.AuthCodeURL(config.Cfg.OAuthStateString)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if r.FormValue("state") != config.Cfg.OAuthStateString {
		logger.L.Warn("Invalid OAuth state from Google callback")
		h.redirectWithError(w, r, "invalid_state")
		return
	}

	code := r.FormValue("code")
	token, err := googleOauthConfig.Exchange(context.Background(), code)
	if err != nil {
		logger.L.Error("Failed to exchange code for token", "error", err)
		h.redirectWithError(w, r, "token_exchange_failed")
		return
	}

	response, err := http.Get("https://www.googleapis.com/oauth2/v2/userinfo?access_token=" + token.AccessToken)
	if err != nil {
		logger.L.Error("Failed to get user info from Google", "error", err)
		h.redirectWithError(w, r, "userinfo_failed")
		return
	}
	defer response.Body.Close()

	contents, err := io.ReadAll(response.Body)
	if err != nil {
		logger.L.Error("Failed to read user info response body", "error", err)
		h.redirectWithError(w, r, "userinfo_read_failed")
		return
	}

	var googleUser struct {
		ID         string `json:"id"`
		Email      string `json:"email"`
		Verified   bool   `json:"verified_email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
		Picture    string `json:"picture"`
	}
	if err := json.Unmarshal(contents, &googleUser); err != nil {
		logger.L.Error("Failed to unmarshal Google user info", "error", err)
		h.redirectWithError(w, r, "userinfo_parse_failed")
		return
	}

	if !googleUser.Verified {
		h.redirectWithError(w, r, "email_not_verified_by_google")
		return
	}

	user, err := model.UpsertUserByGoogleID(database.DB,
		googleUser.ID, googleUser.Email, googleUser.GivenName, googleUser.FamilyName, googleUser.Picture)
	if err != nil {
		logger.L.Error("Failed to upsert Google user", "error", err)
		h.redirectWithError(w, r, "user_creation_failed")
		return
	}

	appToken, err := h.authService.GenerateToken(fmt.Sprintf("%d", user.ID))
	if err != nil {
		logger.L.Error("Failed to generate app token for Google user", "userID", user.ID, "error", err)
		h.redirectWithError(w, r, "token_generation_failed")
		return
	}
	refreshToken, err := h.authService.GenerateRefreshToken()
	if err != nil {
		logger.L.Error("Failed to generate refresh token", "userID", user.ID, "error", err)
		h.redirectWithError(w, r, "token_generation_failed")
		return
	}

	expiresAt := time.Now().Add(config.Cfg.AccessTokenExpiry)
	if err := model.CreateSession(database.DB, user.ID, appToken, refreshToken, expiresAt); err != nil {
		logger.L.Error("Failed to persist session", "userID", user.ID, "error", err)
		h.redirectWithError(w, r, "session_creation_failed")
		return
	}

	userJSON, err := json.Marshal(user)
	if err != nil {
		logger.L.Error("Failed to marshal user object for frontend", "userID", user.ID, "error", err)
		h.redirectWithError(w, r, "user_data_build_failed")
		return
	}

	logger.L.Info("Google login successful", "userID", user.ID)
	redirectURL := fmt.Sprintf("%s/auth/google/callback?token=%s&user=%s",
		config.Cfg.FrontendBaseURL,
		appToken,
		url.QueryEscape(string(userJSON)))
	http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) redirectWithError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, config.Cfg.FrontendBaseURL+"/signin?error="+code, http.StatusTemporaryRedirect)
}

// LogoutHandler deletes the server-side session for the presented token.
func (h *AuthHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	tokenString := bearerToken(r)
	if tokenString == "" {
		utils.SendJSONError(w, "Authorization header required", http.StatusUnauthorized)
		return
	}
	if err := model.DeleteSessionByToken(database.DB, tokenString); err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to delete session on logout", "error", err)
		utils.SendJSONError(w, "Failed to log out", http.StatusInternalServerError)
		return
	}
	logger.InfoFromContext(r.Context(), "User logged out")
	utils.SendJSONResponse(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// HandleGetCurrentUser returns the authenticated user's profile.
func (h *AuthHandler) HandleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	user, err := model.GetUserByID(database.DB, userID)
	if err != nil {
		utils.SendJSONError(w, "User not found", http.StatusNotFound)
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, user)
}
