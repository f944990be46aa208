package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleoauth "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	portssvc "github.com/sunucar/sunucar_backend/internal/core/ports/services"
	"github.com/sunucar/sunucar_backend/internal/middleware"
	"github.com/sunucar/sunucar_backend/internal/platform/config"
	"github.com/sunucar/sunucar_backend/internal/utils"
)

const (
	providerGoogle   = "google"
	oauthStateCookie = "oauth_state"
)

// GoogleOAuthHandler implements the Google sign-in flow: redirect to the
// consent screen, then exchange the callback code for the user's profile and
// issue an application JWT.
type GoogleOAuthHandler struct {
	oauthConfig *oauth2.Config
	userService portssvc.UserSvcFacade
	authHandler *AuthHandler
}

// NewGoogleOAuthHandler creates a new instance of GoogleOAuthHandler.
func NewGoogleOAuthHandler(cfg *config.Config, us portssvc.UserSvcFacade, ah *AuthHandler) *GoogleOAuthHandler {
	return &GoogleOAuthHandler{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{googleoauth.UserinfoEmailScope, googleoauth.UserinfoProfileScope},
			Endpoint:     google.Endpoint,
		},
		userService: us,
		authHandler: ah,
	}
}

// registerGoogleOAuthRoutes registers the Google OAuth routes under the auth group.
func registerGoogleOAuthRoutes(rg *gin.RouterGroup, cfg *config.Config, us portssvc.UserSvcFacade, ah *AuthHandler) {
	h := NewGoogleOAuthHandler(cfg, us, ah)
	googleRoutes := rg.Group("/google")
	{
		googleRoutes.GET("/login", h.LoginGoogle)
		googleRoutes.GET("/callback", h.CallbackGoogle)
	}
}

// LoginGoogle godoc
// @Summary Start Google sign-in
// @Description Redirects the browser to the Google consent screen with a CSRF state cookie.
// @Tags auth
// @Success 307
// @Failure 500 {object} ErrorResponse
// @Router /auth/google/login [get]
func (h *GoogleOAuthHandler) LoginGoogle(c *gin.Context) {
	state, err := utils.GenerateSecureRandomString(32)
	if err != nil {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Error("Failed to generate OAuth state", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to start Google sign-in"})
		return
	}

	c.SetCookie(oauthStateCookie, state, 600, "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, h.oauthConfig.AuthCodeURL(state))
}

// CallbackGoogle godoc
// @Summary Complete Google sign-in
// @Description Validates the state, exchanges the authorization code, upserts the user, and returns a JWT.
// @Tags auth
// @Produce json
// @Param state query string true "CSRF state"
// @Param code query string true "Authorization code"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/google/callback [get]
func (h *GoogleOAuthHandler) CallbackGoogle(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)

	expectedState, err := c.Cookie(oauthStateCookie)
	if err != nil || expectedState == "" || c.Query("state") != expectedState {
		logger.Warn("OAuth state mismatch on Google callback")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid OAuth state"})
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Authorization code is required"})
		return
	}

	token, err := h.oauthConfig.Exchange(ctx, code)
	if err != nil {
		logger.Error("Failed to exchange authorization code with Google", slog.String("error", err.Error()))
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired authorization code"})
		return
	}

	oauthService, err := googleoauth.NewService(ctx, option.WithTokenSource(h.oauthConfig.TokenSource(ctx, token)))
	if err != nil {
		logger.Error("Failed to build Google userinfo client", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch Google profile"})
		return
	}

	userinfo, err := oauthService.Userinfo.Get().Do()
	if err != nil {
		logger.Error("Failed to fetch Google userinfo", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch Google profile"})
		return
	}
	if userinfo.Email == "" {
		logger.Error("Google userinfo missing email")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Google profile is missing an email address"})
		return
	}

	user, err := h.userService.AuthenticateExternal(ctx, providerGoogle, userinfo.Email, userinfo.Name)
	if err != nil {
		logger.Error("Failed to upsert Google user", slog.String("error", err.Error()), slog.String("email", userinfo.Email))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to process user authentication"})
		return
	}

	resp, err := h.authHandler.issueToken(user.UserID)
	if err != nil {
		logger.Error("Failed to sign JWT token", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate token"})
		return
	}

	logger.Info("User authenticated via Google", slog.String("user_id", user.UserID))
	c.JSON(http.StatusOK, resp)
}
