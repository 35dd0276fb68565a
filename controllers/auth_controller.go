package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/wanjohi/questioner/config"
	"github.com/wanjohi/questioner/middleware"
	"github.com/wanjohi/questioner/models"
	"github.com/wanjohi/questioner/utils"
)

const googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// AuthController handles signup, activation, login, logout, password
// management and Google OAuth.
type AuthController struct {
	db        *gorm.DB
	blacklist *utils.BlacklistStore
	// mail is swappable so tests do not hit SMTP
	mail       func(to, subject, body string) error
	httpClient *http.Client
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(db *gorm.DB, blacklist *utils.BlacklistStore) *AuthController {
	return &AuthController{
		db:         db,
		blacklist:  blacklist,
		mail:       utils.SendMail,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Signup registers an inactive account and emails an activation link.
func (a *AuthController) Signup(ctx *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Nickname string `json:"nickname"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := utils.ValidatePassword(req.Password); err != nil {
		utils.Error(ctx, http.StatusBadRequest, err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	var existing models.User
	if err := a.db.Where("email = ?", email).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusConflict, "The provided email address already has an account.")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to create account")
		return
	}

	user := models.User{
		Name:         utils.SanitizeText(strings.TrimSpace(req.Name)),
		Nickname:     utils.SanitizeText(strings.TrimSpace(req.Nickname)),
		Email:        email,
		PasswordHash: hash,
	}
	if err := a.db.Create(&user).Error; err != nil {
		utils.Error(ctx, http.StatusConflict, "The provided email address already has an account.")
		return
	}

	a.sendActivationMail(&user)
	ctx.JSON(http.StatusCreated, user.Public())
}

// Activate flips an account to active when the emailed token matches.
func (a *AuthController) Activate(ctx *gin.Context) {
	var req struct {
		UID   uint   `json:"uid" binding:"required"`
		Token string `json:"token" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.First(&user, req.UID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, "User account with given email does not exist.")
		return
	}
	if user.IsActive {
		utils.Error(ctx, http.StatusBadRequest, "The user account is already active.")
		return
	}
	if !utils.ConsumeVerificationToken(utils.PurposeActivation, user.ID, req.Token) {
		utils.Error(ctx, http.StatusBadRequest, "invalid or expired activation token")
		return
	}

	if err := a.db.Model(&user).Update("is_active", true).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to activate account")
		return
	}
	ctx.Status(http.StatusNoContent)
}

// ResendActivation sends a fresh activation mail for an inactive account.
func (a *AuthController) ResendActivation(ctx *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	var user models.User
	if err := a.db.Where("email = ?", email).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, "User account with given email does not exist.")
		return
	}
	if user.IsActive {
		utils.Error(ctx, http.StatusBadRequest, "The user account is already active.")
		return
	}
	if !utils.MailCooldownTrySet(user.Email, time.Minute) {
		utils.Error(ctx, http.StatusTooManyRequests, "activation mail already sent, try again shortly")
		return
	}

	a.sendActivationMail(&user)
	ctx.Status(http.StatusNoContent)
}

// Login checks credentials and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	var user models.User
	if err := a.db.Where("email = ?", email).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, "Unable to login with the provided credentials.")
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, "Unable to login with the provided credentials.")
		return
	}
	if !user.IsActive {
		utils.Error(ctx, http.StatusForbidden, "The account is inactive, please activate your account.")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, utils.TokenLifetime)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to issue token")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"token": token, "user": user.Public()})
}

// Logout revokes the presented token until its natural expiry.
func (a *AuthController) Logout(ctx *gin.Context) {
	tokenString := ctx.GetString(middleware.ContextTokenKey)
	if tokenString == "" {
		utils.Error(ctx, http.StatusUnauthorized, "invalid token")
		return
	}
	claims, err := utils.ParseToken(tokenString)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, "invalid token")
		return
	}
	expiresAt := time.Now().Add(utils.TokenLifetime)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := a.blacklist.Revoke(tokenString, expiresAt); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to revoke token")
		return
	}
	ctx.Status(http.StatusNoContent)
}

// ChangePassword replaces the password after checking the current one.
func (a *AuthController) ChangePassword(ctx *gin.Context) {
	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	user, ok := currentUser(a.db, ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		utils.Error(ctx, http.StatusBadRequest, "Incorrect password. Please provide your current password.")
		return
	}
	if err := utils.ValidatePassword(req.NewPassword); err != nil {
		utils.Error(ctx, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to change password")
		return
	}
	if err := a.db.Model(user).Update("password_hash", hash).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to change password")
		return
	}
	ctx.Status(http.StatusNoContent)
}

// ResetPassword emails a reset link to an existing account.
func (a *AuthController) ResetPassword(ctx *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	var user models.User
	if err := a.db.Where("email = ?", email).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, "User account with given email does not exist.")
		return
	}

	token := utils.NewVerificationToken()
	utils.SaveVerificationToken(utils.PurposeReset, user.ID, token, utils.DefaultTokenTTL)
	go func(u models.User, tok string) {
		subject, body := utils.PasswordResetMail(u.Name, u.ID, tok)
		if err := a.mail(u.Email, subject, body); err != nil {
			utils.Sugar.Warnf("reset mail to %s failed: %v", u.Email, err)
		}
	}(user, token)
	ctx.Status(http.StatusNoContent)
}

// ResetPasswordConfirm sets a new password when the emailed token matches.
func (a *AuthController) ResetPasswordConfirm(ctx *gin.Context) {
	var req struct {
		UID         uint   `json:"uid" binding:"required"`
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.First(&user, req.UID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, "User account with given email does not exist.")
		return
	}
	if err := utils.ValidatePassword(req.NewPassword); err != nil {
		utils.Error(ctx, http.StatusBadRequest, err.Error())
		return
	}
	if !utils.ConsumeVerificationToken(utils.PurposeReset, user.ID, req.Token) {
		utils.Error(ctx, http.StatusBadRequest, "invalid or expired reset token")
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to reset password")
		return
	}
	if err := a.db.Model(&user).Update("password_hash", hash).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to reset password")
		return
	}
	ctx.Status(http.StatusNoContent)
}

// Me returns the authenticated user's profile.
func (a *AuthController) Me(ctx *gin.Context) {
	user, ok := currentUser(a.db, ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}
	ctx.JSON(http.StatusOK, user.Public())
}

// GoogleLogin verifies a Google ID token and issues a local JWT.
func (a *AuthController) GoogleLogin(ctx *gin.Context) {
	var req struct {
		IDToken string `json:"id_token" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	info, err := a.verifyGoogleIDToken(ctx.Request.Context(), req.IDToken)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, "invalid google token")
		return
	}

	user, err := a.findOrCreateGoogleUser(info.Email, info.Name, info.Sub)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to login with google")
		return
	}
	token, err := utils.GenerateToken(user.ID, user.Email, utils.TokenLifetime)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to issue token")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"token": token, "user": user.Public()})
}

// GoogleRedirect starts the authorization-code flow with a single-use state.
func (a *AuthController) GoogleRedirect(ctx *gin.Context) {
	state := uuid.NewString()
	utils.SaveState(state, 10*time.Minute)
	ctx.Redirect(http.StatusTemporaryRedirect, a.oauthConfig().AuthCodeURL(state))
}

// GoogleCallback exchanges the code, upserts the user and issues a JWT.
func (a *AuthController) GoogleCallback(ctx *gin.Context) {
	state := ctx.Query("state")
	if state == "" || !utils.ConsumeState(state) {
		utils.Error(ctx, http.StatusBadRequest, "invalid oauth state")
		return
	}
	code := ctx.Query("code")
	if code == "" {
		utils.Error(ctx, http.StatusBadRequest, "missing authorization code")
		return
	}

	reqCtx := context.WithValue(ctx.Request.Context(), oauth2.HTTPClient, a.httpClient)
	tok, err := a.oauthConfig().Exchange(reqCtx, code)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, "oauth exchange failed")
		return
	}

	rawID, _ := tok.Extra("id_token").(string)
	if rawID == "" {
		utils.Error(ctx, http.StatusUnauthorized, "no identity in oauth response")
		return
	}
	info, err := a.verifyGoogleIDToken(ctx.Request.Context(), rawID)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, "invalid google token")
		return
	}

	user, err := a.findOrCreateGoogleUser(info.Email, info.Name, info.Sub)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to login with google")
		return
	}
	token, err := utils.GenerateToken(user.ID, user.Email, utils.TokenLifetime)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to issue token")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"token": token, "user": user.Public()})
}

func (a *AuthController) oauthConfig() *oauth2.Config {
	cfg := config.Get()
	return &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.OAuthRedirectBase + "/api/auth/google/callback",
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}
}

type googleTokenInfo struct {
	Aud           string `json:"aud"`
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
}

// verifyGoogleIDToken checks the token against Google's tokeninfo endpoint
// and validates the audience.
func (a *AuthController) verifyGoogleIDToken(ctx context.Context, idToken string) (*googleTokenInfo, error) {
	endpoint := googleTokenInfoURL + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tokeninfo status %d", resp.StatusCode)
	}

	var info googleTokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	if cfg := config.Get(); cfg.GoogleClientID != "" && info.Aud != cfg.GoogleClientID {
		return nil, errors.New("token audience mismatch")
	}
	if info.Email == "" {
		return nil, errors.New("token carries no email")
	}
	return &info, nil
}

// findOrCreateGoogleUser links a Google identity to a local account, creating
// an active one on first login.
func (a *AuthController) findOrCreateGoogleUser(email, name, providerID string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var user models.User
	err := a.db.Where("email = ?", email).First(&user).Error
	if err == nil {
		updates := map[string]interface{}{"is_active": true}
		if user.Provider == "" {
			updates["provider"] = "google"
			updates["provider_id"] = providerID
		}
		if err := a.db.Model(&user).Updates(updates).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.User{
		Name:       utils.SanitizeText(name),
		Nickname:   utils.SanitizeText(name),
		Email:      email,
		IsActive:   true,
		Provider:   "google",
		ProviderID: providerID,
	}
	if err := a.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *AuthController) sendActivationMail(user *models.User) {
	token := utils.NewVerificationToken()
	utils.SaveVerificationToken(utils.PurposeActivation, user.ID, token, utils.DefaultTokenTTL)
	go func(u models.User, tok string) {
		subject, body := utils.ActivationMail(u.Name, u.ID, tok)
		if err := a.mail(u.Email, subject, body); err != nil {
			utils.Sugar.Warnf("activation mail to %s failed: %v", u.Email, err)
		}
	}(*user, token)
}
