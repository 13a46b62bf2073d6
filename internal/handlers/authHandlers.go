package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/markbates/goth/gothic"
	"github.com/rs/zerolog/log"

	"pindrop/internal/models"
	"pindrop/internal/services"
	"pindrop/internal/utils"
)

type AuthHandler struct {
	authService services.AuthService
	otpService  services.OTPService
	userService services.UserService
}

func NewAuthHandler(authService services.AuthService, otpService services.OTPService, userService services.UserService) *AuthHandler {
	return &AuthHandler{authService: authService, otpService: otpService, userService: userService}
}

func (a *AuthHandler) ProviderAuth(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	provider := vars["provider"]

	if provider == "" {
		log.Error().Msg("Provider not specified in URL")
		http.Error(w, "Provider not specified", http.StatusBadRequest)
		return
	}

	log.Info().Str("provider", provider).Msg("Initiating authentication with provider")

	gothic.BeginAuthHandler(w, r)
}

func (a *AuthHandler) ProviderCallback(w http.ResponseWriter, r *http.Request) {
	log.Info().Msg("Provider callback initiated")

	pUser, err := gothic.CompleteUserAuth(w, r)
	if err != nil {
		log.Error().Err(err).Msg("Error completing user authentication")
		http.Redirect(w, r, "/api/auth/error", http.StatusTemporaryRedirect)
		return
	}

	log.Info().Str("email", pUser.Email).Msg("User authenticated with provider, attempting to handle login")
	token, err := a.authService.HandleLogin(r.Context(), pUser)
	if err != nil {
		log.Error().Err(err).Msg("Error handling login after provider authentication")
		http.Redirect(w, r, "/api/auth/error", http.StatusTemporaryRedirect)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "jwt",
		Value:    token,
		HttpOnly: true,
		Path:     "/",
	})

	http.Redirect(w, r, "/api/auth/success", http.StatusTemporaryRedirect)
}

func (a *AuthHandler) AuthSuccess(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Authentication successful! Redirecting..."))
}

func (a *AuthHandler) AuthError(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "Authentication failed. Please try again.", http.StatusBadRequest)
}

// ForgotPasswordHandler sends a reset OTP to the account email. The response
// does not reveal whether the email exists.
func (a *AuthHandler) ForgotPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error().Err(err).Msg("Invalid request body for ForgotPassword")
		utils.SendJSONError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Email == "" {
		utils.SendJSONError(w, "Email is required", http.StatusBadRequest)
		return
	}

	_, err := a.otpService.GenerateOTPForgotPassword(r.Context(), req.Email)
	if err != nil && !errors.Is(err, services.ErrNotFound) {
		log.Error().Err(err).Str("email", req.Email).Msg("Failed to generate password reset OTP")
		utils.SendJSONError(w, "Failed to send reset code", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "If the email exists, a reset code has been sent"})
}

// ResetPasswordHandler verifies the OTP and sets the new password.
func (a *AuthHandler) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error().Err(err).Msg("Invalid request body for ResetPassword")
		utils.SendJSONError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.OTPCode == "" || req.NewPassword == "" {
		utils.SendJSONError(w, "Email, OTP code, and new password are required", http.StatusBadRequest)
		return
	}

	if err := a.otpService.VerifyOTP(r.Context(), req.Email, req.OTPCode); err != nil {
		log.Warn().Err(err).Str("email", req.Email).Msg("OTP verification failed for password reset")
		utils.SendJSONError(w, "Invalid or expired OTP", http.StatusUnauthorized)
		return
	}

	if err := a.userService.ResetPassword(r.Context(), req.Email, req.NewPassword); err != nil {
		statusCode := http.StatusInternalServerError
		if errors.Is(err, services.ErrValidation) {
			statusCode = http.StatusBadRequest
		} else if errors.Is(err, services.ErrNotFound) {
			statusCode = http.StatusNotFound
		}
		utils.SendJSONError(w, err.Error(), statusCode)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Password reset successfully"})
}
