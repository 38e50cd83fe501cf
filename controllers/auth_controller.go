package controllers

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/AOladipo/thriftcircle_backend/middleware"
	"github.com/AOladipo/thriftcircle_backend/models"
	"github.com/AOladipo/thriftcircle_backend/repositories"
	"github.com/AOladipo/thriftcircle_backend/services"
	"github.com/AOladipo/thriftcircle_backend/utils"
)

// referralCodeAttempts bounds the retry loop when a freshly generated code
// collides with an existing one.
const referralCodeAttempts = 5

// AuthController contains registration and login logic
type AuthController struct {
	users    repositories.UserRepository
	notifier *services.NotificationService
	logger   *log.Logger
}

// NewAuthController creates a new auth controller
func NewAuthController(users repositories.UserRepository, notifier *services.NotificationService) *AuthController {
	return &AuthController{
		users:    users,
		notifier: notifier,
		logger:   log.New(os.Stdout, "[AUTH] ", log.LstdFlags),
	}
}

// Register creates a new member account and returns it with a token pair
func (ac *AuthController) Register(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	req.FullName = utils.SanitizeInput(req.FullName)

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid email format",
		})
	}

	phone, err := utils.SanitizePhone(req.Phone)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid phone number format",
		})
	}

	exists, err := ac.users.ExistsByEmailOrPhone(ctx, email, phone)
	if err != nil {
		ac.logger.Printf("Failed to check for existing user: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process registration",
		})
	}
	if exists {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "An account with this email or phone number already exists",
		})
	}

	// A supplied referral code must belong to an existing member. The
	// canonical casing from the referrer's record is what gets stored.
	referredBy := ""
	if code := strings.ToUpper(strings.TrimSpace(req.ReferralCode)); code != "" {
		referrer, err := ac.users.FindByReferralCode(ctx, code)
		if err == repositories.ErrNotFound {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid referral code",
			})
		}
		if err != nil {
			ac.logger.Printf("Failed to look up referral code: %v", err)
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to process registration",
			})
		}
		referredBy = referrer.ReferralCode
	}

	referralCode, err := ac.generateUniqueReferralCode(ctx, req.FullName)
	if err != nil {
		ac.logger.Printf("Failed to generate referral code: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process registration",
		})
	}

	user := &models.User{
		FullName:     req.FullName,
		Email:        email,
		Phone:        phone,
		ReferralCode: referralCode,
		ReferredBy:   referredBy,
		BankDetails: models.BankDetails{
			BankName:      utils.SanitizeInput(req.BankName),
			AccountNumber: utils.SanitizeInput(req.AccountNumber),
			AccountName:   utils.SanitizeInput(req.AccountName),
		},
		FCMToken:    req.FCMToken,
		CycleNumber: 1,
	}

	if err := ac.users.Insert(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "An account with this email or phone number already exists",
			})
		}
		ac.logger.Printf("Failed to insert user: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create account",
		})
	}

	token, refreshToken, err := middleware.GenerateJWT(user.ID.Hex(), user.Email, user.UserType())
	if err != nil {
		ac.logger.Printf("Failed to generate tokens: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Account created but token generation failed. Please log in.",
		})
	}

	ac.notifier.NotifyAdmins("New member joined",
		user.FullName+" registered with "+user.Email,
		services.EventMemberJoined, map[string]interface{}{
			"userId": user.ID.Hex(),
		})

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Registration successful",
		Data: models.AuthData{
			Token:        token,
			RefreshToken: refreshToken,
			User:         user,
		},
	})
}

// generateUniqueReferralCode retries generation until the code is unused
func (ac *AuthController) generateUniqueReferralCode(ctx context.Context, fullName string) (string, error) {
	var lastErr error
	for i := 0; i < referralCodeAttempts; i++ {
		code, err := utils.GenerateReferralCode(fullName)
		if err != nil {
			lastErr = err
			continue
		}
		taken, err := ac.users.ReferralCodeExists(ctx, code)
		if err != nil {
			lastErr = err
			continue
		}
		if !taken {
			return code, nil
		}
	}
	if lastErr == nil {
		lastErr = repositories.ErrNotFound
	}
	return "", lastErr
}

// Login resolves the member by email and issues a fresh token pair
func (ac *AuthController) Login(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid email format",
		})
	}

	user, err := ac.users.FindByEmail(ctx, email)
	if err == repositories.ErrNotFound {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "No account found for this email",
		})
	}
	if err != nil {
		ac.logger.Printf("Failed to find user: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process login",
		})
	}

	if req.FCMToken != "" && req.FCMToken != user.FCMToken {
		if err := ac.users.UpdateFCMToken(ctx, user.ID, req.FCMToken); err != nil {
			ac.logger.Printf("Failed to update FCM token for %s: %v", user.ID.Hex(), err)
		}
	}

	token, refreshToken, err := middleware.GenerateJWT(user.ID.Hex(), user.Email, user.UserType())
	if err != nil {
		ac.logger.Printf("Failed to generate tokens: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to process login",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data: models.AuthData{
			Token:        token,
			RefreshToken: refreshToken,
			User:         user,
		},
	})
}

// Logout blacklists the presented token until its natural expiry
func (ac *AuthController) Logout(c echo.Context) error {
	userToken := c.Get("user")
	if userToken == nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "No token found",
		})
	}

	token, ok := userToken.(*jwt.Token)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token type",
		})
	}

	claims, ok := token.Claims.(*middleware.JwtCustomClaims)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token claims",
		})
	}

	tokenExpiry := time.Now().Add(24 * time.Hour)
	if claims.ExpiresAt > 0 {
		tokenExpiry = time.Unix(claims.ExpiresAt, 0)
	}
	middleware.BlacklistToken(token.Raw, tokenExpiry)

	ac.logger.Printf("User logout - UserID: %s, Email: %s, IP: %s",
		claims.UserID, claims.Email, c.RealIP())

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Logout successful",
	})
}

// Me returns the authenticated user's record
func (ac *AuthController) Me(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid authentication token",
		})
	}

	user, err := ac.users.FindByID(ctx, userID)
	if err == repositories.ErrNotFound {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	}
	if err != nil {
		ac.logger.Printf("Failed to load user: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load user",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "User retrieved successfully",
		Data:    user,
	})
}
