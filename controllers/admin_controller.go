package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AOladipo/thriftcircle_backend/models"
	"github.com/AOladipo/thriftcircle_backend/repositories"
	"github.com/AOladipo/thriftcircle_backend/services"
)

// AdminController covers member administration and the savings settings
type AdminController struct {
	users    repositories.UserRepository
	configs  repositories.ConfigRepository
	notifier *services.NotificationService
	logger   *log.Logger
}

func NewAdminController(
	users repositories.UserRepository,
	configs repositories.ConfigRepository,
	notifier *services.NotificationService,
) *AdminController {
	return &AdminController{
		users:    users,
		configs:  configs,
		notifier: notifier,
		logger:   log.New(os.Stdout, "[ADMIN] ", log.LstdFlags),
	}
}

// ListUsers returns every member with their live schedule and eligibility
func (ac *AdminController) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := ac.configs.Get(ctx)
	if err != nil {
		ac.logger.Printf("Failed to load config: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load users",
		})
	}

	members, err := ac.users.FindMembers(ctx)
	if err != nil {
		ac.logger.Printf("Failed to load members: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load users",
		})
	}

	now := time.Now()
	data := make([]map[string]interface{}, 0, len(members))
	for i := range members {
		member := &members[i]
		data = append(data, map[string]interface{}{
			"user":                  member,
			"schedule":              services.ComputeNextPayment(cfg, member.LastPaymentDate, now),
			"eligibleForWithdrawal": services.IsEligibleForWithdrawal(member, cfg),
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Users retrieved successfully",
		Data:    data,
	})
}

// VerifyUser marks a member's account as verified
func (ac *AdminController) VerifyUser(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID",
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
			Message: "Failed to verify user",
		})
	}

	if user.IsVerified {
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "User is already verified",
		})
	}

	if err := ac.users.SetVerified(ctx, userID); err != nil {
		ac.logger.Printf("Failed to verify user %s: %v", userID.Hex(), err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to verify user",
		})
	}

	ac.notifier.NotifyUser(userID, "Account verified",
		"Your account has been verified. Welcome to "+companyNameOrDefault(ctx, ac.configs)+".",
		services.EventAccountVerified, nil)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "User verified successfully",
	})
}

// GetConfig returns the savings settings
func (ac *AdminController) GetConfig(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := ac.configs.Get(ctx)
	if err != nil {
		ac.logger.Printf("Failed to load config: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load configuration",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Configuration retrieved successfully",
		Data:    cfg,
	})
}

// UpdateConfig replaces the savings settings and announces the change
func (ac *AdminController) UpdateConfig(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var cfg models.Config
	if err := c.Bind(&cfg); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&cfg); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	if err := ac.configs.Update(ctx, &cfg); err != nil {
		ac.logger.Printf("Failed to update config: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update configuration",
		})
	}

	ac.notifier.Broadcast("Savings settings updated",
		fmt.Sprintf("The monthly contribution is now %.0f.", cfg.MonthlyPaymentAmount),
		services.EventConfigUpdated, map[string]interface{}{
			"monthlyPaymentAmount":        cfg.MonthlyPaymentAmount,
			"penaltyMultiplier":           cfg.PenaltyMultiplier,
			"withdrawalEligibilityMonths": cfg.WithdrawalEligibilityMonths,
		})

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Configuration updated successfully",
		Data:    cfg,
	})
}

func companyNameOrDefault(ctx context.Context, configs repositories.ConfigRepository) string {
	cfg, err := configs.Get(ctx)
	if err != nil || cfg.CompanyName == "" {
		return "ThriftCircle"
	}
	return cfg.CompanyName
}
