package controllers

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AOladipo/thriftcircle_backend/models"
	"github.com/AOladipo/thriftcircle_backend/services"
	"github.com/AOladipo/thriftcircle_backend/utils"
)

// WithdrawalController handles payout processing and member confirmations
type WithdrawalController struct {
	withdrawals *services.WithdrawalService
	logger      *log.Logger
}

func NewWithdrawalController(withdrawals *services.WithdrawalService) *WithdrawalController {
	return &WithdrawalController{
		withdrawals: withdrawals,
		logger:      log.New(os.Stdout, "[WITHDRAWAL] ", log.LstdFlags),
	}
}

// Process records a payout the admin has transferred to an eligible member.
// The transfer proof image is optional.
func (wc *WithdrawalController) Process(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	targetUserID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID",
		})
	}

	receiptPath := ""
	if file, err := c.FormFile("receipt"); err == nil {
		if !utils.IsValidImageFile(file) {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Transfer proof must be a jpg, jpeg, png or gif image",
			})
		}
		receiptPath, err = utils.SaveUploadedImage(file, "payouts")
		if err != nil {
			wc.logger.Printf("Failed to save transfer proof: %v", err)
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to save transfer proof image",
			})
		}
	}

	message := utils.SanitizeInput(c.FormValue("message"))

	withdrawal, err := wc.withdrawals.Process(ctx, targetUserID, receiptPath, message)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Withdrawal processed and awaiting member confirmation",
		Data:    withdrawal,
	})
}

// Confirm records whether the member received the payout
func (wc *WithdrawalController) Confirm(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid authentication token",
		})
	}

	withdrawalID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid withdrawal ID",
		})
	}

	var req models.ConfirmWithdrawalRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "The received field is required",
		})
	}

	withdrawal, err := wc.withdrawals.Confirm(ctx, userID, withdrawalID, *req.Received)
	if err != nil {
		return errorResponse(c, err)
	}

	message := "Report recorded. An admin will review the payout."
	if withdrawal.Confirmed {
		message = "Payout confirmed. Your new savings cycle has started."
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: message,
		Data:    withdrawal,
	})
}

// GetMyWithdrawals returns the member's payout history
func (wc *WithdrawalController) GetMyWithdrawals(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid authentication token",
		})
	}

	withdrawals, err := wc.withdrawals.ListForUser(ctx, userID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Withdrawals retrieved successfully",
		Data:    withdrawals,
	})
}

// GetAll returns every withdrawal across members
func (wc *WithdrawalController) GetAll(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	withdrawals, err := wc.withdrawals.ListAll(ctx)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Withdrawals retrieved successfully",
		Data:    withdrawals,
	})
}
