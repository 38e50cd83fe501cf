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

// PaymentController handles contribution submission and the admin review queue
type PaymentController struct {
	payments *services.PaymentService
	logger   *log.Logger
}

func NewPaymentController(payments *services.PaymentService) *PaymentController {
	return &PaymentController{
		payments: payments,
		logger:   log.New(os.Stdout, "[PAYMENT] ", log.LstdFlags),
	}
}

// Submit records a member's monthly contribution with its receipt image
func (pc *PaymentController) Submit(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid authentication token",
		})
	}

	file, err := c.FormFile("receipt")
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Receipt image is required",
		})
	}
	if !utils.IsValidImageFile(file) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Receipt must be a jpg, jpeg, png or gif image",
		})
	}

	receiptPath, err := utils.SaveUploadedImage(file, "receipts")
	if err != nil {
		pc.logger.Printf("Failed to save receipt: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to save receipt image",
		})
	}

	go func(path string) {
		if _, err := utils.GenerateImageThumbnail(path); err != nil {
			pc.logger.Printf("Failed to generate receipt thumbnail: %v", err)
		}
	}(receiptPath)

	note := utils.SanitizeInput(c.FormValue("note"))

	txn, err := pc.payments.Submit(ctx, userID, receiptPath, note)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Payment submitted and awaiting review",
		Data:    txn,
	})
}

// GetMyPayments returns the member's payment history for the current cycle
func (pc *PaymentController) GetMyPayments(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid authentication token",
		})
	}

	txns, err := pc.payments.ListForUser(ctx, userID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payments retrieved successfully",
		Data:    txns,
	})
}

// GetPending returns the admin review queue
func (pc *PaymentController) GetPending(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	txns, err := pc.payments.ListPending(ctx)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Pending payments retrieved successfully",
		Data:    txns,
	})
}

// GetAll returns every payment across members
func (pc *PaymentController) GetAll(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	txns, err := pc.payments.ListAll(ctx)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payments retrieved successfully",
		Data:    txns,
	})
}

// Decide settles a pending payment with the admin's verdict
func (pc *PaymentController) Decide(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	txnID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid transaction ID",
		})
	}

	var req models.DecisionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Status must be either 'approved' or 'rejected'",
		})
	}

	approve := req.Status == "approved"
	note := utils.SanitizeInput(req.Note)

	txn, err := pc.payments.Decide(ctx, txnID, approve, note)
	if err != nil {
		return errorResponse(c, err)
	}

	message := "Payment rejected"
	if approve {
		message = "Payment approved"
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: message,
		Data:    txn,
	})
}
