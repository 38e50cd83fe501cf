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
	"github.com/AOladipo/thriftcircle_backend/repositories"
	"github.com/AOladipo/thriftcircle_backend/services"
	"github.com/AOladipo/thriftcircle_backend/utils"
)

const qrCodeSize = 300

// DashboardController serves the member's home screen: cycle progress, the
// live payment schedule, referral earnings and the share QR code.
type DashboardController struct {
	users        repositories.UserRepository
	transactions repositories.TransactionRepository
	configs      repositories.ConfigRepository
	withdrawals  *services.WithdrawalService
	logger       *log.Logger
}

func NewDashboardController(
	users repositories.UserRepository,
	transactions repositories.TransactionRepository,
	configs repositories.ConfigRepository,
	withdrawals *services.WithdrawalService,
) *DashboardController {
	return &DashboardController{
		users:        users,
		transactions: transactions,
		configs:      configs,
		withdrawals:  withdrawals,
		logger:       log.New(os.Stdout, "[DASHBOARD] ", log.LstdFlags),
	}
}

// Dashboard returns the member's cycle state with the live payment schedule
func (dc *DashboardController) Dashboard(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, cfg, err := dc.loadUserAndConfig(ctx, c)
	if err != nil {
		return errorResponse(c, err)
	}

	schedule := services.ComputeNextPayment(cfg, user.LastPaymentDate, time.Now())

	pending, err := dc.withdrawals.PendingFor(ctx, user.ID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Dashboard retrieved successfully",
		Data: map[string]interface{}{
			"user":                  user,
			"schedule":              schedule,
			"eligibleForWithdrawal": services.IsEligibleForWithdrawal(user, cfg),
			"monthsRequired":        cfg.WithdrawalEligibilityMonths,
			"pendingWithdrawal":     pending,
			"paymentDetails": map[string]interface{}{
				"companyName":   cfg.CompanyName,
				"bankName":      cfg.CompanyBankName,
				"accountName":   cfg.CompanyAccountName,
				"accountNumber": cfg.CompanyAccountNumber,
				"monthlyAmount": cfg.MonthlyPaymentAmount,
			},
		},
	})
}

// ReferralStats returns the member's referral earnings, always derived fresh
// from the referred users' completed payments.
func (dc *DashboardController) ReferralStats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, _, err := dc.loadUserAndConfig(ctx, c)
	if err != nil {
		return errorResponse(c, err)
	}

	referred, err := dc.users.FindByReferredBy(ctx, user.ReferralCode)
	if err != nil {
		dc.logger.Printf("Failed to load referred users: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load referral stats",
		})
	}

	ids := make([]primitive.ObjectID, 0, len(referred))
	for _, r := range referred {
		ids = append(ids, r.ID)
	}

	txns, err := dc.transactions.FindCompletedByUserIDs(ctx, ids)
	if err != nil {
		dc.logger.Printf("Failed to load referred users' payments: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load referral stats",
		})
	}

	stats := services.ComputeReferralStats(user, referred, txns)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Referral stats retrieved successfully",
		Data:    stats,
	})
}

// ReferralQR returns the member's referral code as a shareable QR image
func (dc *DashboardController) ReferralQR(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, _, err := dc.loadUserAndConfig(ctx, c)
	if err != nil {
		return errorResponse(c, err)
	}

	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		appURL = "https://thriftcircle.app"
	}
	shareLink := appURL + "/register?ref=" + user.ReferralCode

	qrCode, err := utils.GenerateQRCodeDataURI(shareLink, qrCodeSize)
	if err != nil {
		dc.logger.Printf("Failed to generate referral QR code: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate QR code",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "QR code generated successfully",
		Data: map[string]interface{}{
			"referralCode": user.ReferralCode,
			"shareLink":    shareLink,
			"qrCode":       qrCode,
		},
	})
}

func (dc *DashboardController) loadUserAndConfig(ctx context.Context, c echo.Context) (*models.User, *models.Config, error) {
	userID, err := utils.GetUserIDFromToken(c)
	if err != nil {
		return nil, nil, services.NewAuthError("invalid authentication token")
	}

	user, err := dc.users.FindByID(ctx, userID)
	if err == repositories.ErrNotFound {
		return nil, nil, services.NewNotFoundError("user not found")
	}
	if err != nil {
		return nil, nil, err
	}

	cfg, err := dc.configs.Get(ctx)
	if err != nil {
		return nil, nil, err
	}

	return user, cfg, nil
}
