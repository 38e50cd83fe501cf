package models

type RegisterRequest struct {
	FullName      string `json:"fullName" validate:"required,min=2"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required"`
	BankName      string `json:"bankName" validate:"required"`
	AccountNumber string `json:"accountNumber" validate:"required"`
	AccountName   string `json:"accountName" validate:"required"`
	ReferralCode  string `json:"referralCode,omitempty"` // referrer's code, optional
	FCMToken      string `json:"fcmToken,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FCMToken string `json:"fcmToken,omitempty"`
}

// AuthData is the payload returned by register and login.
type AuthData struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user"`
}
