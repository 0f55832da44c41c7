// Package dto define los contratos JSON de la API.
package dto

import (
	"time"

	"github.com/machwork/identity/internal/domain/repository"
)

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type VerifyEmailRequest struct {
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	MFACode  string `json:"mfaCode,omitempty"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type MFAConfirmRequest struct {
	Code string `json:"code"`
}

type MFADisableRequest struct {
	Code string `json:"code"`
}

type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int    `json:"expiresIn"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type MFASetupResponse struct {
	Secret      string   `json:"secret"`
	OTPAuthURL  string   `json:"provisioningUri"`
	BackupCodes []string `json:"backupCodes"`
}

type UserResponse struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	EmailVerified bool       `json:"emailVerified"`
	MFAEnabled    bool       `json:"mfaEnabled"`
	CreatedAt     time.Time  `json:"createdAt"`
	VerifiedAt    *time.Time `json:"verifiedAt,omitempty"`
}

func NewUserResponse(u *repository.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		EmailVerified: u.EmailVerifiedAt != nil,
		MFAEnabled:    u.MFAEnabled,
		CreatedAt:     u.CreatedAt,
		VerifiedAt:    u.EmailVerifiedAt,
	}
}

type MemberResponse struct {
	UserID    string    `json:"userId"`
	CompanyID string    `json:"companyId"`
	Role      string    `json:"role"`
	IsPrimary bool      `json:"isPrimary"`
	JoinedAt  time.Time `json:"joinedAt"`
}

func NewMemberResponse(m repository.CompanyMembership) MemberResponse {
	return MemberResponse{
		UserID:    m.UserID,
		CompanyID: m.CompanyID,
		Role:      m.Role,
		IsPrimary: m.IsPrimary,
		JoinedAt:  m.CreatedAt,
	}
}
