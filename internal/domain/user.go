package domain

import (
	"strings"
	"time"
	"unicode"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID         int64     `json:"id"`
	Mobile     string    `json:"mobile"`
	Role       string    `json:"role"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Profile is created empty alongside its user and mutated only by the owner.
type Profile struct {
	UserID   int64  `json:"-"`
	Name     string `json:"name"`
	Gender   string `json:"gender"`
	Location string `json:"location"`
}

type RequestOTPRequest struct {
	Mobile string `json:"mobile"`
}

type VerifyOTPRequest struct {
	Mobile string `json:"mobile"`
	OTP    string `json:"otp"`
}

type UpdateProfileRequest struct {
	Name     string `json:"name"`
	Gender   string `json:"gender"`
	Location string `json:"location"`
}

func (r *RequestOTPRequest) Normalize() {
	r.Mobile = NormalizeMobile(r.Mobile)
}

func (r *RequestOTPRequest) Validate() error {
	if r.Mobile == "" {
		return Validationf("mobile is required")
	}
	if !IsValidMobile(r.Mobile) {
		return Validationf("invalid mobile number")
	}
	return nil
}

func (r *VerifyOTPRequest) Normalize() {
	r.Mobile = NormalizeMobile(r.Mobile)
	r.OTP = strings.TrimSpace(r.OTP)
}

func (r *VerifyOTPRequest) Validate() error {
	if r.Mobile == "" || r.OTP == "" {
		return Validationf("mobile and otp are required")
	}
	if !IsValidMobile(r.Mobile) {
		return Validationf("invalid mobile number")
	}
	return nil
}

func (r *UpdateProfileRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Gender = strings.TrimSpace(r.Gender)
	r.Location = strings.TrimSpace(r.Location)
}

// NormalizeMobile strips everything except digits and a leading plus sign.
func NormalizeMobile(mobile string) string {
	cleaned := strings.TrimSpace(mobile)
	if cleaned == "" {
		return ""
	}

	var b strings.Builder
	for i, r := range cleaned {
		if i == 0 && r == '+' {
			b.WriteRune(r)
		} else if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func IsValidMobile(mobile string) bool {
	normalized := NormalizeMobile(mobile)
	digits := strings.TrimPrefix(normalized, "+")
	return len(digits) >= 7 && len(digits) <= 15
}
