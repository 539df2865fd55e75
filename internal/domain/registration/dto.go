package registration

import (
	"strings"
	"time"

	"github.com/attendly/attendly-backend-go/internal/domain/user"
	"github.com/attendly/attendly-backend-go/internal/pkg/validator"
)

const MaxExpiryDays = 365

type GenerateRequest struct {
	ExpiryDays int     `json:"expiry_days"` // 0 means the configured default
	Role       *string `json:"role,omitempty"`
}

func (r *GenerateRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.ExpiryDays < 0 || r.ExpiryDays > MaxExpiryDays {
		errs.Add("expiry_days", "expiry_days must be between 1 and 365")
	}
	if r.Role != nil && !user.Role(*r.Role).IsValid() {
		errs.Add("role", "role must be one of: admin, hr, manager, employee")
	}

	return errs.Err()
}

// NormalizeCode upper-cases and trims a code typed by a user.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

type RegistrationCodeResponse struct {
	Code      string  `json:"code"`
	Role      string  `json:"role"`
	ExpiresAt string  `json:"expires_at"`
	Used      bool    `json:"used"`
	UsedAt    *string `json:"used_at,omitempty"`
	UsedBy    *int64  `json:"used_by,omitempty"`
	CreatedBy *int64  `json:"created_by,omitempty"`
	CreatedAt string  `json:"created_at"`
}

func ToResponse(c RegistrationCode) RegistrationCodeResponse {
	resp := RegistrationCodeResponse{
		Code:      c.Code,
		Role:      string(c.Role),
		ExpiresAt: c.ExpiresAt.Format(time.RFC3339),
		Used:      c.Used,
		UsedBy:    c.UsedBy,
		CreatedBy: c.CreatedBy,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
	if c.UsedAt != nil {
		s := c.UsedAt.Format(time.RFC3339)
		resp.UsedAt = &s
	}
	return resp
}

type ValidateResponse struct {
	Code  string `json:"code"`
	Valid bool   `json:"valid"`
}
