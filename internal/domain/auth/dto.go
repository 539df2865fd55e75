package auth

import (
	"github.com/attendly/attendly-backend-go/internal/domain/employee"
	"github.com/attendly/attendly-backend-go/internal/pkg/validator"
)

type RegisterRequest struct {
	Code            string `json:"code"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Department      string `json:"department"`
	Designation     string `json:"designation"`
}

func (r *RegisterRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Code) {
		errs.Add("code", "code is required")
	} else if !validator.IsValidRegistrationCode(r.Code) {
		errs.Add("code", "code must be 6 hexadecimal characters")
	}

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	} else if len(r.Name) > 255 {
		errs.Add("name", "name must not exceed 255 characters")
	}

	validateEmail(r.Email, &errs)
	validatePassword(r.Password, &errs)

	if r.ConfirmPassword != r.Password {
		errs.Add("confirm_password", ErrPasswordMismatch.Error())
	}

	if len(r.Department) > 100 {
		errs.Add("department", "department must not exceed 100 characters")
	}
	if len(r.Designation) > 100 {
		errs.Add("designation", "designation must not exceed 100 characters")
	}

	return errs.Err()
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors

	validateEmail(r.Email, &errs)
	if validator.IsEmpty(r.Password) {
		errs.Add("password", "password is required")
	}

	return errs.Err()
}

func validateEmail(email string, errs *validator.ValidationErrors) {
	switch {
	case validator.IsEmpty(email):
		errs.Add("email", "email is required")
	case len(email) > 254:
		errs.Add("email", "email must not exceed 254 characters")
	case !validator.IsValidEmail(email):
		errs.Add("email", "email must be a valid email address, e.g. user@example.com")
	}
}

func validatePassword(password string, errs *validator.ValidationErrors) {
	switch {
	case validator.IsEmpty(password):
		errs.Add("password", "password is required")
	case len(password) < 8:
		errs.Add("password", "password must be at least 8 characters long")
	case len(password) > 72:
		// bcrypt ignores anything past 72 bytes
		errs.Add("password", "password must not exceed 72 characters")
	}
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r *ForgotPasswordRequest) Validate() error {
	var errs validator.ValidationErrors
	validateEmail(r.Email, &errs)
	return errs.Err()
}

type ValidateResetTokenRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

func (r *ValidateResetTokenRequest) Validate() error {
	var errs validator.ValidationErrors

	validateEmail(r.Email, &errs)
	validateResetToken(r.Token, &errs)

	return errs.Err()
}

type ValidateResetTokenResponse struct {
	Valid bool `json:"valid"`
}

type ResetPasswordRequest struct {
	Email           string `json:"email"`
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (r *ResetPasswordRequest) Validate() error {
	var errs validator.ValidationErrors

	validateEmail(r.Email, &errs)
	validateResetToken(r.Token, &errs)
	validatePassword(r.Password, &errs)
	if r.ConfirmPassword != r.Password {
		errs.Add("confirm_password", ErrPasswordMismatch.Error())
	}

	return errs.Err()
}

func validateResetToken(token string, errs *validator.ValidationErrors) {
	switch {
	case validator.IsEmpty(token):
		errs.Add("token", "token is required")
	case len(token) > 128:
		errs.Add("token", "token must not exceed 128 characters")
	}
}

type TokenResponse struct {
	AccessToken          string                    `json:"access_token"`
	AccessTokenExpiresIn int64                     `json:"access_token_expires_in"`
	Employee             employee.EmployeeResponse `json:"employee"`
}
