package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/attendly/attendly-backend-go/internal/domain/auth"
	"github.com/attendly/attendly-backend-go/internal/domain/employee"
	"github.com/attendly/attendly-backend-go/internal/domain/registration"
	"github.com/attendly/attendly-backend-go/internal/domain/user"
	"github.com/attendly/attendly-backend-go/internal/pkg/clock"
	"github.com/attendly/attendly-backend-go/internal/pkg/database"
	"github.com/attendly/attendly-backend-go/internal/pkg/email"
	"github.com/attendly/attendly-backend-go/internal/pkg/jwt"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ResetSettings controls password reset links.
type ResetSettings struct {
	URL    string // reset page the link points at
	Expiry time.Duration
}

type AuthServiceImpl struct {
	tx database.Transactor
	employee.EmployeeRepository
	registration.RegistrationCodeRepository
	jwt.Service
	resets       auth.PasswordResetRepository
	emailService email.EmailService
	reset        ResetSettings
	clock        clock.Clock
}

func NewAuthService(
	tx database.Transactor,
	employeeRepository employee.EmployeeRepository,
	codeRepository registration.RegistrationCodeRepository,
	resetRepository auth.PasswordResetRepository,
	jwtService jwt.Service,
	emailService email.EmailService,
	reset ResetSettings,
	clk clock.Clock,
) auth.AuthService {
	return &AuthServiceImpl{
		tx:                         tx,
		EmployeeRepository:         employeeRepository,
		RegistrationCodeRepository: codeRepository,
		Service:                    jwtService,
		resets:                     resetRepository,
		emailService:               emailService,
		reset:                      reset,
		clock:                      clk,
	}
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// NewEmployeeCode returns a code like EMP-1A2B3C4D.
func NewEmployeeCode() string {
	return "EMP-" + strings.ToUpper(uuid.NewString()[:8])
}

// Register creates the employee and claims the code together. The code is
// checked before anything is written so a bad code leaves no trace.
func (a *AuthServiceImpl) Register(ctx context.Context, req auth.RegisterRequest) (auth.TokenResponse, error) {
	req.Code = registration.NormalizeCode(req.Code)
	req.Email = employee.NormalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	passwordHash, err := HashPassword(req.Password)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	var created employee.Employee
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		exists, err := a.EmployeeRepository.ExistsByEmail(ctx, req.Email)
		if err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if exists {
			return employee.ErrEmailAlreadyRegistered
		}

		now := a.clock.Now()
		code, err := a.RegistrationCodeRepository.GetByCode(ctx, req.Code)
		if err != nil {
			return err
		}
		if !code.IsValid(now) {
			return registration.ErrInvalidOrExpiredCode
		}

		role := code.Role
		if !role.IsValid() {
			role = user.RoleEmployee
		}

		created, err = a.EmployeeRepository.Create(ctx, employee.Employee{
			EmployeeCode: NewEmployeeCode(),
			Name:         strings.TrimSpace(req.Name),
			Email:        req.Email,
			PasswordHash: passwordHash,
			Department:   strings.TrimSpace(req.Department),
			Designation:  strings.TrimSpace(req.Designation),
			Role:         role,
			Status:       employee.StatusOffline,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return err
		}

		_, err = a.RegistrationCodeRepository.Claim(ctx, req.Code, &created.ID, now)
		return err
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}

	slog.Info("Employee registered", "employee_id", created.ID, "employee_code", created.EmployeeCode, "role", created.Role)
	return a.issueToken(created)
}

func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	req.Email = employee.NormalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	found, err := a.EmployeeRepository.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get employee by email: %w", err)
	}

	if found.PasswordHash == "" {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	return a.issueToken(found)
}

func (a *AuthServiceImpl) ForgotPassword(ctx context.Context, req auth.ForgotPasswordRequest) error {
	req.Email = employee.NormalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		return err
	}

	found, err := a.EmployeeRepository.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			slog.Info("Password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("failed to get employee by email: %w", err)
	}

	token, err := newResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	link, err := resetLink(a.reset.URL, found.Email, token)
	if err != nil {
		return err
	}

	now := a.clock.Now()
	expiresAt := now.Add(a.reset.Expiry)
	_, err = a.resets.Save(ctx, auth.PasswordResetToken{
		Email:     found.Email,
		TokenHash: hashResetToken(token),
		ExpiresAt: expiresAt,
		CreatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("failed to save reset token: %w", err)
	}

	if err := a.emailService.SendPasswordReset(found.Email, link, expiresAt.UTC().Format("2006-01-02 15:04 MST")); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	slog.Info("Password reset requested", "employee_id", found.ID, "expires_at", expiresAt)
	return nil
}

func (a *AuthServiceImpl) ValidateResetToken(ctx context.Context, req auth.ValidateResetTokenRequest) (auth.ValidateResetTokenResponse, error) {
	req.Email = employee.NormalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		return auth.ValidateResetTokenResponse{}, err
	}

	stored, err := a.resets.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidResetToken) {
			return auth.ValidateResetTokenResponse{Valid: false}, nil
		}
		return auth.ValidateResetTokenResponse{}, err
	}

	valid := stored.Matches(hashResetToken(req.Token)) && stored.IsValid(a.clock.Now())
	return auth.ValidateResetTokenResponse{Valid: valid}, nil
}

// ResetPassword checks the token, stores the new hash and claims the token
// last, in one transaction.
func (a *AuthServiceImpl) ResetPassword(ctx context.Context, req auth.ResetPasswordRequest) error {
	req.Email = employee.NormalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		return err
	}

	passwordHash, err := HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	tokenHash := hashResetToken(req.Token)

	var updated employee.Employee
	err = a.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		now := a.clock.Now()
		stored, err := a.resets.GetByEmail(ctx, req.Email)
		if err != nil {
			return err
		}
		if !stored.Matches(tokenHash) || !stored.IsValid(now) {
			return auth.ErrInvalidResetToken
		}

		found, err := a.EmployeeRepository.GetByEmail(ctx, req.Email)
		if err != nil {
			if errors.Is(err, employee.ErrEmployeeNotFound) {
				return auth.ErrInvalidResetToken
			}
			return err
		}
		found.PasswordHash = passwordHash
		found.UpdatedAt = now
		if updated, err = a.EmployeeRepository.Update(ctx, found); err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}

		_, err = a.resets.Claim(ctx, req.Email, tokenHash, now)
		return err
	})
	if err != nil {
		return err
	}

	slog.Info("Password reset", "employee_id", updated.ID)
	return nil
}

func newResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func resetLink(base, email, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid reset URL %q: %w", base, err)
	}
	q := u.Query()
	q.Set("token", token)
	q.Set("email", email)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (a *AuthServiceImpl) issueToken(e employee.Employee) (auth.TokenResponse, error) {
	token, expiresAt, err := a.Service.GenerateAccessToken(user.Principal{
		EmployeeID: e.ID,
		Email:      e.Email,
		Role:       e.Role,
	})
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}

	return auth.TokenResponse{
		AccessToken:          token,
		AccessTokenExpiresIn: expiresAt,
		Employee:             employee.ToResponse(e),
	}, nil
}
