package registration

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/attendly/attendly-backend-go/internal/domain/registration"
	"github.com/attendly/attendly-backend-go/internal/domain/user"
	"github.com/attendly/attendly-backend-go/internal/pkg/clock"
	"github.com/attendly/attendly-backend-go/internal/pkg/jwt"
	"github.com/attendly/attendly-backend-go/internal/pkg/validator"
)

const generateAttempts = 5

type RegistrationCodeServiceImpl struct {
	codeRepo          registration.RegistrationCodeRepository
	clock             clock.Clock
	defaultExpiryDays int
	newCode           func() (string, error)
}

func NewRegistrationCodeService(codeRepo registration.RegistrationCodeRepository, clk clock.Clock, defaultExpiryDays int) registration.RegistrationCodeService {
	if defaultExpiryDays <= 0 {
		defaultExpiryDays = 7
	}
	return &RegistrationCodeServiceImpl{
		codeRepo:          codeRepo,
		clock:             clk,
		defaultExpiryDays: defaultExpiryDays,
		newCode:           randomCode,
	}
}

// randomCode returns six upper-case hex characters.
func randomCode() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

func (s *RegistrationCodeServiceImpl) Generate(ctx context.Context, req registration.GenerateRequest) (registration.RegistrationCodeResponse, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return registration.RegistrationCodeResponse{}, err
	}
	if err := principal.Require(user.PermissionRegistrationManage); err != nil {
		return registration.RegistrationCodeResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return registration.RegistrationCodeResponse{}, err
	}

	expiryDays := req.ExpiryDays
	if expiryDays == 0 {
		expiryDays = s.defaultExpiryDays
	}
	role := user.RoleEmployee
	if req.Role != nil {
		role = user.Role(*req.Role)
	}

	now := s.clock.Now()
	for attempt := 0; attempt < generateAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return registration.RegistrationCodeResponse{}, fmt.Errorf("failed to generate registration code: %w", err)
		}

		created, err := s.codeRepo.Create(ctx, registration.RegistrationCode{
			Code:      code,
			ExpiresAt: now.Add(time.Duration(expiryDays) * 24 * time.Hour),
			CreatedBy: &principal.EmployeeID,
			Role:      role,
			CreatedAt: now,
		})
		if errors.Is(err, registration.ErrCodeExists) {
			continue
		}
		if err != nil {
			return registration.RegistrationCodeResponse{}, fmt.Errorf("failed to save registration code: %w", err)
		}

		slog.Info("Registration code generated",
			"code", created.Code,
			"role", created.Role,
			"expires_at", created.ExpiresAt,
			"created_by", principal.EmployeeID,
		)
		return registration.ToResponse(created), nil
	}

	return registration.RegistrationCodeResponse{}, registration.ErrCodeGenerationFailed
}

// IsValid never changes the code. Unknown or malformed codes are simply invalid.
func (s *RegistrationCodeServiceImpl) IsValid(ctx context.Context, code string) (registration.ValidateResponse, error) {
	code = registration.NormalizeCode(code)
	if !validator.IsValidRegistrationCode(code) {
		return registration.ValidateResponse{Code: code, Valid: false}, nil
	}

	found, err := s.codeRepo.GetByCode(ctx, code)
	if errors.Is(err, registration.ErrInvalidOrExpiredCode) {
		return registration.ValidateResponse{Code: code, Valid: false}, nil
	}
	if err != nil {
		return registration.ValidateResponse{}, err
	}

	return registration.ValidateResponse{Code: code, Valid: found.IsValid(s.clock.Now())}, nil
}

func (s *RegistrationCodeServiceImpl) Consume(ctx context.Context, code string) (registration.RegistrationCodeResponse, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return registration.RegistrationCodeResponse{}, err
	}
	if err := principal.Require(user.PermissionRegistrationManage); err != nil {
		return registration.RegistrationCodeResponse{}, err
	}

	used, err := s.codeRepo.MarkUsed(ctx, registration.NormalizeCode(code), s.clock.Now())
	if err != nil {
		return registration.RegistrationCodeResponse{}, err
	}
	return registration.ToResponse(used), nil
}
