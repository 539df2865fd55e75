package jwt

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/attendly/attendly-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const tokenTypeAccess = "access"

type principalKey struct{}

// WithPrincipal returns ctx carrying p in place of the token's claims.
func WithPrincipal(ctx context.Context, p user.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

type Service interface {
	GenerateAccessToken(principal user.Principal) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpiration time.Duration
	tokenAuth             *jwtauth.JWTAuth
	now                   func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) (Service, error) {
	expDuration, err := time.ParseDuration(accessTokenExpirationTime)
	if err != nil {
		return nil, fmt.Errorf("invalid access token expiration %q: %w", accessTokenExpirationTime, err)
	}

	return &JWTService{
		accessTokenExpiration: expDuration,
		tokenAuth:             jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:                   time.Now,
	}, nil
}

func (j *JWTService) GenerateAccessToken(principal user.Principal) (token string, expiresAt int64, err error) {
	expiresAt = j.now().Add(j.accessTokenExpiration).Unix()

	claims := map[string]interface{}{
		"employee_id": strconv.FormatInt(principal.EmployeeID, 10),
		"email":       principal.Email,
		"role":        string(principal.Role),
		"type":        tokenTypeAccess,
		"exp":         expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// PrincipalFromContext reads the caller set by WithPrincipal, or else from
// the token placed in ctx by jwtauth.Verifier.
func PrincipalFromContext(ctx context.Context) (user.Principal, error) {
	if p, ok := ctx.Value(principalKey{}).(user.Principal); ok {
		return p, nil
	}

	token, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: %v", user.ErrUnauthenticated, err)
	}
	if token == nil {
		return user.Principal{}, user.ErrUnauthenticated
	}

	if tokenType, _ := claims["type"].(string); tokenType != tokenTypeAccess {
		return user.Principal{}, fmt.Errorf("%w: not an access token", user.ErrUnauthenticated)
	}

	rawID, _ := claims["employee_id"].(string)
	employeeID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: employee_id claim is missing or invalid", user.ErrUnauthenticated)
	}

	role, _ := claims["role"].(string)
	if !user.Role(role).IsValid() {
		return user.Principal{}, fmt.Errorf("%w: role claim is missing or invalid", user.ErrUnauthenticated)
	}

	email, _ := claims["email"].(string)

	return user.Principal{
		EmployeeID: employeeID,
		Email:      email,
		Role:       user.Role(role),
	}, nil
}

// NewContext returns ctx carrying a decoded access token for principal, as
// jwtauth.Verifier would after checking a request header.
func NewContext(ctx context.Context, svc Service, principal user.Principal) (context.Context, error) {
	tokenString, _, err := svc.GenerateAccessToken(principal)
	if err != nil {
		return nil, err
	}
	token, err := svc.JWTAuth().Decode(tokenString)
	if err != nil {
		return nil, err
	}
	return jwtauth.NewContext(ctx, token, nil), nil
}
