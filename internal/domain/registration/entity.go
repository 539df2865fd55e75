package registration

import (
	"time"

	"github.com/attendly/attendly-backend-go/internal/domain/user"
)

// RegistrationCode gates self-registration. Used flips to true exactly once.
type RegistrationCode struct {
	Code      string
	ExpiresAt time.Time
	Used      bool
	UsedAt    *time.Time
	UsedBy    *int64
	CreatedBy *int64
	Role      user.Role // role granted to whoever registers with the code
	CreatedAt time.Time
}

// IsExpired reports whether the code's expiry has passed at now.
func (c RegistrationCode) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// IsValid reports whether the code can still be used at now.
func (c RegistrationCode) IsValid(now time.Time) bool {
	return !c.Used && !c.IsExpired(now)
}
