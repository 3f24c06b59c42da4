// Package identity reconciles the two halves of a person: the Employee
// record HR owns and the User record messaging needs. The join key is
// the lowercased, trimmed email.
package identity

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/agencydesk/agencydesk/internal/apperr"
	"github.com/agencydesk/agencydesk/internal/models"
	"github.com/agencydesk/agencydesk/internal/repository"
)

type Resolver struct {
	users     repository.UserRepository
	employees repository.EmployeeRepository
	logger    *zap.Logger
}

func NewResolver(users repository.UserRepository, employees repository.EmployeeRepository, logger *zap.Logger) *Resolver {
	return &Resolver{users: users, employees: employees, logger: logger}
}

// NormalizeEmail is the canonical form used everywhere an email is a key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmployeeForUser resolves a staff user to their Employee record by
// email. Fails NotFound when the user has no HR record.
func (r *Resolver) EmployeeForUser(ctx context.Context, u *models.User) (*models.Employee, error) {
	email := NormalizeEmail(u.Email)
	emp, err := r.employees.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Store("resolve employee", err)
	}
	if emp == nil {
		return nil, apperr.NotFound("employee record not found")
	}
	return emp, nil
}

// EnsureUserForEmployee synthesizes (or refreshes) the User record backing
// an Employee. Idempotent and safe to race: the upsert is keyed on the
// unique email index, defaults apply only on first insert, and name and
// avatar are refreshed on every call so the newest caller wins.
//
// Returns (nil, nil) for employees without an email; they simply cannot
// participate in messaging.
func (r *Resolver) EnsureUserForEmployee(ctx context.Context, emp *models.Employee) (*models.User, error) {
	email := NormalizeEmail(emp.Email)
	if email == "" {
		return nil, nil
	}

	user, err := r.users.EnsureStaffByEmail(ctx, email, emp.DisplayName(), emp.Avatar)
	if err != nil {
		return nil, apperr.Store("sync employee to user", err)
	}

	r.logger.Debug("employee synced to user",
		zap.String("email", email),
		zap.String("user_id", user.ID.Hex()),
	)
	return user, nil
}
