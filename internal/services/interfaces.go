package services

import (
	"sort"

	"gorm.io/gorm"

	"accountsvc/internal/models"
)

// AnonymousSubject is the audit subject recorded for unauthenticated callers.
const AnonymousSubject = "Anonymous"

// Principal is the identity resolved for the current operation's caller.
// The zero value represents an anonymous caller. It is passed explicitly
// into every operation that needs one rather than read from ambient state.
type Principal struct {
	Email string
	Roles []models.RoleName
}

// IsAnonymous reports whether no authenticated caller was resolved.
func (p Principal) IsAnonymous() bool { return p.Email == "" }

// Subject returns the audit subject for this principal.
func (p Principal) Subject() string {
	if p.IsAnonymous() {
		return AnonymousSubject
	}
	return p.Email
}

// HasRole reports whether the principal holds the given role.
func (p Principal) HasRole(name models.RoleName) bool {
	for _, r := range p.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// UserSummary is the role-enriched projection of a user returned to the
// boundary layer. Roles carry the "ROLE_" prefix and are sorted ascending.
type UserSummary struct {
	ID       uint     `json:"id"`
	Name     string   `json:"name"`
	Lastname string   `json:"lastname"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// NewUserSummary builds a UserSummary from a user with preloaded roles.
func NewUserSummary(user *models.User) UserSummary {
	roles := make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		roles = append(roles, "ROLE_"+string(r.Name))
	}
	sort.Strings(roles)
	return UserSummary{
		ID:       user.ID,
		Name:     user.Name,
		Lastname: user.Lastname,
		Email:    user.Email,
		Roles:    roles,
	}
}

// PaymentInput is one payroll entry as submitted by an accountant.
type PaymentInput struct {
	Employee string
	Period   string
	Salary   int64
}

// PaymentSummary is a payment rendered for the employee: the period as
// "January-2021" and the salary as "1234 dollar(s) 56 cent(s)".
type PaymentSummary struct {
	Name     string `json:"name"`
	Lastname string `json:"lastname"`
	Period   string `json:"period"`
	Salary   string `json:"salary"`
}

// AuditServicer defines the contract for the append-only security event log.
type AuditServicer interface {
	Record(tx *gorm.DB, action models.SecurityAction, subject, object, path string) error
	Events() ([]models.SecurityEvent, error)
}

// RoleServicer defines the contract for the fixed role reference data.
type RoleServicer interface {
	EnsureRoles() error
	GetByName(tx *gorm.DB, name models.RoleName) (*models.Role, error)
}

// UserServicer defines the contract for user lookups.
type UserServicer interface {
	GetByEmail(email string) (*models.User, error)
	Exists(email string) (bool, error)
}

// LoginGuardServicer defines the per-user failure counter and
// lock/unlock state machine.
type LoginGuardServicer interface {
	Authenticate(email, password, path string) (*models.User, error)
	OnFailure(email, path string) error
	OnSuccess(email string) error
	Lock(principal Principal, email, path string) error
	Unlock(principal Principal, email, path string) error
}

// AccessServicer defines role grant/revoke under the exclusivity and
// minimum-role invariants.
type AccessServicer interface {
	Grant(principal Principal, targetEmail string, role models.RoleName, path string) (*UserSummary, error)
	Revoke(principal Principal, targetEmail string, role models.RoleName, path string) (*UserSummary, error)
}

// AccountServicer orchestrates sign-up, password change, deletion, and
// user listing.
type AccountServicer interface {
	SignUp(name, lastname, email, password, path string) (*UserSummary, error)
	ChangePassword(principal Principal, newPassword, path string) error
	DeleteUser(principal Principal, email, path string) error
	ListUsers() ([]UserSummary, error)
}

// PaymentServicer defines the payroll operations layered on the user store.
type PaymentServicer interface {
	UploadPayrolls(payments []PaymentInput) error
	UpdateSalary(payment PaymentInput) error
	GetPayments(email string) ([]PaymentSummary, error)
	GetPaymentForPeriod(email, period string) (*PaymentSummary, error)
}
