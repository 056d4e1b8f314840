package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"accountsvc/internal/models"
)

// TestPassword is the plaintext behind every fixture user's hash.
const TestPassword = "longenoughpassword"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a USER-role user with a unique acme.com email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@acme.com", nextID())
	return CreateTestUserWithRoles(t, db, email, models.RoleUser)
}

// CreateTestAdmin creates an ADMINISTRATOR user with a unique acme.com email.
func CreateTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("admin%d@acme.com", nextID())
	return CreateTestUserWithRoles(t, db, email, models.RoleAdministrator)
}

// CreateTestUserWithRoles creates a user with the given email and roles.
// The password is TestPassword hashed with bcrypt.MinCost.
func CreateTestUserWithRoles(t *testing.T, db *gorm.DB, email string, roleNames ...models.RoleName) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	roles := make([]models.Role, 0, len(roleNames))
	for _, name := range roleNames {
		var role models.Role
		if err := db.Where("name = ?", name).First(&role).Error; err != nil {
			t.Fatalf("failed to load role %s: %v", name, err)
		}
		roles = append(roles, role)
	}

	user := &models.User{
		Name:     "Test",
		Lastname: fmt.Sprintf("User%d", nextID()),
		Email:    email,
		Password: string(hash),
		Roles:    roles,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestPayment creates a payment for the given employee and period.
func CreateTestPayment(t *testing.T, db *gorm.DB, employeeID uint, period string, salary int64) *models.Payment {
	t.Helper()

	payment := &models.Payment{
		EmployeeID: employeeID,
		Period:     period,
		Salary:     salary,
	}
	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("failed to create test payment: %v", err)
	}
	return payment
}

// AllEvents returns every recorded security event in creation order.
func AllEvents(t *testing.T, db *gorm.DB) []models.SecurityEvent {
	t.Helper()

	var events []models.SecurityEvent
	if err := db.Order("id ASC").Find(&events).Error; err != nil {
		t.Fatalf("failed to load security events: %v", err)
	}
	return events
}
