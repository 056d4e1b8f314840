package services

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "accountsvc/internal/errors"
	"accountsvc/internal/models"
)

// paymentService handles payroll uploads and employee salary lookups.
type paymentService struct {
	db    *gorm.DB
	users UserServicer
}

// NewPaymentService creates a new PaymentServicer.
func NewPaymentService(db *gorm.DB, users UserServicer) PaymentServicer {
	return &paymentService{db: db, users: users}
}

// UploadPayrolls saves a batch of payments. The employee/period pair must be
// unique within the batch and the database, and every employee must be a
// registered user. The whole batch commits or aborts as one unit.
func (s *paymentService) UploadPayrolls(payments []PaymentInput) error {
	seen := make(map[string]bool, len(payments))
	for _, p := range payments {
		key := strings.ToLower(p.Employee) + "|" + p.Period
		if seen[key] {
			return apperrors.WithMessage(apperrors.ErrDuplicatePeriod,
				fmt.Sprintf("Duplicate period %s for employee %s", p.Period, strings.ToLower(p.Employee)))
		}
		seen[key] = true
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, p := range payments {
			user, err := findUserByEmail(tx, p.Employee)
			if err != nil {
				if isAppError(err, apperrors.ErrUserNotFound) {
					return apperrors.WithMessage(apperrors.ErrUserNotFound, "User not found: "+strings.ToLower(p.Employee))
				}
				return err
			}

			var count int64
			if err := tx.Model(&models.Payment{}).
				Where("employee_id = ? AND period = ?", user.ID, p.Period).
				Count(&count).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if count > 0 {
				return apperrors.WithMessage(apperrors.ErrDuplicatePeriod,
					fmt.Sprintf("Duplicate period %s for employee %s", p.Period, strings.ToLower(p.Employee)))
			}

			payment := &models.Payment{EmployeeID: user.ID, Period: p.Period, Salary: p.Salary}
			if err := tx.Create(payment).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
}

// UpdateSalary changes the salary of an existing employee/period payment.
func (s *paymentService) UpdateSalary(payment PaymentInput) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		user, err := findUserByEmail(tx, payment.Employee)
		if err != nil {
			return err
		}

		var existing models.Payment
		err = tx.Where("employee_id = ? AND period = ?", user.ID, payment.Period).First(&existing).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrPaymentNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Model(&existing).Update("salary", payment.Salary).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// GetPayments returns all of an employee's payments, most recent period
// first.
func (s *paymentService) GetPayments(email string) ([]PaymentSummary, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, err
	}

	var payments []models.Payment
	if err := s.db.Where("employee_id = ?", user.ID).Find(&payments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	sortPaymentsByPeriodDesc(payments)

	summaries := make([]PaymentSummary, 0, len(payments))
	for _, p := range payments {
		summaries = append(summaries, newPaymentSummary(user, &p))
	}
	return summaries, nil
}

// GetPaymentForPeriod returns the employee's payment for one period, or
// ErrPaymentNotFound.
func (s *paymentService) GetPaymentForPeriod(email, period string) (*PaymentSummary, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, err
	}

	var payment models.Payment
	err = s.db.Where("employee_id = ? AND period = ?", user.ID, period).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := newPaymentSummary(user, &payment)
	return &summary, nil
}

// sortPaymentsByPeriodDesc orders payments by year, then month, descending.
// Periods are MM-YYYY; lexical order would put 12-2020 after 01-2021.
func sortPaymentsByPeriodDesc(payments []models.Payment) {
	keyOf := func(period string) int {
		month, year := splitPeriod(period)
		return year*100 + month
	}
	sort.Slice(payments, func(i, j int) bool {
		return keyOf(payments[i].Period) > keyOf(payments[j].Period)
	})
}

func splitPeriod(period string) (month, year int) {
	parts := strings.SplitN(period, "-", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	month, _ = strconv.Atoi(parts[0])
	year, _ = strconv.Atoi(parts[1])
	return month, year
}

// newPaymentSummary renders a payment for an employee: "01-2021" becomes
// "January-2021" and 123456 cents becomes "1234 dollar(s) 56 cent(s)".
func newPaymentSummary(user *models.User, payment *models.Payment) PaymentSummary {
	month, year := splitPeriod(payment.Period)
	periodName := payment.Period
	if month >= 1 && month <= 12 {
		periodName = fmt.Sprintf("%s-%d", time.Month(month).String(), year)
	}
	return PaymentSummary{
		Name:     user.Name,
		Lastname: user.Lastname,
		Period:   periodName,
		Salary:   fmt.Sprintf("%d dollar(s) %d cent(s)", payment.Salary/100, payment.Salary%100),
	}
}
