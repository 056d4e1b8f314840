package models

// Payment is one employee's salary for one period (MM-YYYY).
// The employee/period pair is unique; salary is stored in cents.
type Payment struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	EmployeeID uint   `gorm:"not null;uniqueIndex:idx_employee_period" json:"employee_id"`
	Employee   User   `gorm:"foreignKey:EmployeeID" json:"-"`
	Period     string `gorm:"not null;uniqueIndex:idx_employee_period" json:"period"`
	Salary     int64  `gorm:"not null" json:"salary"`
}
