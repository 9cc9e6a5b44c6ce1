package models

import (
	"time"

	"github.com/kendall-kelly/formalwear-orders-api/dto"
	"gorm.io/gorm"
)

// Employee is a member of the shop staff, registered from their Auth0 profile
type Employee struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Auth0ID   string         `gorm:"uniqueIndex;not null" json:"auth0_id"` // Auth0 user ID (from 'sub' claim)
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Role      string         `gorm:"not null;default:'attendant'" json:"role"` // administrator, attendant or seamstress
	Active    bool           `gorm:"not null" json:"active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Employee model
func (Employee) TableName() string {
	return "employees"
}

// Summary returns the boundary shape of the employee
func (e Employee) Summary() dto.EmployeeSummary {
	return dto.EmployeeSummary{
		ID:     e.ID,
		Name:   e.Name,
		Email:  e.Email,
		Role:   e.Role,
		Active: e.Active,
	}
}

// CanAttend reports whether the employee may be assigned to orders
func (e Employee) CanAttend() bool {
	return e.Summary().CanAttend()
}

// IsValidRole reports whether role is one of the known employee roles
func IsValidRole(role string) bool {
	switch role {
	case dto.RoleAdministrator, dto.RoleAttendant, dto.RoleSeamstress:
		return true
	}
	return false
}
