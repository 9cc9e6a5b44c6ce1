package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/formalwear-orders-api/config"
	"github.com/kendall-kelly/formalwear-orders-api/dto"
	"github.com/kendall-kelly/formalwear-orders-api/middleware"
	"github.com/kendall-kelly/formalwear-orders-api/models"
	"github.com/kendall-kelly/formalwear-orders-api/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UpdateEmployeeRequest represents the body of an administrator's change to
// an employee
type UpdateEmployeeRequest struct {
	Role   string `json:"role" binding:"omitempty,oneof=administrator attendant seamstress"`
	Active *bool  `json:"active"`
}

func isUniqueViolation(err error) bool {
	// works with both PostgreSQL and SQLite
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}

// CreateEmployee handles POST /api/v1/employees - registers the caller from
// their Auth0 userinfo. The role comes from the token, attendant by default.
func CreateEmployee(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user ID from token")
		return
	}

	accessToken, err := middleware.GetAccessToken(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "MISSING_TOKEN", "Access token not found")
		return
	}

	userInfo, err := services.GetUserInfoProvider().GetUserInfo(c.Request.Context(), accessToken)
	if err != nil {
		config.GetLogger().Warn("userinfo lookup failed", zap.String("auth0_id", auth0ID), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "AUTH0_ERROR", "Failed to fetch user information from Auth0")
		return
	}
	if userInfo.Email == "" {
		respondError(c, http.StatusBadRequest, "MISSING_EMAIL", "Email not provided by Auth0")
		return
	}
	if userInfo.Name == "" {
		respondError(c, http.StatusBadRequest, "MISSING_NAME", "Name not provided by Auth0")
		return
	}

	role := dto.RoleAttendant
	if claimed := middleware.GetRole(c); claimed != "" {
		if !models.IsValidRole(claimed) {
			respondError(c, http.StatusBadRequest, "INVALID_ROLE", "Unknown role in token: "+claimed)
			return
		}
		role = claimed
	}

	employee := models.Employee{
		Auth0ID: auth0ID,
		Name:    userInfo.Name,
		Email:   userInfo.Email,
		Role:    role,
		Active:  true,
	}
	if err := config.GetDB().Create(&employee).Error; err != nil {
		if isUniqueViolation(err) {
			respondError(c, http.StatusConflict, "EMPLOYEE_EXISTS", "An employee with this Auth0 ID or email already exists")
			return
		}
		respondErr(c, err, "Failed to create employee")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    employee,
	})
}

// GetMyProfile handles GET /api/v1/employees/me
func GetMyProfile(c *gin.Context) {
	if _, err := middleware.GetUserID(c); err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	employee := currentEmployee(c, config.GetDB())
	if employee == nil {
		respondError(c, http.StatusNotFound, "EMPLOYEE_NOT_FOUND", "Employee profile not found. Please register first.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    employee,
	})
}

// ListEmployees handles GET /api/v1/employees?active=true
func ListEmployees(c *gin.Context) {
	query := config.GetDB().Order("name")
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "active must be true or false")
			return
		}
		query = query.Where("active = ?", active)
	}

	var employees []models.Employee
	if err := query.Find(&employees).Error; err != nil {
		respondErr(c, err, "Failed to fetch employees")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    employees,
	})
}

// UpdateEmployee handles PUT /api/v1/employees/:id - administrators change
// the role or deactivate an employee
func UpdateEmployee(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "INVALID_EMPLOYEE_ID", "Employee ID must be a positive integer")
		return
	}

	var req UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err)
		return
	}

	db := config.GetDB()
	var employee models.Employee
	if err := db.First(&employee, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "EMPLOYEE_NOT_FOUND", "Employee not found")
			return
		}
		respondErr(c, err, "Failed to fetch employee")
		return
	}

	updates := make(map[string]interface{})
	if req.Role != "" {
		updates["role"] = req.Role
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if len(updates) > 0 {
		if err := db.Model(&employee).Updates(updates).Error; err != nil {
			respondErr(c, err, "Failed to update employee")
			return
		}
		if err := db.First(&employee, id).Error; err != nil {
			respondErr(c, err, "Failed to reload employee")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    employee,
	})
}
