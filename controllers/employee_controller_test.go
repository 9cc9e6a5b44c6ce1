package controllers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/kendall-kelly/formalwear-orders-api/dto"
	"github.com/kendall-kelly/formalwear-orders-api/models"
	"github.com/kendall-kelly/formalwear-orders-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUserInfo struct {
	info *services.Auth0UserInfo
	err  error
}

func (s stubUserInfo) GetUserInfo(context.Context, string) (*services.Auth0UserInfo, error) {
	return s.info, s.err
}

func useUserInfo(t *testing.T, p services.UserInfoProvider) {
	services.SetUserInfoProvider(p)
	t.Cleanup(func() { services.SetUserInfoProvider(nil) })
}

func TestCreateEmployee(t *testing.T) {
	db := setupTestDB(t)
	useUserInfo(t, stubUserInfo{info: &services.Auth0UserInfo{
		Sub:   "auth0|new",
		Email: "ana@example.com",
		Name:  "Ana Lima",
	}})

	router := setupTestRouter("auth0|new", "")
	w, env := doJSON(t, router, http.MethodPost, "/api/v1/employees", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.Employee
	require.NoError(t, jsonUnmarshal(env.Data, &created))
	assert.Equal(t, "auth0|new", created.Auth0ID)
	assert.Equal(t, "Ana Lima", created.Name)
	assert.Equal(t, dto.RoleAttendant, created.Role, "attendant when the token has no role")
	assert.True(t, created.Active)

	w, env = doJSON(t, router, http.MethodPost, "/api/v1/employees", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "EMPLOYEE_EXISTS", env.Error.Code)

	var count int64
	require.NoError(t, db.Model(&models.Employee{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateEmployee_RoleFromToken(t *testing.T) {
	setupTestDB(t)
	useUserInfo(t, stubUserInfo{info: &services.Auth0UserInfo{Email: "rita@example.com", Name: "Rita"}})

	w, env := doJSON(t, setupTestRouter("auth0|sew", dto.RoleSeamstress), http.MethodPost, "/api/v1/employees", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Employee
	require.NoError(t, jsonUnmarshal(env.Data, &created))
	assert.Equal(t, dto.RoleSeamstress, created.Role)

	w, env = doJSON(t, setupTestRouter("auth0|odd", "janitor"), http.MethodPost, "/api/v1/employees", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ROLE", env.Error.Code)
}

func TestCreateEmployee_UserInfoFailures(t *testing.T) {
	setupTestDB(t)
	router := setupTestRouter("auth0|x", dto.RoleAttendant)

	tests := []struct {
		name       string
		provider   stubUserInfo
		wantStatus int
		wantCode   string
	}{
		{"auth0 down", stubUserInfo{err: errors.New("timeout")}, http.StatusInternalServerError, "AUTH0_ERROR"},
		{"no email", stubUserInfo{info: &services.Auth0UserInfo{Name: "X"}}, http.StatusBadRequest, "MISSING_EMAIL"},
		{"no name", stubUserInfo{info: &services.Auth0UserInfo{Email: "x@example.com"}}, http.StatusBadRequest, "MISSING_NAME"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useUserInfo(t, tt.provider)
			w, env := doJSON(t, router, http.MethodPost, "/api/v1/employees", nil)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}
}

func TestGetMyProfile(t *testing.T) {
	db := setupTestDB(t)

	w, env := doJSON(t, setupTestRouter("auth0|att", dto.RoleAttendant), http.MethodGet, "/api/v1/employees/me", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "EMPLOYEE_NOT_FOUND", env.Error.Code)

	seedEmployee(t, db, "auth0|att", "Marta", dto.RoleAttendant, true)
	w, env = doJSON(t, setupTestRouter("auth0|att", dto.RoleAttendant), http.MethodGet, "/api/v1/employees/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me models.Employee
	require.NoError(t, jsonUnmarshal(env.Data, &me))
	assert.Equal(t, "Marta", me.Name)
}

func TestListAndUpdateEmployees(t *testing.T) {
	db := setupTestDB(t)
	seedEmployee(t, db, "auth0|adm", "Zélia", dto.RoleAdministrator, true)
	marta := seedEmployee(t, db, "auth0|att", "Marta", dto.RoleAttendant, true)
	seedEmployee(t, db, "auth0|old", "Paulo", dto.RoleAttendant, false)
	router := setupTestRouter("auth0|adm", dto.RoleAdministrator)

	w, env := doJSON(t, router, http.MethodGet, "/api/v1/employees", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all []models.Employee
	require.NoError(t, jsonUnmarshal(env.Data, &all))
	require.Len(t, all, 3)
	assert.Equal(t, "Marta", all[0].Name, "sorted by name")

	w, env = doJSON(t, router, http.MethodGet, "/api/v1/employees?active=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var active []models.Employee
	require.NoError(t, jsonUnmarshal(env.Data, &active))
	assert.Len(t, active, 2)

	w, _ = doJSON(t, router, http.MethodGet, "/api/v1/employees?active=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	off := false
	w, env = doJSON(t, router, http.MethodPut, "/api/v1/employees/"+itoa(marta.ID),
		UpdateEmployeeRequest{Role: dto.RoleSeamstress, Active: &off})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.Employee
	require.NoError(t, jsonUnmarshal(env.Data, &updated))
	assert.Equal(t, dto.RoleSeamstress, updated.Role)
	assert.False(t, updated.Active)

	w, env = doJSON(t, router, http.MethodPut, "/api/v1/employees/999", UpdateEmployeeRequest{Role: dto.RoleAttendant})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "EMPLOYEE_NOT_FOUND", env.Error.Code)

	w, env = doJSON(t, router, http.MethodPut, "/api/v1/employees/"+itoa(marta.ID), UpdateEmployeeRequest{Role: "owner"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}
