package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/formalwear-orders-api/dto"
	"github.com/kendall-kelly/formalwear-orders-api/models"
	"github.com/kendall-kelly/formalwear-orders-api/tests/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fixedNow is the clock of every controller test
var fixedNow = time.Date(2026, 3, 19, 10, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	db := testutil.NewTestDB(t)
	Now = func() time.Time { return fixedNow }
	t.Cleanup(func() { Now = time.Now })
	return db
}

// setupTestRouter registers the order API as the router package does, with
// every request authenticated as auth0ID with role
func setupTestRouter(auth0ID, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	v1 := router.Group("/api/v1", testutil.MockAuthMiddleware(auth0ID, role))
	{
		v1.POST("/employees", CreateEmployee)
		v1.GET("/employees/me", GetMyProfile)
		v1.GET("/employees", ListEmployees)
		v1.PUT("/employees/:id", UpdateEmployee)
		v1.GET("/refusal-reasons", ListRefusalReasons)
		v1.GET("/addresses/:postal_code", LookupAddress)
		v1.GET("/uploads/:filename", GetUploadedImage)

		v1.GET("/orders", ListOrders)
		v1.GET("/orders/counts", CountOrders)
		v1.POST("/orders", CreateOrder)
		v1.GET("/orders/:id", GetOrder)
		v1.PUT("/orders/:id", UpdateOrder)
		v1.GET("/orders/:id/history", GetOrderHistory)
		v1.POST("/orders/:id/photo", UploadOrderPhoto)
		v1.POST("/orders/:id/assign", AssignAttendant)
		v1.POST("/orders/:id/start-production", StartProduction)
		v1.POST("/orders/:id/ready", MarkReady)
		v1.POST("/orders/:id/pickup", Pickup)
		v1.POST("/orders/:id/returned", MarkReturned)
		v1.POST("/orders/:id/refuse", RefuseOrder)
		v1.POST("/orders/:id/reopen", ReopenOrder)
	}
	return router
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "response should be JSON: %s", w.Body.String())
	return w, env
}

func decodeRecord(t *testing.T, env envelope) dto.OrderRecord {
	t.Helper()
	var rec dto.OrderRecord
	require.NoError(t, json.Unmarshal(env.Data, &rec))
	return rec
}

func samplePayload() dto.OrderPayload {
	return dto.OrderPayload{
		Client: dto.ClientBlock{
			Name:  "Joana Prado",
			Phone: "11987654321",
			TaxID: "12345678901",
			Addresses: []dto.AddressEntry{{
				PostalCode:   "01310100",
				Street:       "Avenida Paulista",
				Number:       "1000",
				Neighborhood: "Bela Vista",
				City:         "São Paulo",
				State:        "SP",
			}},
		},
		Modality:   models.ModalityRental,
		OrderDate:  "2026-03-02",
		EventDate:  "2026-03-21",
		PickupDate: "2026-03-18",
		ReturnDate: "2026-03-23",
		Items: []dto.ItemEntry{
			{Kind: "jacket", Number: "50", Color: "black", Adjustment: "take in sleeves"},
			{Kind: "shirt", Number: "3", Color: "white"},
			{Kind: "trousers", Number: "42", Length: "104"},
		},
		Accessories: []dto.AccessoryEntry{
			{Kind: "tie", Color: "navy"},
		},
		Payment: dto.PaymentBlock{Total: 300.10, Advance: 146.70, Balance: 153.40},
	}
}

func seedEmployee(t *testing.T, db *gorm.DB, auth0ID, name, role string, active bool) models.Employee {
	t.Helper()
	e := models.Employee{
		Auth0ID: auth0ID,
		Name:    name,
		Email:   auth0ID + "@example.com",
		Role:    role,
		Active:  true,
	}
	require.NoError(t, db.Create(&e).Error)
	if !active {
		require.NoError(t, db.Model(&e).Update("active", false).Error)
		e.Active = false
	}
	return e
}

func createOrder(t *testing.T, router *gin.Engine) dto.OrderRecord {
	t.Helper()
	w, env := doJSON(t, router, http.MethodPost, "/api/v1/orders", samplePayload())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeRecord(t, env)
}

func reasonID(t *testing.T, db *gorm.DB) uint {
	t.Helper()
	var reason models.RefusalReason
	require.NoError(t, db.Where("active = ?", true).Order("id").First(&reason).Error)
	return reason.ID
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func jsonUnmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
