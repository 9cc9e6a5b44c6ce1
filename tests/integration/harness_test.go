package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/formalwear-orders-api/config"
	"github.com/kendall-kelly/formalwear-orders-api/controllers"
	"github.com/kendall-kelly/formalwear-orders-api/models"
	"github.com/kendall-kelly/formalwear-orders-api/router"
	"github.com/kendall-kelly/formalwear-orders-api/services"
	"github.com/kendall-kelly/formalwear-orders-api/tests/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// today is the clock of the API under test
var today = time.Date(2026, 3, 19, 10, 0, 0, 0, time.UTC)

// apiHarness is a running order API backed by an in-memory database
type apiHarness struct {
	db     *gorm.DB
	server *httptest.Server
}

func newAPIHarness(t *testing.T, auth0ID, role string) *apiHarness {
	gin.SetMode(gin.TestMode)
	config.SetLogger(zap.NewNop())

	db := testutil.NewTestDB(t)
	controllers.Now = func() time.Time { return today }

	engine := router.New(&config.Config{}, testutil.MockAuthMiddleware(auth0ID, role))
	server := httptest.NewServer(engine)

	t.Cleanup(func() {
		server.Close()
		controllers.Now = time.Now
	})
	return &apiHarness{db: db, server: server}
}

func (h *apiHarness) client() *services.OrderAPIClient {
	return services.NewOrderAPIClient(services.Session{
		BaseURL: h.server.URL + "/api/v1",
		Token:   "mock-token",
	}, h.server.Client())
}

func (h *apiHarness) seedEmployee(t *testing.T, auth0ID, name, role string) models.Employee {
	e := models.Employee{
		Auth0ID: auth0ID,
		Name:    name,
		Email:   name + "@example.com",
		Role:    role,
		Active:  true,
	}
	require.NoError(t, h.db.Create(&e).Error)
	return e
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	buf, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(buf)
}
