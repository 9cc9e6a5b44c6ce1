package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/formalwear-orders-api/config"
	"github.com/kendall-kelly/formalwear-orders-api/controllers"
	"github.com/kendall-kelly/formalwear-orders-api/coordinator"
	"github.com/kendall-kelly/formalwear-orders-api/dto"
	"github.com/kendall-kelly/formalwear-orders-api/intake"
	"github.com/kendall-kelly/formalwear-orders-api/lifecycle"
	"github.com/kendall-kelly/formalwear-orders-api/models"
	"github.com/kendall-kelly/formalwear-orders-api/router"
	"github.com/kendall-kelly/formalwear-orders-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const rentalDraft = `
client.name: Joana Prado
client.phone: (11) 98765-4321
client.tax_id: 123.456.789-09
client.postal_code: 01310-100
client.street: Avenida Paulista
client.number: "1000"
client.neighborhood: Bela Vista
client.city: Sao Paulo
client.state: SP

jacket.number: 50
jacket.color: black
jacket.sleeve: long
jacket.brand: Ricardo Almeida
jacket.adjustment: shorten sleeves 2cm
jacket.adjustment_enabled: true
shirt.number: 3
shirt.color: white
shirt.sleeve: long
shirt.brand: Dudalina
trousers.number: 44
trousers.color: black
trousers.length: 102
trousers.brand: Ricardo Almeida

tie.enabled: true
tie.color: wine
tie.brand: Hugo

payment.modality: Aluguel
payment.total: 300.10
payment.advance: "146,70"
dates.order: 2026-03-01
dates.event: 2026-03-20
dates.pickup: 2026-03-18
dates.return: 2026-03-23
`

type testAPI struct {
	db     *gorm.DB
	server *httptest.Server
}

func newTestAPI(t *testing.T) *testAPI {
	gin.SetMode(gin.TestMode)
	config.SetLogger(zap.NewNop())
	t.Setenv("LOG_LEVEL", "error")

	db := testutil.NewTestDB(t)
	controllers.Now = func() time.Time { return time.Date(2026, 3, 19, 10, 0, 0, 0, time.UTC) }

	engine := router.New(&config.Config{}, testutil.MockAuthMiddleware("auth0|marta", dto.RoleAdministrator))
	server := httptest.NewServer(engine)

	t.Cleanup(func() {
		server.Close()
		controllers.Now = time.Now
	})

	marta := models.Employee{Auth0ID: "auth0|marta", Name: "Marta", Email: "marta@example.com", Role: dto.RoleAttendant, Active: true}
	require.NoError(t, db.Create(&marta).Error)
	return &testAPI{db: db, server: server}
}

// run executes ordersctl against the test API with stdin as the operator's answers
func (a *testAPI) run(t *testing.T, stdin string, args ...string) (string, error) {
	c := &cli{httpClient: a.server.Client()}
	cmd := newRootCmd(c)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--api-url", a.server.URL + "/api/v1", "--token", "test-token"}, args...))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (a *testAPI) phase(t *testing.T, id uint) string {
	var order models.ServiceOrder
	require.NoError(t, a.db.First(&order, id).Error)
	return string(order.Phase)
}

func writeDraft(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "draft.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestOrdersctl_Lifecycle(t *testing.T) {
	api := newTestAPI(t)

	out, err := api.run(t, "", "intake", writeDraft(t, rentalDraft))
	require.NoError(t, err, out)
	assert.Contains(t, out, "Order #1 saved")

	out, err = api.run(t, "", "actions", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Order #1: PENDING")
	assert.Contains(t, out, "assign")
	assert.Contains(t, out, "start_production")
	assert.Contains(t, out, "refuse")

	out, err = api.run(t, "", "assign", "1", "--attendant", "marta")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Order #1 is now PENDING")

	_, err = api.run(t, "", "start", "1")
	require.NoError(t, err)
	_, err = api.run(t, "", "ready", "1")
	require.NoError(t, err)
	assert.Equal(t, "AWAITING_PICKUP", api.phase(t, 1))

	out, err = api.run(t, "n\n", "pickup", "1", "--pay", "100:pix", "--pay", "53,40:cash")
	require.NoError(t, err)
	assert.Contains(t, out, "Outstanding balance: 153.40")
	assert.Contains(t, out, "Cancelled.")
	assert.Equal(t, "AWAITING_PICKUP", api.phase(t, 1), "a declined pickup sends nothing")

	out, err = api.run(t, "y\n", "pickup", "1", "--pay", "100:pix", "--pay", "53,40:cash")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Order #1 is now AWAITING_RETURN")

	out, err = api.run(t, "", "board")
	require.NoError(t, err)
	assert.Contains(t, out, "Joana Prado")
	assert.Contains(t, out, "AWAITING_RETURN 1")

	out, err = api.run(t, "", "--yes", "returned", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Order #1 is now COMPLETED")

	out, err = api.run(t, "", "actions", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "No actions available")
}

func TestOrdersctl_IntakeValidation(t *testing.T) {
	api := newTestAPI(t)

	draft := strings.Replace(rentalDraft, "client.name: Joana Prado\n", "", 1)
	out, err := api.run(t, "", "intake", writeDraft(t, draft))
	assert.ErrorIs(t, err, errDraftInvalid)
	assert.Contains(t, out, "client.name:")

	var count int64
	require.NoError(t, api.db.Model(&models.ServiceOrder{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestOrdersctl_ExportAndEdit(t *testing.T) {
	api := newTestAPI(t)

	_, err := api.run(t, "", "intake", writeDraft(t, rentalDraft))
	require.NoError(t, err)

	exported := filepath.Join(t.TempDir(), "order-1.yaml")
	_, err = api.run(t, "", "export", "1", "-o", exported)
	require.NoError(t, err)

	entries, err := readDraftFile(exported)
	require.NoError(t, err)
	got := map[intake.FieldKey]string{}
	for _, e := range entries {
		got[e.key] = e.value
	}
	assert.Equal(t, "Joana Prado", got[intake.FieldClientName])
	assert.Equal(t, "shorten sleeves 2cm", got[intake.FieldJacketAdjustment])
	assert.Equal(t, "153.40", got[intake.FieldBalance])

	out, err := api.run(t, "", "intake", writeDraft(t, "payment.advance: 300.10\n"), "--order-id", "1")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Order #1 saved")

	var order models.ServiceOrder
	require.NoError(t, api.db.First(&order, 1).Error)
	assert.True(t, order.Balance().IsZero())
}

func TestOrdersctl_PickupMismatch(t *testing.T) {
	api := newTestAPI(t)
	_, err := api.run(t, "", "intake", writeDraft(t, rentalDraft))
	require.NoError(t, err)
	for _, args := range [][]string{{"assign", "1", "-a", "Marta"}, {"start", "1"}, {"ready", "1"}} {
		_, err := api.run(t, "", args...)
		require.NoError(t, err)
	}

	_, err = api.run(t, "", "--yes", "pickup", "1", "--pay", "100:pix")
	var recErr *lifecycle.ReconciliationError
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, lifecycle.CodePaymentSumMismatch, recErr.Code)
	assert.Equal(t, "AWAITING_PICKUP", api.phase(t, 1))

	_, err = api.run(t, "", "--yes", "pickup", "1", "--pay", "1:pix", "--pay", "1:cash", "--pay", "1:debit")
	assert.Error(t, err)
}

func TestOrdersctl_RefuseAndReopen(t *testing.T) {
	api := newTestAPI(t)
	_, err := api.run(t, "", "intake", writeDraft(t, rentalDraft))
	require.NoError(t, err)

	out, err := api.run(t, "", "--yes", "refuse", "1")
	assert.ErrorIs(t, err, coordinator.ErrNoReason)
	assert.Contains(t, out, "Refusal reasons:")

	var reason models.RefusalReason
	require.NoError(t, api.db.First(&reason).Error)

	out, err = api.run(t, "", "--yes", "refuse", "1", "--reason", reason.Label, "-j", "client gave up")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Order #1 is now REFUSED")

	out, err = api.run(t, "", "board", "--phase", "REFUSED")
	require.NoError(t, err)
	assert.Contains(t, out, "REFUSED 1")

	out, err = api.run(t, "", "reopen", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Order #1 is now PENDING")
}

func TestOrdersctl_IllegalActionIsCheckedLocally(t *testing.T) {
	api := newTestAPI(t)
	_, err := api.run(t, "", "intake", writeDraft(t, rentalDraft))
	require.NoError(t, err)

	_, err = api.run(t, "", "returned", "1")
	assert.ErrorIs(t, err, coordinator.ErrActionNotAllowed)

	_, err = api.run(t, "", "board", "--phase", "LOST")
	assert.Error(t, err)

	_, err = api.run(t, "", "actions", "0")
	assert.Error(t, err)
}

func TestParsePayments(t *testing.T) {
	got, err := parsePayments([]string{"1.234,56:PIX", " 10.00 : cash "})
	require.NoError(t, err)
	assert.Equal(t, []lifecycle.PaymentForm{
		{Amount: "1.234,56", Method: lifecycle.MethodPix},
		{Amount: "10.00", Method: lifecycle.MethodCash},
	}, got)

	_, err = parsePayments([]string{"100"})
	assert.Error(t, err)

	_, err = parsePayments([]string{"1:pix", "1:pix", "1:pix"})
	assert.Error(t, err)
}

func TestMatchAttendant(t *testing.T) {
	attendants := []dto.EmployeeSummary{{ID: 3, Name: "Marta"}, {ID: 7, Name: "Rita"}}

	assert.Equal(t, uint(3), matchAttendant(attendants, "3"))
	assert.Equal(t, uint(7), matchAttendant(attendants, "rita"))
	assert.Zero(t, matchAttendant(attendants, "9"))
	assert.Zero(t, matchAttendant(attendants, ""))
}
