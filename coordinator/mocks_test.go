package coordinator

import (
	"context"
	"errors"
	"sync"

	"github.com/kendall-kelly/formalwear-orders-api/dto"
	"github.com/kendall-kelly/formalwear-orders-api/lifecycle"
)

type apiCall struct {
	action  lifecycle.Action
	orderID uint
	body    interface{}
}

// mockLifecycleAPI applies transitions to in-memory records
type mockLifecycleAPI struct {
	mu      sync.Mutex
	orders  map[uint]*dto.OrderRecord
	calls   []apiCall
	err     error
	block   chan struct{}
	entered chan struct{}
}

func newMockLifecycleAPI(orders ...dto.OrderRecord) *mockLifecycleAPI {
	m := &mockLifecycleAPI{orders: make(map[uint]*dto.OrderRecord)}
	for i := range orders {
		o := orders[i]
		m.orders[o.ID] = &o
	}
	return m
}

func (m *mockLifecycleAPI) apply(action lifecycle.Action, id uint, body interface{}) (*dto.OrderRecord, error) {
	if m.entered != nil {
		m.entered <- struct{}{}
	}
	if m.block != nil {
		<-m.block
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, apiCall{action: action, orderID: id, body: body})
	if m.err != nil {
		return nil, m.err
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, errors.New("order not found")
	}
	next, err := lifecycle.Next(lifecycle.Phase(o.Phase), action)
	if err != nil {
		return nil, err
	}
	o.Phase = string(next)
	rec := *o
	return &rec, nil
}

func (m *mockLifecycleAPI) Calls() []apiCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]apiCall(nil), m.calls...)
}

func (m *mockLifecycleAPI) Assign(ctx context.Context, id uint, req dto.AssignRequest) (*dto.OrderRecord, error) {
	return m.apply(lifecycle.ActionAssign, id, req)
}

func (m *mockLifecycleAPI) StartProduction(ctx context.Context, id uint) (*dto.OrderRecord, error) {
	return m.apply(lifecycle.ActionStartProduction, id, nil)
}

func (m *mockLifecycleAPI) MarkReady(ctx context.Context, id uint) (*dto.OrderRecord, error) {
	return m.apply(lifecycle.ActionMarkReady, id, nil)
}

func (m *mockLifecycleAPI) Pickup(ctx context.Context, id uint, req dto.PickupRequest) (*dto.OrderRecord, error) {
	return m.apply(lifecycle.ActionPickup, id, req)
}

func (m *mockLifecycleAPI) MarkReturned(ctx context.Context, id uint) (*dto.OrderRecord, error) {
	return m.apply(lifecycle.ActionMarkReturned, id, nil)
}

func (m *mockLifecycleAPI) Refuse(ctx context.Context, id uint, req dto.RefuseRequest) (*dto.OrderRecord, error) {
	return m.apply(lifecycle.ActionRefuse, id, req)
}

func (m *mockLifecycleAPI) ReturnToPending(ctx context.Context, id uint) (*dto.OrderRecord, error) {
	return m.apply(lifecycle.ActionReturnToPending, id, nil)
}

// mockDirectory counts lookups so tests can check they are lazy
type mockDirectory struct {
	employees     []dto.EmployeeSummary
	reasons       []dto.RefusalReason
	err           error
	employeeCalls int
	reasonCalls   int
}

func (m *mockDirectory) ListEmployees(ctx context.Context, activeOnly bool) ([]dto.EmployeeSummary, error) {
	m.employeeCalls++
	if m.err != nil {
		return nil, m.err
	}
	var out []dto.EmployeeSummary
	for _, e := range m.employees {
		if !activeOnly || e.Active {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockDirectory) ListRefusalReasons(ctx context.Context) ([]dto.RefusalReason, error) {
	m.reasonCalls++
	return m.reasons, m.err
}

// scriptedConfirmer answers every prompt with answer and keeps the prompts
type scriptedConfirmer struct {
	answer  bool
	prompts []string
}

func (s *scriptedConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	s.prompts = append(s.prompts, prompt)
	return s.answer, nil
}

type countingRefresher struct {
	calls int
	err   error
}

func (r *countingRefresher) Refresh(ctx context.Context) error {
	r.calls++
	return r.err
}
