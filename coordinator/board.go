package coordinator

import (
	"context"
	"fmt"
	"sync"

	"github.com/kendall-kelly/formalwear-orders-api/dto"
)

// BoardSource lists orders and counts them per phase
type BoardSource interface {
	ListOrders(ctx context.Context, filter dto.OrderFilter) ([]dto.OrderRecord, error)
	CountOrders(ctx context.Context) (dto.PhaseCounts, error)
}

// Board keeps the order list and the per-phase counts an operator is
// looking at. It is the Refresher the coordinator reloads after actions.
type Board struct {
	source BoardSource

	mu     sync.RWMutex
	filter dto.OrderFilter
	orders []dto.OrderRecord
	counts dto.PhaseCounts
}

// NewBoard returns an empty board over source
func NewBoard(source BoardSource, filter dto.OrderFilter) *Board {
	return &Board{source: source, filter: filter, counts: dto.PhaseCounts{}}
}

// SetFilter changes the listing filter used by the next Refresh
func (b *Board) SetFilter(filter dto.OrderFilter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter = filter
}

// Refresh reloads the list and the counts. On failure the previous contents
// are kept.
func (b *Board) Refresh(ctx context.Context) error {
	b.mu.RLock()
	filter := b.filter
	b.mu.RUnlock()

	orders, err := b.source.ListOrders(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list orders: %w", err)
	}
	counts, err := b.source.CountOrders(ctx)
	if err != nil {
		return fmt.Errorf("failed to count orders: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.orders = orders
	b.counts = counts
	return nil
}

// Orders returns a copy of the current list
func (b *Board) Orders() []dto.OrderRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]dto.OrderRecord(nil), b.orders...)
}

// Counts returns a copy of the current counts
func (b *Board) Counts() dto.PhaseCounts {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(dto.PhaseCounts, len(b.counts))
	for k, v := range b.counts {
		out[k] = v
	}
	return out
}

// Find returns the listed order with id, nil when it is not on the board
func (b *Board) Find(id uint) *dto.OrderRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for i := range b.orders {
		if b.orders[i].ID == id {
			rec := b.orders[i]
			return &rec
		}
	}
	return nil
}
