package models

import (
	"time"

	"github.com/kendall-kelly/formalwear-orders-api/dto"
	"github.com/kendall-kelly/formalwear-orders-api/lifecycle"
)

// PhaseEvent records one applied transition of an order
type PhaseEvent struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	OrderID   uint             `gorm:"not null;index" json:"order_id"`
	Action    lifecycle.Action `gorm:"type:varchar(32);not null" json:"action"`
	FromPhase lifecycle.Phase  `gorm:"type:varchar(32);not null" json:"from_phase"`
	ToPhase   lifecycle.Phase  `gorm:"type:varchar(32);not null" json:"to_phase"`
	Note      string           `gorm:"type:text" json:"note"`
	ActorID   *uint            `gorm:"index" json:"actor_id"` // nullable, employee who triggered the action
	Actor     *Employee        `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// TableName specifies the table name for the PhaseEvent model
func (PhaseEvent) TableName() string {
	return "phase_events"
}

// DTO returns the boundary shape of the event
func (e PhaseEvent) DTO() dto.PhaseEvent {
	out := dto.PhaseEvent{
		ID:        e.ID,
		Action:    string(e.Action),
		FromPhase: string(e.FromPhase),
		ToPhase:   string(e.ToPhase),
		Note:      e.Note,
		CreatedAt: e.CreatedAt,
	}
	if e.Actor != nil {
		actor := e.Actor.Summary()
		out.Actor = &actor
	}
	return out
}
