package models

import (
	"fmt"

	"gorm.io/gorm"
)

// All lists every model in migration order
var All = []interface{}{
	&Employee{},
	&RefusalReason{},
	&ServiceOrder{},
	&OrderItem{},
	&OrderAccessory{},
	&PickupPayment{},
	&PhaseEvent{},
}

// AutoMigrate creates or updates the schema of every model
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(All...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// SeedRefusalReasons fills the reason catalog when it is empty
func SeedRefusalReasons(db *gorm.DB) error {
	var count int64
	if err := db.Model(&RefusalReason{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count refusal reasons: %w", err)
	}
	if count > 0 {
		return nil
	}

	reasons := make([]RefusalReason, 0, len(DefaultRefusalReasons))
	for _, label := range DefaultRefusalReasons {
		reasons = append(reasons, RefusalReason{Label: label, Active: true})
	}
	if err := db.Create(&reasons).Error; err != nil {
		return fmt.Errorf("failed to seed refusal reasons: %w", err)
	}
	return nil
}
