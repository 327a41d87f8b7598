// internal/domain/delivery/store.go
package delivery

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// RuleStore supplies the current active delivery rule set. The calculator
// caches the result; store failures propagate to the caller unretried.
type RuleStore interface {
	ActiveRules(ctx context.Context) ([]Rule, error)
}

// GormRuleStore reads delivery rules from Postgres.
type GormRuleStore struct {
	db *gorm.DB
}

// NewGormRuleStore creates a rule store over the given database.
func NewGormRuleStore(db *gorm.DB) *GormRuleStore {
	return &GormRuleStore{db: db}
}

// ActiveRules returns all active delivery rules.
func (s *GormRuleStore) ActiveRules(ctx context.Context) ([]Rule, error) {
	var rules []Rule
	err := s.db.WithContext(ctx).Where("is_active = ?", true).Find(&rules).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load delivery rules: %w", err)
	}
	return rules, nil
}
