// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/your-org/procurement-backend/internal/domain/cart"
	"github.com/your-org/procurement-backend/internal/domain/delivery"
	"github.com/your-org/procurement-backend/internal/domain/pricing"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Reference tables first, then cart lines
	models := []interface{}{
		&pricing.Unit{},
		&pricing.VatRule{},
		&delivery.Rule{},
		&cart.Line{},
	}

	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// Unit and VAT reference indexes
		"CREATE INDEX IF NOT EXISTS idx_units_base_unit ON units(base_unit)",
		"CREATE INDEX IF NOT EXISTS idx_vat_rules_category ON vat_rules(category_id)",

		// Delivery rule indexes
		"CREATE INDEX IF NOT EXISTS idx_delivery_rules_supplier_active ON delivery_rules(supplier_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_delivery_rules_zone ON delivery_rules(zone)",

		// Cart line indexes
		"CREATE INDEX IF NOT EXISTS idx_cart_lines_org_supplier ON cart_lines(org_id, supplier_id)",
		"CREATE INDEX IF NOT EXISTS idx_cart_lines_supplier_item ON cart_lines(supplier_id, supplier_item_id)",
		"CREATE INDEX IF NOT EXISTS idx_cart_lines_created_at ON cart_lines(created_at DESC)",
	}

	for _, index := range indexes {
		if err := m.db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	log.Println("✅ Database indexes created successfully")
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	log.Println("🔄 Seeding initial data...")

	if err := m.seedUnits(); err != nil {
		return err
	}
	if err := m.seedVatRules(); err != nil {
		return err
	}
	if err := m.seedDeliveryRules(); err != nil {
		return err
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

func (m *Migration) seedUnits() error {
	var count int64
	m.db.Model(&pricing.Unit{}).Count(&count)
	if count > 0 {
		return nil // Already seeded
	}

	base := func(s string) *string { return &s }
	factor := func(v float64) *float64 { return &v }

	units := []pricing.Unit{
		{Code: "kg", Name: "Kilogram", BaseUnit: base("kg"), ConversionFactor: factor(1)},
		{Code: "g", Name: "Gram", BaseUnit: base("kg"), ConversionFactor: factor(0.001)},
		{Code: "l", Name: "Litre", BaseUnit: base("l"), ConversionFactor: factor(1)},
		{Code: "ml", Name: "Millilitre", BaseUnit: base("l"), ConversionFactor: factor(0.001)},
		{Code: "cl", Name: "Centilitre", BaseUnit: base("l"), ConversionFactor: factor(0.01)},
		{Code: "pcs", Name: "Piece", BaseUnit: base("pcs"), ConversionFactor: factor(1)},
		{Code: "box", Name: "Box"},
	}

	for _, unit := range units {
		if err := m.db.Create(&unit).Error; err != nil {
			return fmt.Errorf("failed to seed unit %s: %w", unit.Code, err)
		}
	}

	return nil
}

func (m *Migration) seedVatRules() error {
	var count int64
	m.db.Model(&pricing.VatRule{}).Count(&count)
	if count > 0 {
		return nil // Already seeded
	}

	rules := []pricing.VatRule{
		{Code: "standard", Rate: 0.24},
		{Code: "reduced", Rate: 0.12},
		{Code: "zero", Rate: 0},
	}

	for _, rule := range rules {
		if err := m.db.Create(&rule).Error; err != nil {
			return fmt.Errorf("failed to seed VAT rule %s: %w", rule.Code, err)
		}
	}

	return nil
}

func (m *Migration) seedDeliveryRules() error {
	var count int64
	m.db.Model(&delivery.Rule{}).Count(&count)
	if count > 0 {
		return nil // Already seeded
	}

	threshold := func(v float64) *float64 { return &v }

	rules := []delivery.Rule{
		{
			SupplierID:           "demo-supplier-1",
			Zone:                 "default",
			FreeThresholdExVat:   threshold(100),
			FlatFee:              10,
			FuelSurchargePct:     5,
			PalletDepositPerUnit: 2,
			DeliveryDays:         []int{1, 3, 5},
			IsActive:             true,
		},
		{
			SupplierID:         "demo-supplier-2",
			Zone:               "default",
			FreeThresholdExVat: threshold(250),
			FlatFee:            25,
			DeliveryDays:       []int{2, 4},
			Tiers: []delivery.FeeTier{
				{Threshold: 0, Fee: 25},
				{Threshold: 100, Fee: 15},
				{Threshold: 200, Fee: 5},
			},
			IsActive: true,
		},
	}

	for _, rule := range rules {
		if err := m.db.Create(&rule).Error; err != nil {
			return fmt.Errorf("failed to seed delivery rule for %s: %w", rule.SupplierID, err)
		}
	}

	return nil
}

// GetTableInfo returns information about database tables
func (m *Migration) GetTableInfo() error {
	tables := []string{"units", "vat_rules", "delivery_rules", "cart_lines"}

	log.Println("📊 Database table info:")
	for _, table := range tables {
		var count int64
		if err := m.db.Table(table).Count(&count).Error; err != nil {
			log.Printf("  %s: error counting rows: %v", table, err)
			continue
		}
		log.Printf("  %s: %d rows", table, count)
	}

	return nil
}

// DropAllTables drops all application tables. Development use only.
func (m *Migration) DropAllTables() error {
	models := []interface{}{
		&cart.Line{},
		&delivery.Rule{},
		&pricing.VatRule{},
		&pricing.Unit{},
	}

	for _, model := range models {
		if err := m.db.Migrator().DropTable(model); err != nil {
			return fmt.Errorf("failed to drop table for %T: %w", model, err)
		}
	}

	return nil
}
