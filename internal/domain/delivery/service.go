// internal/domain/delivery/service.go
package delivery

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/your-org/procurement-backend/internal/domain/cart"
	"github.com/your-org/procurement-backend/internal/domain/pricing"
)

// DefaultCacheTTL is how long a fetched rule set stays valid.
const DefaultCacheTTL = 5 * time.Minute

// CalculatorConfig configures a delivery cost calculator.
type CalculatorConfig struct {
	CacheTTL time.Duration    // defaults to DefaultCacheTTL
	Clock    func() time.Time // defaults to time.Now; injected in tests
	Logger   *logrus.Logger   // defaults to logrus.StandardLogger
}

// Calculator computes delivery fees and landed costs per supplier. Rules
// are cached as a whole snapshot with a fixed TTL; a refresh replaces the
// snapshot in full, never merges into it, so concurrent reads during
// expiry stay consistent. Duplicate refreshes are harmless.
type Calculator struct {
	store RuleStore
	log   *logrus.Entry
	ttl   time.Duration
	now   func() time.Time

	mu    sync.RWMutex
	cache *ruleSnapshot
}

type ruleSnapshot struct {
	rules     map[string]Rule // keyed by supplierID + "|" + zone
	expiresAt time.Time
}

// NewCalculator creates a delivery calculator over the given rule store.
func NewCalculator(store RuleStore, cfg CalculatorConfig) *Calculator {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &Calculator{
		store: store,
		log:   cfg.Logger.WithField("component", "delivery_calculator"),
		ttl:   cfg.CacheTTL,
		now:   cfg.Clock,
	}
}

// CalculateForSupplier computes the delivery calculation for one supplier.
// Items are assumed to be already filtered to this supplier. A supplier
// with no active rule gets a zero-fee result.
func (c *Calculator) CalculateForSupplier(ctx context.Context, supplierID, supplierName string, items []cart.Line, zone string) (Calculation, error) {
	if zone == "" {
		zone = DefaultZone
	}

	rules, err := c.rules(ctx)
	if err != nil {
		return Calculation{}, err
	}

	subtotal := pricing.Known(0)
	totalQty := 0
	for i := range items {
		subtotal = subtotal.Add(items[i].SubtotalExVat())
		totalQty += items[i].Quantity
	}

	rule, ok := rules[ruleKey(supplierID, zone)]
	if !ok {
		return Calculation{
			SupplierID:        supplierID,
			SupplierName:      supplierName,
			Zone:              zone,
			SubtotalExVat:     subtotal,
			DeliveryFee:       pricing.Known(0),
			FuelSurcharge:     pricing.Known(0),
			TotalDeliveryCost: pricing.Known(0),
			LandedCost:        subtotal,
		}, nil
	}

	calc := Calculation{
		SupplierID:      supplierID,
		SupplierName:    supplierName,
		Zone:            zone,
		SubtotalExVat:   subtotal,
		ThresholdAmount: rule.FreeThresholdExVat,
		PalletDeposit:   float64(totalQty) * rule.PalletDepositPerUnit,
		NextDeliveryDay: c.NextDeliveryDay(rule.DeliveryDays),
	}

	calc.IsUnderThreshold = rule.FreeThresholdExVat != nil && subtotal.LessThan(*rule.FreeThresholdExVat)
	calc.DeliveryFee = deliveryFee(&rule, subtotal, calc.IsUnderThreshold)
	calc.FuelSurcharge = subtotal.Mul(rule.FuelSurchargePct / 100)
	calc.TotalDeliveryCost = calc.DeliveryFee.Add(calc.FuelSurcharge).AddFloat(calc.PalletDeposit)
	calc.LandedCost = subtotal.Add(calc.TotalDeliveryCost)

	if calc.IsUnderThreshold {
		if sub, known := subtotal.Value(); known {
			missing := *rule.FreeThresholdExVat - sub
			calc.AmountToFreeDelivery = &missing
		}
	}

	return calc, nil
}

// CalculateOrder groups cart items by supplier and calculates each group,
// preserving the order suppliers first appear in the input.
func (c *Calculator) CalculateOrder(ctx context.Context, items []cart.Line) ([]Calculation, error) {
	grouped := make(map[string][]cart.Line)
	var order []string
	for _, item := range items {
		if _, seen := grouped[item.SupplierID]; !seen {
			order = append(order, item.SupplierID)
		}
		grouped[item.SupplierID] = append(grouped[item.SupplierID], item)
	}

	calculations := make([]Calculation, 0, len(order))
	for _, supplierID := range order {
		calc, err := c.CalculateForSupplier(ctx, supplierID, supplierID, grouped[supplierID], DefaultZone)
		if err != nil {
			return nil, err
		}
		calculations = append(calculations, calc)
	}

	return calculations, nil
}

// OptimizeOrder composes advisory suggestions (suppliers within reach of
// free delivery) and warnings (suppliers incurring a fee). It does not
// apply anything to the cart.
func (c *Calculator) OptimizeOrder(ctx context.Context, items []cart.Line) (OrderOptimization, error) {
	calculations, err := c.CalculateOrder(ctx, items)
	if err != nil {
		return OrderOptimization{}, err
	}

	opt := OrderOptimization{
		Calculations:      calculations,
		TotalDeliveryCost: pricing.Known(0),
	}

	for _, calc := range calculations {
		opt.TotalDeliveryCost = opt.TotalDeliveryCost.Add(calc.TotalDeliveryCost)

		if calc.IsUnderThreshold && calc.AmountToFreeDelivery != nil {
			opt.Suggestions = append(opt.Suggestions, Suggestion{
				SupplierID:           calc.SupplierID,
				SupplierName:         calc.SupplierName,
				AmountToFreeDelivery: *calc.AmountToFreeDelivery,
				Message: fmt.Sprintf("Add %.2f to the %s order to reach free delivery",
					*calc.AmountToFreeDelivery, calc.SupplierName),
			})
		}

		if fee, known := calc.DeliveryFee.Value(); known && fee > 0 {
			opt.Warnings = append(opt.Warnings, Warning{
				SupplierID:   calc.SupplierID,
				SupplierName: calc.SupplierName,
				DeliveryFee:  fee,
				Message:      fmt.Sprintf("The %s order will incur a %.2f delivery fee", calc.SupplierName, fee),
			})
		}
	}

	return opt, nil
}

// NextDeliveryDay returns the next configured delivery date formatted as a
// short date ("Wed, Jul 3"), or nil when no days are configured. The day
// is strictly after today: a supplier delivering on today's weekday is
// scheduled for next week (same-day cutoff policy).
func (c *Calculator) NextDeliveryDay(deliveryDays []int) *string {
	days := make([]int, 0, len(deliveryDays))
	for _, d := range deliveryDays {
		if d >= 1 && d <= 7 {
			days = append(days, d)
		}
	}
	if len(days) == 0 {
		return nil
	}
	sort.Ints(days)

	today := c.now()
	currentDay := isoWeekday(today)

	next := 0
	for _, d := range days {
		if d > currentDay {
			next = d
			break
		}
	}

	var offset int
	if next != 0 {
		offset = next - currentDay
	} else {
		// Wrap to the earliest configured day next week.
		offset = 7 - currentDay + days[0]
	}

	formatted := today.AddDate(0, 0, offset).Format("Mon, Jan 2")
	return &formatted
}

// rules returns the cached rule snapshot, refreshing it when expired. The
// fetch happens outside the lock; the snapshot is swapped atomically.
func (c *Calculator) rules(ctx context.Context) (map[string]Rule, error) {
	c.mu.RLock()
	snapshot := c.cache
	c.mu.RUnlock()

	now := c.now()
	if snapshot != nil && now.Before(snapshot.expiresAt) {
		return snapshot.rules, nil
	}

	fetched, err := c.store.ActiveRules(ctx)
	if err != nil {
		return nil, err
	}

	rules := make(map[string]Rule, len(fetched))
	for _, rule := range fetched {
		rules[ruleKey(rule.SupplierID, rule.Zone)] = rule
	}

	fresh := &ruleSnapshot{rules: rules, expiresAt: now.Add(c.ttl)}

	c.mu.Lock()
	c.cache = fresh
	c.mu.Unlock()

	c.log.WithField("rule_count", len(rules)).Debug("delivery rule cache refreshed")

	return rules, nil
}

// deliveryFee resolves the threshold-gated fee. Tiers take precedence
// over the flat fee; the highest qualifying tier wins.
func deliveryFee(rule *Rule, subtotal pricing.Amount, underThreshold bool) pricing.Amount {
	sub, known := subtotal.Value()
	if !known && rule.FreeThresholdExVat != nil {
		// Cannot place an unknown subtotal against the threshold.
		return pricing.Pending()
	}
	if !underThreshold {
		return pricing.Known(0)
	}

	if len(rule.Tiers) > 0 {
		best := -1
		for i, tier := range rule.Tiers {
			if tier.Threshold <= sub && (best < 0 || tier.Threshold > rule.Tiers[best].Threshold) {
				best = i
			}
		}
		if best >= 0 {
			return pricing.Known(rule.Tiers[best].Fee)
		}
	}

	return pricing.Known(rule.FlatFee)
}

func ruleKey(supplierID, zone string) string {
	return supplierID + "|" + zone
}

// isoWeekday maps time.Weekday to ISO numbering where Monday=1, Sunday=7.
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
