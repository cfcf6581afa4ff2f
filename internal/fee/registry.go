package fee

import (
	"errors"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrUnsupportedMethod = errors.New("unsupported_payment_method")

// Catalog maps payment method identifiers to fee strategies. It is built
// once at startup and read-only afterwards.
type Catalog struct {
	strategies map[string]Strategy
}

// NewCatalog registers the given strategies keyed by lowercased method name.
func NewCatalog(strategies ...Strategy) *Catalog {
	catalog := &Catalog{strategies: map[string]Strategy{}}
	for _, strategy := range strategies {
		if strategy == nil {
			continue
		}
		method := strings.ToLower(strings.TrimSpace(strategy.Method()))
		if method == "" {
			continue
		}
		catalog.strategies[method] = strategy
	}
	return catalog
}

// PercentageFor resolves the fee percentage for a method and installment
// count. Method lookup is case-insensitive.
func (c *Catalog) PercentageFor(method string, installments int) (decimal.Decimal, error) {
	if c == nil {
		return decimal.Decimal{}, ErrUnsupportedMethod
	}
	strategy, ok := c.strategies[strings.ToLower(strings.TrimSpace(method))]
	if !ok {
		return decimal.Decimal{}, ErrUnsupportedMethod
	}
	return strategy.Percentage(installments), nil
}

// Supports reports whether the method is registered.
func (c *Catalog) Supports(method string) bool {
	if c == nil {
		return false
	}
	_, ok := c.strategies[strings.ToLower(strings.TrimSpace(method))]
	return ok
}

// SupportedMethods returns the registered method names, lowercased and sorted.
func (c *Catalog) SupportedMethods() []string {
	if c == nil {
		return nil
	}
	methods := make([]string, 0, len(c.strategies))
	for method := range c.strategies {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return methods
}
