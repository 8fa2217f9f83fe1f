package services

import (
	"context"
	"math"

	"checkout-service/repository"
)

// Settings keys for externally configured rates. Values live in the
// settings table and are read through the cache.
const (
	SettingTaxRate               = "tax_rate"
	SettingShippingFlatRate      = "shipping_flat_rate"
	SettingFreeShippingThreshold = "free_shipping_threshold"
)

const (
	defaultTaxRate               = 0.10
	defaultShippingFlatRate      = 500
	defaultFreeShippingThreshold = 5000
)

// PriceSummary is the priced breakdown of a validated cart, in minor
// currency units.
type PriceSummary struct {
	Subtotal int `json:"subtotal"`
	Tax      int `json:"tax"`
	Shipping int `json:"shipping"`
	Total    int `json:"total"`
}

// Pricer computes price summaries from configured rates.
type Pricer struct {
	settings repository.SettingsProvider
}

func NewPricer(settings repository.SettingsProvider) *Pricer {
	return &Pricer{settings: settings}
}

// Price computes tax and shipping for the given subtotal. Orders at or
// above the free-shipping threshold ship free.
func (p *Pricer) Price(ctx context.Context, subtotal int) PriceSummary {
	taxRate := p.settings.GetValue(ctx, SettingTaxRate, defaultTaxRate)
	shippingRate := p.settings.GetValue(ctx, SettingShippingFlatRate, defaultShippingFlatRate)
	freeThreshold := p.settings.GetValue(ctx, SettingFreeShippingThreshold, defaultFreeShippingThreshold)

	tax := int(math.Round(float64(subtotal) * taxRate))
	shipping := int(shippingRate)
	if float64(subtotal) >= freeThreshold {
		shipping = 0
	}

	return PriceSummary{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal + tax + shipping,
	}
}
