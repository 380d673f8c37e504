// Package fuels defines the fuel property catalog consumed by the mix
// and process optimizers.
package fuels

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// Handling classifies how difficult a fuel is to receive, store and feed.
// The tier bounds the share a fuel may take in a blend and carries a cost
// surcharge for the extra handling infrastructure.
type Handling string

const (
	HandlingLow    Handling = "low"
	HandlingMedium Handling = "medium"
	HandlingHigh   Handling = "high"
)

// MixCap returns the maximum energy share a non-baseline fuel of this
// tier may take in a blend, before seasonal scaling.
func (h Handling) MixCap() float64 {
	switch h {
	case HandlingLow:
		return 0.45
	case HandlingMedium:
		return 0.35
	case HandlingHigh:
		return 0.25
	}
	return 0
}

// CostPerGJ returns the handling surcharge in USD per GJ of energy
// delivered from a fuel of this tier.
func (h Handling) CostPerGJ() decimal.Decimal {
	switch h {
	case HandlingMedium:
		return decimal.NewFromFloat(0.30)
	case HandlingHigh:
		return decimal.NewFromFloat(0.60)
	}
	return decimal.Zero
}

// Availability classifies how reliably a fuel can be sourced.
type Availability string

const (
	AvailabilityUnlimited Availability = "unlimited"
	AvailabilityHigh      Availability = "high"
	AvailabilityMedium    Availability = "medium"
	AvailabilitySeasonal  Availability = "seasonal"
)

// Profile is an immutable record of one fuel's physical and economic
// properties.
type Profile struct {
	Name string

	// CalorificValue is the lower heating value in MJ/kg.
	CalorificValue float64

	// Ash and Moisture are mass fractions in [0, 1].
	Ash      float64
	Moisture float64

	// CostPerGJ is the delivered fuel cost in USD per GJ, excluding the
	// handling surcharge.
	CostPerGJ decimal.Decimal

	// CO2PerGJ is the combustion emission intensity in kg CO2 per GJ.
	CO2PerGJ float64

	Handling     Handling
	Availability Availability

	// Seasonal maps calendar months to availability multipliers applied
	// to the handling-tier mix cap. Months without an entry use 1.0.
	Seasonal map[time.Month]float64
}

// SeasonalFactor returns the availability multiplier for the month.
func (p Profile) SeasonalFactor(m time.Month) float64 {
	if f, ok := p.Seasonal[m]; ok {
		return f
	}
	return 1.0
}

// EffectiveCap returns the maximum blend fraction for the fuel in the
// given month. The baseline fuel is uncapped; other fuels get their
// handling-tier cap scaled by the seasonal multiplier.
func (p Profile) EffectiveCap(m time.Month) float64 {
	if p.Availability == AvailabilityUnlimited {
		return 1.0
	}
	c := p.Handling.MixCap() * p.SeasonalFactor(m)
	if c > 1 {
		c = 1
	}
	return c
}

// TotalCostPerGJ returns fuel cost plus the handling surcharge.
func (p Profile) TotalCostPerGJ() decimal.Decimal {
	return p.CostPerGJ.Add(p.Handling.CostPerGJ())
}

// Catalog is an ordered, immutable set of fuel profiles with exactly one
// unlimited baseline fuel, stored first.
type Catalog struct {
	fuels []Profile
	index map[string]int
}

// New builds a catalog from the given profiles. It validates that all
// fractions and intensities are non-negative and that exactly one fuel
// has unlimited availability. The baseline is moved to position 0.
func New(profiles []Profile) (*Catalog, error) {
	if len(profiles) == 0 {
		return nil, errors.New("fuels: catalog must contain at least one fuel")
	}

	var verr error
	baseline := -1
	for i, p := range profiles {
		if p.Name == "" {
			verr = multierr.Append(verr, fmt.Errorf("fuels: profile %d has no name", i))
		}
		if p.CalorificValue <= 0 {
			verr = multierr.Append(verr, fmt.Errorf("fuels: %s: calorific value must be positive", p.Name))
		}
		if p.Ash < 0 || p.Ash > 1 {
			verr = multierr.Append(verr, fmt.Errorf("fuels: %s: ash fraction out of [0,1]", p.Name))
		}
		if p.Moisture < 0 || p.Moisture > 1 {
			verr = multierr.Append(verr, fmt.Errorf("fuels: %s: moisture fraction out of [0,1]", p.Name))
		}
		if p.CostPerGJ.IsNegative() {
			verr = multierr.Append(verr, fmt.Errorf("fuels: %s: cost must be non-negative", p.Name))
		}
		if p.CO2PerGJ < 0 {
			verr = multierr.Append(verr, fmt.Errorf("fuels: %s: CO2 intensity must be non-negative", p.Name))
		}
		if p.Availability == AvailabilityUnlimited {
			if baseline >= 0 {
				verr = multierr.Append(verr, fmt.Errorf("fuels: %s: second unlimited fuel, baseline must be unique", p.Name))
			} else {
				baseline = i
			}
		}
	}
	if baseline < 0 {
		verr = multierr.Append(verr, errors.New("fuels: no unlimited baseline fuel"))
	}
	if verr != nil {
		return nil, verr
	}

	ordered := make([]Profile, 0, len(profiles))
	ordered = append(ordered, profiles[baseline])
	for i, p := range profiles {
		if i != baseline {
			ordered = append(ordered, p)
		}
	}

	index := make(map[string]int, len(ordered))
	for i, p := range ordered {
		if _, dup := index[p.Name]; dup {
			return nil, fmt.Errorf("fuels: duplicate fuel %q", p.Name)
		}
		index[p.Name] = i
	}

	return &Catalog{fuels: ordered, index: index}, nil
}

// Default returns the built-in plant catalog.
func Default() *Catalog {
	c, err := New(defaultProfiles())
	if err != nil {
		// The built-in table is validated by tests; a failure here is a
		// programming error.
		panic(err)
	}
	return c
}

// Baseline returns the unlimited baseline fuel.
func (c *Catalog) Baseline() Profile {
	return c.fuels[0]
}

// Fuels returns the profiles in catalog order, baseline first.
func (c *Catalog) Fuels() []Profile {
	out := make([]Profile, len(c.fuels))
	copy(out, c.fuels)
	return out
}

// Get returns the profile for the named fuel.
func (c *Catalog) Get(name string) (Profile, bool) {
	i, ok := c.index[name]
	if !ok {
		return Profile{}, false
	}
	return c.fuels[i], true
}

// Names returns the fuel names in catalog order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.fuels))
	for i, p := range c.fuels {
		out[i] = p.Name
	}
	return out
}

// Len returns the number of cataloged fuels.
func (c *Catalog) Len() int {
	return len(c.fuels)
}

func defaultProfiles() []Profile {
	return []Profile{
		{
			Name:           "coal",
			CalorificValue: 25.5,
			Ash:            0.12,
			Moisture:       0.08,
			CostPerGJ:      decimal.NewFromFloat(3.2),
			CO2PerGJ:       94.6,
			Handling:       HandlingLow,
			Availability:   AvailabilityUnlimited,
		},
		{
			Name:           "rice_husk",
			CalorificValue: 16.2,
			Ash:            0.18,
			Moisture:       0.10,
			CostPerGJ:      decimal.NewFromFloat(1.8),
			CO2PerGJ:       9.5,
			Handling:       HandlingMedium,
			Availability:   AvailabilitySeasonal,
			Seasonal: map[time.Month]float64{
				time.January: 1.2, time.February: 1.0, time.March: 0.8,
				time.April: 0.5, time.May: 0.3, time.June: 0.4,
				time.July: 0.6, time.August: 0.8, time.September: 1.0,
				time.October: 1.2, time.November: 1.3, time.December: 1.2,
			},
		},
		{
			Name:           "rdf",
			CalorificValue: 18.5,
			Ash:            0.15,
			Moisture:       0.20,
			CostPerGJ:      decimal.NewFromFloat(0.5),
			CO2PerGJ:       37.8,
			Handling:       HandlingMedium,
			Availability:   AvailabilityHigh,
		},
		{
			Name:           "biomass",
			CalorificValue: 14.8,
			Ash:            0.08,
			Moisture:       0.30,
			CostPerGJ:      decimal.NewFromFloat(2.1),
			CO2PerGJ:       4.7,
			Handling:       HandlingHigh,
			Availability:   AvailabilitySeasonal,
			Seasonal: map[time.Month]float64{
				time.January: 0.7, time.February: 0.6, time.March: 0.5,
				time.April: 0.8, time.May: 1.0, time.June: 1.2,
				time.July: 1.0, time.August: 0.9, time.September: 0.8,
				time.October: 0.7, time.November: 0.6, time.December: 0.7,
			},
		},
		{
			Name:           "petcoke",
			CalorificValue: 32.0,
			Ash:            0.04,
			Moisture:       0.015,
			CostPerGJ:      decimal.NewFromFloat(2.8),
			CO2PerGJ:       102.0,
			Handling:       HandlingLow,
			Availability:   AvailabilityHigh,
		},
		{
			Name:           "plastic_waste",
			CalorificValue: 28.0,
			Ash:            0.10,
			Moisture:       0.05,
			CostPerGJ:      decimal.NewFromFloat(0.8),
			CO2PerGJ:       50.0,
			Handling:       HandlingHigh,
			Availability:   AvailabilityMedium,
		},
	}
}
