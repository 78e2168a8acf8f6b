package store

import "github.com/voicelane/frontdesk/core"

// DefaultTreatments is the static treatment and pricing catalog seeded into
// every backend at schema initialization. Seeding is idempotent: existing
// rows are never overwritten.
func DefaultTreatments() []core.Treatment {
	return []core.Treatment{
		{ID: "basic_cleaning", Name: "Basic Cleaning", Description: "Regular dental cleaning and polishing", PriceRangeMin: 120, PriceRangeMax: 150, DurationMinutes: 45, Category: "preventive"},
		{ID: "general_checkup", Name: "General Checkup", Description: "Comprehensive oral examination", PriceRangeMin: 80, PriceRangeMax: 100, DurationMinutes: 30, Category: "preventive"},
		{ID: "bitewing_xray", Name: "Bitewing X-rays", Description: "X-rays to check for cavities between teeth", PriceRangeMin: 25, PriceRangeMax: 40, DurationMinutes: 5, Category: "diagnostic"},
		{ID: "panoramic_xray", Name: "Panoramic X-ray", Description: "Full mouth X-ray for comprehensive view", PriceRangeMin: 100, PriceRangeMax: 130, DurationMinutes: 10, Category: "diagnostic"},
		{ID: "composite_filling", Name: "Composite Filling", Description: "Tooth-colored filling material", PriceRangeMin: 150, PriceRangeMax: 250, DurationMinutes: 30, Category: "restorative"},
		{ID: "amalgam_filling", Name: "Amalgam Filling", Description: "Silver filling material", PriceRangeMin: 100, PriceRangeMax: 200, DurationMinutes: 30, Category: "restorative"},
		{ID: "root_canal", Name: "Root Canal", Description: "Treatment for infected tooth pulp", PriceRangeMin: 800, PriceRangeMax: 1200, DurationMinutes: 90, Category: "endodontic"},
		{ID: "crown", Name: "Crown", Description: "Cap to restore damaged tooth", PriceRangeMin: 1000, PriceRangeMax: 1500, DurationMinutes: 60, Category: "restorative"},
		{ID: "teeth_whitening", Name: "Teeth Whitening", Description: "Professional teeth whitening treatment", PriceRangeMin: 300, PriceRangeMax: 500, DurationMinutes: 90, Category: "cosmetic"},
		{ID: "extraction", Name: "Tooth Extraction", Description: "Removal of damaged or problematic tooth", PriceRangeMin: 150, PriceRangeMax: 400, DurationMinutes: 45, Category: "surgical"},
		{ID: "deep_cleaning", Name: "Deep Cleaning (per quadrant)", Description: "Scaling and root planing for gum disease", PriceRangeMin: 200, PriceRangeMax: 300, DurationMinutes: 60, Category: "periodontal"},
	}
}
