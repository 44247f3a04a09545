package enrichment

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"atlas/server/internal/models"
	"atlas/server/internal/rental"
)

// compLimit is how many comparables a refresh asks the provider for.
const compLimit = 8

// Enricher refreshes a property's enrichment data from a rental-data
// provider. The network phase is all-or-nothing: if any of the three
// fetches fails, nothing is written. The persist phase commits the
// property update, the new estimate row and the replaced comp set in
// one transaction.
type Enricher struct {
	db       *gorm.DB
	provider rental.Provider
	logger   *logrus.Logger
}

func NewEnricher(db *gorm.DB, provider rental.Provider, logger *logrus.Logger) *Enricher {
	return &Enricher{db: db, provider: provider, logger: logger}
}

// Preview runs the same three fetches as Refresh for an arbitrary
// address without touching the database, returning the raw payloads.
func (e *Enricher) Preview(address string) (rental.Record, rental.Record, []rental.Record, error) {
	details, estimate, comps, err := e.fetch(address)
	if err != nil {
		return nil, nil, nil, err
	}
	return details, estimate, comps, nil
}

// Refresh fetches details, estimate and comps for the property,
// merges them with per-field presence checks and persists the result.
// The property is mutated in place only after all fetches succeed.
func (e *Enricher) Refresh(property *models.Property) error {
	address := fmt.Sprintf("%s, %s, %s %s", property.Address, property.City, property.State, property.Zip)

	details, estimate, comps, err := e.fetch(address)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	mergeDetails(property, details)

	// A check happened even when nothing changed
	property.RcLastCheckedAt = &now

	if score, ok := floatField(estimate, "confidenceScore"); ok {
		property.RcConfidence = score
	}

	var newEstimate *models.RentEstimate
	if len(estimate) > 0 {
		newEstimate = &models.RentEstimate{
			PropertyID: property.ID,
			Estimate:   floatOrZero(estimate, "rent"),
			Low:        floatOrZero(estimate, "lowRent"),
			High:       floatOrZero(estimate, "highRent"),
		}
		property.MonthlyRent = newEstimate.Estimate

		if value, ok := floatField(details, "estimatedValue"); ok {
			property.LastValuation = value
			property.LastValuationAt = &now
		}
	}

	newComps := make([]models.RentComp, 0, len(comps))
	for _, comp := range comps {
		newComps = append(newComps, models.RentComp{
			PropertyID:   property.ID,
			Address:      stringOrEmpty(comp, "address"),
			DistanceMi:   floatOrZero(comp, "distance"),
			MonthlyRent:  floatOrZero(comp, "rent"),
			Bed:          floatOrZero(comp, "bedrooms"),
			Bath:         floatOrZero(comp, "bathrooms"),
			Sqft:         floatOrZero(comp, "squareFootage"),
			DaysOnMarket: intOrZero(comp, "daysOnMarket"),
		})
	}

	err = e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(property).Error; err != nil {
			return fmt.Errorf("failed to update property: %w", err)
		}
		if newEstimate != nil {
			if err := tx.Create(newEstimate).Error; err != nil {
				return fmt.Errorf("failed to append rent estimate: %w", err)
			}
		}
		if err := tx.Where("property_id = ?", property.ID).Delete(&models.RentComp{}).Error; err != nil {
			return fmt.Errorf("failed to clear rent comps: %w", err)
		}
		if len(newComps) > 0 {
			if err := tx.Create(&newComps).Error; err != nil {
				return fmt.Errorf("failed to insert rent comps: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.logger.WithFields(logrus.Fields{
		"property_id": property.ID,
		"comps":       len(newComps),
		"estimated":   newEstimate != nil,
	}).Info("Property enrichment refreshed")

	return nil
}

// fetch runs the three provider calls sequentially; any failure voids
// the whole refresh. No database work happens here.
func (e *Enricher) fetch(address string) (rental.Record, rental.Record, []rental.Record, error) {
	details, err := e.provider.GetPropertyDetails(address)
	if err != nil {
		return nil, nil, nil, err
	}
	estimate, err := e.provider.GetRentEstimate(address)
	if err != nil {
		return nil, nil, nil, err
	}
	comps, err := e.provider.GetRentComps(address, compLimit)
	if err != nil {
		return nil, nil, nil, err
	}
	return details, estimate, comps, nil
}

// mergeDetails copies each enrichable field onto the property if and
// only if the provider sent it; missing or null fields leave the
// stored value alone.
func mergeDetails(property *models.Property, details rental.Record) {
	if bedrooms, ok := floatField(details, "bedrooms"); ok {
		property.Bedrooms = bedrooms
	}
	if bathrooms, ok := floatField(details, "bathrooms"); ok {
		property.Bathrooms = bathrooms
	}
	if sqft, ok := floatField(details, "squareFootage"); ok {
		property.LivingAreaSqft = sqft
	} else if sqft, ok := floatField(details, "livingAreaSqFt"); ok {
		property.LivingAreaSqft = sqft
	}
	if year, ok := intField(details, "yearBuilt"); ok && year != 0 {
		property.YearBuilt = &year
	}
	if id, ok := stringField(details, "id"); ok {
		property.RcSourceID = &id
	}
}
