package models

import "time"

type User struct {
	ID           int64       `gorm:"primaryKey" json:"id"`
	Email        string      `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string      `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"created_at"`
	Portfolios   []Portfolio `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

type Portfolio struct {
	ID            int64          `gorm:"primaryKey" json:"id"`
	UserID        int64          `gorm:"index;not null" json:"user_id"`
	Name          string         `gorm:"size:120;default:'My Portfolio'" json:"name"`
	Properties    []Property     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	StockHoldings []StockHolding `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Property is a real-estate asset. The rc_* fields plus bedrooms,
// bathrooms, living_area_sqft and year_built are written only by the
// enrichment refresh; everything else is owner-supplied.
type Property struct {
	ID                       int64      `gorm:"primaryKey" json:"id"`
	PortfolioID              int64      `gorm:"index;not null" json:"portfolio_id"`
	Address                  string     `gorm:"size:255" json:"address"`
	City                     string     `gorm:"size:120" json:"city"`
	State                    string     `gorm:"size:8" json:"state"`
	Zip                      string     `gorm:"size:16" json:"zip"`
	PurchasePrice            float64    `gorm:"default:0" json:"purchase_price"`
	PurchaseDate             *time.Time `json:"purchase_date"`
	ValuationMethod          string     `gorm:"size:32;default:'manual'" json:"valuation_method"`
	LastValuation            float64    `gorm:"default:0" json:"last_valuation"`
	LastValuationAt          *time.Time `json:"last_valuation_at"`
	MonthlyRent              float64    `gorm:"default:0" json:"monthly_rent"`
	MonthlyOperatingExpenses float64    `gorm:"default:0" json:"monthly_operating_expenses"`
	MonthlyMortgage          float64    `gorm:"default:0" json:"monthly_mortgage"`
	MortgageBalance          float64    `gorm:"default:0" json:"mortgage_balance"`
	Bedrooms                 float64    `gorm:"default:0" json:"bedrooms"`
	Bathrooms                float64    `gorm:"default:0" json:"bathrooms"`
	LivingAreaSqft           float64    `gorm:"column:living_area_sqft;default:0" json:"living_area_sqft"`
	YearBuilt                *int       `json:"year_built"`
	RcLastCheckedAt          *time.Time `gorm:"column:rc_last_checked_at" json:"rc_last_checked_at"`
	RcConfidence             float64    `gorm:"column:rc_confidence;default:0" json:"rc_confidence"`
	RcSourceID               *string    `gorm:"column:rc_source_id;size:64" json:"rc_source_id"`

	RentEstimates []RentEstimate `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	RentComps     []RentComp     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// RentEstimate is an append-only valuation history row; refreshes add
// new rows and never touch existing ones.
type RentEstimate struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	PropertyID int64     `gorm:"index;not null" json:"property_id"`
	Estimate   float64   `json:"estimate"`
	Low        float64   `json:"low"`
	High       float64   `json:"high"`
	AsOf       time.Time `gorm:"autoCreateTime" json:"as_of"`
	Provider   string    `gorm:"size:32;default:'rentcast'" json:"provider"`
}

// RentComp is a comparable-listing snapshot. The whole set for a
// property is replaced on every refresh.
type RentComp struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	PropertyID   int64     `gorm:"index;not null" json:"property_id"`
	Address      string    `gorm:"size:255" json:"address"`
	DistanceMi   float64   `gorm:"column:distance_mi;default:0" json:"distance_mi"`
	MonthlyRent  float64   `gorm:"default:0" json:"monthly_rent"`
	Bed          float64   `gorm:"default:0" json:"bed"`
	Bath         float64   `gorm:"default:0" json:"bath"`
	Sqft         float64   `gorm:"default:0" json:"sqft"`
	DaysOnMarket int       `gorm:"default:0" json:"days_on_market"`
	AsOf         time.Time `gorm:"autoCreateTime" json:"as_of"`
	Provider     string    `gorm:"size:32;default:'rentcast'" json:"provider"`
}

type StockHolding struct {
	ID          int64      `gorm:"primaryKey" json:"id"`
	PortfolioID int64      `gorm:"index;not null" json:"portfolio_id"`
	Symbol      string     `gorm:"size:16" json:"symbol"`
	Shares      float64    `gorm:"default:0" json:"shares"`
	AverageCost float64    `gorm:"default:0" json:"average_cost"`
	LastPrice   float64    `gorm:"default:0" json:"last_price"`
	LastPriceAt *time.Time `json:"last_price_at"`
	Notes       *string    `gorm:"size:255" json:"notes"`
}
