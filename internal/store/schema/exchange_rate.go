package schema

import (
	"time"
)

// ExchangeRate represents the exchange_rates table. At most one row per
// currency pair is open (valid_until IS NULL) at any time; saving a new rate
// closes the previous row and inserts the new one in the same transaction.
type ExchangeRate struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// FromCurrency is the ISO 4217 code the rate converts from
	FromCurrency string `gorm:"column:from_currency;not null;type:text;index:idx_exchange_rates_pair,priority:1"`
	// ToCurrency is the ISO 4217 code the rate converts to
	ToCurrency string `gorm:"column:to_currency;not null;type:text;index:idx_exchange_rates_pair,priority:2"`
	// Rate is the multiplier applied to amounts in FromCurrency
	Rate float64 `gorm:"column:rate;not null"`
	// ValidFrom is when this rate became the current one
	ValidFrom time.Time `gorm:"column:valid_from;not null"`
	// ValidUntil is when this rate was superseded; nil means it is current
	ValidUntil *time.Time `gorm:"column:valid_until"`
	// CreatedAt is the timestamp when this row was inserted
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
}

// TableName specifies the table name for the ExchangeRate model
func (ExchangeRate) TableName() string {
	return "exchange_rates"
}
