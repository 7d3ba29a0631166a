package model

// Price represents the database model for the pricing catalog
type Price struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement"`
	TaskType string `gorm:"not null;size:100;uniqueIndex:uniq_price_type_unit"`
	Unit     string `gorm:"not null;size:50;uniqueIndex:uniq_price_type_unit"`
	Amount   int64  `gorm:"not null"` // Unit price in cents
}

// TableName specifies the table name for Price
func (Price) TableName() string {
	return "prices"
}
