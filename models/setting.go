package models

// Setting is a key/value row for externally configured rates
// (tax rate, shipping rate, free-shipping threshold).
type Setting struct {
	Key   string  `gorm:"primaryKey" json:"key"`
	Value float64 `gorm:"not null" json:"value"`
}
