package identity

// Rows of the identity database. The tables are owned by the product; only
// the columns read here are mapped.

type APIKey struct {
	ID        string `gorm:"primaryKey"`
	Key       string `gorm:"column:key;uniqueIndex"`
	CompanyID string
	UserID    string
	StateID   string
}

type User struct {
	ID        string `gorm:"primaryKey"`
	CompanyID string
	StateID   string
}

type CompanySetting struct {
	CompanyID            string `gorm:"primaryKey"`
	FiscalYearStartMonth int
}

func (APIKey) TableName() string         { return "api_keys" }
func (User) TableName() string           { return "users" }
func (CompanySetting) TableName() string { return "company_settings" }
