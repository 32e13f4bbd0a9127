package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Store struct{ db *gorm.DB }

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

func (s *Store) LookupAPIKey(ctx context.Context, key string) (Identity, error) {
	var row struct {
		CompanyID string
		UserID    string
	}
	res := s.db.WithContext(ctx).
		Table("api_keys").
		Select("api_keys.company_id AS company_id, api_keys.user_id AS user_id").
		Joins("JOIN users ON users.id = api_keys.user_id").
		Where("api_keys.key = ? AND api_keys.state_id = ? AND users.state_id = ?", key, "ACTIVE", "ACTIVE").
		Limit(1).
		Scan(&row)
	if res.Error != nil {
		return Identity{}, fmt.Errorf("query api key: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return Identity{}, ErrNotFound
	}
	return Identity{CompanyID: row.CompanyID, UserID: row.UserID}, nil
}

// FiscalYearStart returns the first month of the company's fiscal year, or
// January when the company has no setting.
func (s *Store) FiscalYearStart(ctx context.Context, companyID string) (time.Month, error) {
	var setting CompanySetting
	err := s.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.January, nil
	}
	if err != nil {
		return time.January, fmt.Errorf("query company settings: %w", err)
	}
	if setting.FiscalYearStartMonth < 1 || setting.FiscalYearStartMonth > 12 {
		return time.January, nil
	}
	return time.Month(setting.FiscalYearStartMonth), nil
}
