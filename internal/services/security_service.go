package services

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "counselor/internal/errors"
	"counselor/internal/models"
	"counselor/internal/validator"
)

// securityService handles the holdings of portfolios.
type securityService struct {
	db *gorm.DB
}

// NewSecurityService creates a new SecurityServicer.
func NewSecurityService(db *gorm.DB) SecurityServicer {
	return &securityService{db: db}
}

// AddSecurity records a holding in an existing portfolio.
func (s *securityService) AddSecurity(
	ctx context.Context,
	portfolioID, typeID, name string,
	purchasePrice decimal.Decimal,
	quantity int,
	purchaseDate datatypes.Date,
) (*models.Security, error) {
	security := models.NewSecurity(
		canonicalRef(portfolioID),
		canonicalRef(typeID),
		strings.TrimSpace(name),
		purchasePrice,
		quantity,
		purchaseDate,
	)
	if err := validator.Struct(security); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requirePortfolio(tx, security.PortfolioID); err != nil {
			return err
		}
		if err := requireSecurityType(tx, security.TypeID); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(security).Error; err != nil {
			return writeError(err, apperrors.ErrUniqueViolation, apperrors.ErrReferenceNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return security, nil
}

// GetSecurityByID returns a holding with its type loaded.
func (s *securityService) GetSecurityByID(ctx context.Context, id string) (*models.Security, error) {
	id, err := parseID(id, apperrors.ErrSecurityNotFound)
	if err != nil {
		return nil, err
	}
	var security models.Security
	if err := s.db.WithContext(ctx).Preload("Type").First(&security, "id = ?", id).Error; err != nil {
		return nil, readError(err, apperrors.ErrSecurityNotFound)
	}
	return &security, nil
}

// ListPortfolioSecurities returns every holding of a portfolio ordered by
// purchase date, then name.
func (s *securityService) ListPortfolioSecurities(ctx context.Context, portfolioID string) ([]models.Security, error) {
	portfolioID, err := parseID(portfolioID, apperrors.ErrPortfolioNotFound)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	if err := requirePortfolio(db, portfolioID); err != nil {
		return nil, err
	}

	securities := []models.Security{}
	if err := db.Preload("Type").
		Where("portfolio_id = ?", portfolioID).
		Order("purchase_date ASC, name ASC, id ASC").
		Find(&securities).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return securities, nil
}

// UpdateSecurity applies the non-nil fields of upd and refreshes updated_at.
func (s *securityService) UpdateSecurity(ctx context.Context, id string, upd SecurityUpdate) (*models.Security, error) {
	id, err := parseID(id, apperrors.ErrSecurityNotFound)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var security models.Security
		if err := tx.First(&security, "id = ?", id).Error; err != nil {
			return readError(err, apperrors.ErrSecurityNotFound)
		}

		updates := map[string]interface{}{}
		if upd.TypeID != nil && canonicalRef(*upd.TypeID) != security.TypeID {
			security.TypeID = canonicalRef(*upd.TypeID)
			if security.TypeID != "" {
				if err := requireSecurityType(tx, security.TypeID); err != nil {
					return err
				}
			}
			updates["type_id"] = security.TypeID
		}
		if upd.Name != nil {
			security.Name = strings.TrimSpace(*upd.Name)
			updates["name"] = security.Name
		}
		if upd.PurchasePrice != nil {
			security.PurchasePrice = *upd.PurchasePrice
			updates["purchase_price"] = security.PurchasePrice
		}
		if upd.Quantity != nil {
			security.Quantity = *upd.Quantity
			updates["quantity"] = security.Quantity
		}
		if upd.PurchaseDate != nil {
			security.PurchaseDate = *upd.PurchaseDate
			updates["purchase_date"] = security.PurchaseDate
		}
		if len(updates) == 0 {
			return nil
		}
		if err := validator.Struct(&security); err != nil {
			return err
		}

		updates["updated_at"] = time.Now().UTC()
		if err := tx.Model(&models.Security{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return writeError(err, apperrors.ErrUniqueViolation, apperrors.ErrSecurityTypeNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetSecurityByID(ctx, id)
}

// RemoveSecurity deletes a single holding. Its type is kept.
func (s *securityService) RemoveSecurity(ctx context.Context, id string) error {
	id, err := parseID(id, apperrors.ErrSecurityNotFound)
	if err != nil {
		return err
	}
	result := s.db.WithContext(ctx).Delete(&models.Security{}, "id = ?", id)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrSecurityNotFound
	}
	return nil
}

func requirePortfolio(tx *gorm.DB, id string) error {
	found, err := exists(tx, &models.Portfolio{}, id)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !found {
		return apperrors.ErrPortfolioNotFound
	}
	return nil
}

func requireSecurityType(tx *gorm.DB, id string) error {
	found, err := exists(tx, &models.SecurityType{}, id)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !found {
		return apperrors.ErrSecurityTypeNotFound
	}
	return nil
}
