package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "counselor/internal/errors"
	"counselor/internal/logger"
	"counselor/internal/models"
	"counselor/internal/validator"
)

// portfolioService handles portfolio records.
type portfolioService struct {
	db *gorm.DB
}

// NewPortfolioService creates a new PortfolioServicer.
func NewPortfolioService(db *gorm.DB) PortfolioServicer {
	return &portfolioService{db: db}
}

// CreatePortfolio creates the single, empty portfolio of a client.
func (s *portfolioService) CreatePortfolio(ctx context.Context, clientID string) (*models.Portfolio, error) {
	portfolio := models.NewPortfolio(canonicalRef(clientID))
	if err := validator.Struct(portfolio); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := exists(tx, &models.Client{}, portfolio.ClientID)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if !found {
			return apperrors.ErrClientNotFound
		}

		var existing int64
		if err := tx.Model(&models.Portfolio{}).Where("client_id = ?", portfolio.ClientID).Count(&existing).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if existing > 0 {
			return apperrors.ErrPortfolioExists
		}

		if err := tx.Omit(clause.Associations).Create(portfolio).Error; err != nil {
			return writeError(err, apperrors.ErrPortfolioExists, apperrors.ErrClientNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return portfolio, nil
}

// GetPortfolioByID returns a portfolio by its ID.
func (s *portfolioService) GetPortfolioByID(ctx context.Context, id string) (*models.Portfolio, error) {
	id, err := parseID(id, apperrors.ErrPortfolioNotFound)
	if err != nil {
		return nil, err
	}
	var portfolio models.Portfolio
	if err := s.db.WithContext(ctx).First(&portfolio, "id = ?", id).Error; err != nil {
		return nil, readError(err, apperrors.ErrPortfolioNotFound)
	}
	return &portfolio, nil
}

// GetPortfolioByClientID returns the portfolio owned by a client.
func (s *portfolioService) GetPortfolioByClientID(ctx context.Context, clientID string) (*models.Portfolio, error) {
	clientID, err := parseID(clientID, apperrors.ErrPortfolioNotFound)
	if err != nil {
		return nil, err
	}
	var portfolio models.Portfolio
	if err := s.db.WithContext(ctx).Where("client_id = ?", clientID).First(&portfolio).Error; err != nil {
		return nil, readError(err, apperrors.ErrPortfolioNotFound)
	}
	return &portfolio, nil
}

// UpdateTotalValue records a recomputed total value as of at. A zero at
// means now.
func (s *portfolioService) UpdateTotalValue(ctx context.Context, id string, value decimal.Decimal, at time.Time) (*models.Portfolio, error) {
	return s.update(ctx, id, map[string]interface{}{
		"total_value":  value,
		"last_updated": timestamp(at),
	})
}

// Touch refreshes last_updated without changing the total value.
func (s *portfolioService) Touch(ctx context.Context, id string, at time.Time) (*models.Portfolio, error) {
	return s.update(ctx, id, map[string]interface{}{"last_updated": timestamp(at)})
}

func (s *portfolioService) update(ctx context.Context, id string, updates map[string]interface{}) (*models.Portfolio, error) {
	id, err := parseID(id, apperrors.ErrPortfolioNotFound)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	result := db.Model(&models.Portfolio{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.ErrPortfolioNotFound
	}
	return s.GetPortfolioByID(ctx, id)
}

// DeletePortfolio removes a portfolio and its securities in one transaction.
// The owning client is kept.
func (s *portfolioService) DeletePortfolio(ctx context.Context, id string) (*CascadeResult, error) {
	id, err := parseID(id, apperrors.ErrPortfolioNotFound)
	if err != nil {
		return nil, err
	}
	result := &CascadeResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := exists(tx, &models.Portfolio{}, id)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if !found {
			return apperrors.ErrPortfolioNotFound
		}

		removed, err := deletePortfolioCascade(tx, id)
		if err != nil {
			return err
		}
		result.PortfolioDeleted = true
		result.SecuritiesDeleted = removed
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Named("portfolios").Infow("portfolio deleted",
		"portfolio_id", id,
		"securities_deleted", result.SecuritiesDeleted,
	)
	return result, nil
}

// deletePortfolioCascade deletes a portfolio's securities and then the
// portfolio itself. It must run inside a transaction.
func deletePortfolioCascade(tx *gorm.DB, portfolioID string) (int64, error) {
	securities := tx.Where("portfolio_id = ?", portfolioID).Delete(&models.Security{})
	if securities.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, securities.Error)
	}

	if err := tx.Delete(&models.Portfolio{}, "id = ?", portfolioID).Error; err != nil {
		if isForeignKeyError(err) {
			return 0, apperrors.Wrap(apperrors.ErrReferenced, err)
		}
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return securities.RowsAffected, nil
}
