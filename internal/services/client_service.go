package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "counselor/internal/errors"
	"counselor/internal/logger"
	"counselor/internal/models"
	"counselor/internal/pagination"
	"counselor/internal/validator"
)

// clientService handles client records and the client ownership cascade.
type clientService struct {
	db *gorm.DB
}

// NewClientService creates a new ClientServicer.
func NewClientService(db *gorm.DB) ClientServicer {
	return &clientService{db: db}
}

// CreateClient stores a new client of an existing advisor.
func (s *clientService) CreateClient(ctx context.Context, advisorID, firstName, lastName, email string, phoneNumber *string) (*models.Client, error) {
	client := models.NewClient(
		canonicalRef(advisorID),
		strings.TrimSpace(firstName),
		strings.TrimSpace(lastName),
		normalizeEmail(email),
		phoneNumber,
	)
	if err := validator.Struct(client); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := exists(tx, &models.Advisor{}, client.AdvisorID)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if !found {
			return apperrors.ErrAdvisorNotFound
		}
		if err := tx.Omit(clause.Associations).Create(client).Error; err != nil {
			return writeError(err, apperrors.ErrDuplicateClient, apperrors.ErrAdvisorNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// GetClientByID returns a client with its advisor loaded.
func (s *clientService) GetClientByID(ctx context.Context, id string) (*models.Client, error) {
	id, err := parseID(id, apperrors.ErrClientNotFound)
	if err != nil {
		return nil, err
	}
	var client models.Client
	if err := s.db.WithContext(ctx).Preload("Advisor").First(&client, "id = ?", id).Error; err != nil {
		return nil, readError(err, apperrors.ErrClientNotFound)
	}
	return &client, nil
}

// GetClientByEmail returns the client with the given email, compared
// case-insensitively.
func (s *clientService) GetClientByEmail(ctx context.Context, email string) (*models.Client, error) {
	var client models.Client
	if err := s.db.WithContext(ctx).Preload("Advisor").Where("email = ?", normalizeEmail(email)).First(&client).Error; err != nil {
		return nil, readError(err, apperrors.ErrClientNotFound)
	}
	return &client, nil
}

// ListClientsByAdvisor returns a page of an advisor's clients ordered by
// last name, then first name.
func (s *clientService) ListClientsByAdvisor(ctx context.Context, advisorID string, page pagination.PageRequest) (*pagination.Page[models.Client], error) {
	page = page.Normalize()
	advisorID, err := parseID(advisorID, apperrors.ErrAdvisorNotFound)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	found, err := exists(db, &models.Advisor{}, advisorID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !found {
		return nil, apperrors.ErrAdvisorNotFound
	}

	var totalItems int64
	base := db.Model(&models.Client{}).Where("advisor_id = ?", advisorID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var clients []models.Client
	if err := base.Order("last_name ASC, first_name ASC, id ASC").Scopes(pagination.Paginate(page)).Find(&clients).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPage(clients, page, totalItems)
	return &result, nil
}

// UpdateClient applies the non-nil fields of upd and refreshes updated_at.
// The returned client has its advisor loaded.
func (s *clientService) UpdateClient(ctx context.Context, id string, upd ClientUpdate) (*models.Client, error) {
	id, err := parseID(id, apperrors.ErrClientNotFound)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	var client models.Client
	if err := db.Preload("Advisor").First(&client, "id = ?", id).Error; err != nil {
		return nil, readError(err, apperrors.ErrClientNotFound)
	}

	updates := map[string]interface{}{}
	if upd.FirstName != nil {
		client.FirstName = strings.TrimSpace(*upd.FirstName)
		updates["first_name"] = client.FirstName
	}
	if upd.LastName != nil {
		client.LastName = strings.TrimSpace(*upd.LastName)
		updates["last_name"] = client.LastName
	}
	if upd.Email != nil {
		client.Email = normalizeEmail(*upd.Email)
		updates["email"] = client.Email
	}
	switch {
	case upd.ClearPhoneNumber:
		client.PhoneNumber = nil
		updates["phone_number"] = nil
	case upd.PhoneNumber != nil:
		client.PhoneNumber = upd.PhoneNumber
		updates["phone_number"] = *upd.PhoneNumber
	}
	if len(updates) == 0 {
		return &client, nil
	}
	if err := validator.Struct(&client); err != nil {
		return nil, err
	}

	ts := time.Now().UTC()
	updates["updated_at"] = ts
	if err := db.Model(&models.Client{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, writeError(err, apperrors.ErrDuplicateClient, apperrors.ErrAdvisorNotFound)
	}
	client.UpdatedAt = &ts
	return &client, nil
}

// ReassignClient moves a client to another existing advisor. The returned
// client has the new advisor loaded.
func (s *clientService) ReassignClient(ctx context.Context, id, advisorID string) (*models.Client, error) {
	id, err := parseID(id, apperrors.ErrClientNotFound)
	if err != nil {
		return nil, err
	}
	advisorID = canonicalRef(advisorID)

	var client models.Client
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&client, "id = ?", id).Error; err != nil {
			return readError(err, apperrors.ErrClientNotFound)
		}
		if client.AdvisorID == advisorID {
			return apperrors.ErrSameAdvisor
		}

		if _, err := parseID(advisorID, apperrors.ErrAdvisorNotFound); err != nil {
			return err
		}
		var advisor models.Advisor
		if err := tx.First(&advisor, "id = ?", advisorID).Error; err != nil {
			return readError(err, apperrors.ErrAdvisorNotFound)
		}

		ts := time.Now().UTC()
		if err := tx.Model(&models.Client{}).Where("id = ?", id).
			Updates(map[string]interface{}{"advisor_id": advisorID, "updated_at": ts}).Error; err != nil {
			return writeError(err, apperrors.ErrDuplicateClient, apperrors.ErrAdvisorNotFound)
		}

		logger.Named("clients").Infow("client reassigned",
			"client_id", id,
			"from_advisor_id", client.AdvisorID,
			"to_advisor_id", advisorID,
		)
		client.AdvisorID = advisorID
		client.Advisor = &advisor
		client.UpdatedAt = &ts
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// DeleteClient removes a client together with its portfolio and that
// portfolio's securities in one transaction. The advisor and security types
// are left untouched.
func (s *clientService) DeleteClient(ctx context.Context, id string) (*CascadeResult, error) {
	id, err := parseID(id, apperrors.ErrClientNotFound)
	if err != nil {
		return nil, err
	}
	result := &CascadeResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := exists(tx, &models.Client{}, id)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if !found {
			return apperrors.ErrClientNotFound
		}

		var portfolios []models.Portfolio
		if err := tx.Where("client_id = ?", id).Find(&portfolios).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		for _, p := range portfolios {
			removed, err := deletePortfolioCascade(tx, p.ID)
			if err != nil {
				return err
			}
			result.PortfolioDeleted = true
			result.SecuritiesDeleted += removed
		}

		if err := tx.Delete(&models.Client{}, "id = ?", id).Error; err != nil {
			if isForeignKeyError(err) {
				return apperrors.Wrap(apperrors.ErrReferenced, err)
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Named("clients").Infow("client deleted",
		"client_id", id,
		"portfolio_deleted", result.PortfolioDeleted,
		"securities_deleted", result.SecuritiesDeleted,
	)
	return result, nil
}
