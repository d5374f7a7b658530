package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "counselor/internal/errors"
	"counselor/internal/logger"
	"counselor/internal/models"
	"counselor/internal/pagination"
	"counselor/internal/validator"
)

// advisorService handles advisor records.
type advisorService struct {
	db *gorm.DB
}

// NewAdvisorService creates a new AdvisorServicer.
func NewAdvisorService(db *gorm.DB) AdvisorServicer {
	return &advisorService{db: db}
}

// CreateAdvisor stores a new advisor. The email is stored normalized.
func (s *advisorService) CreateAdvisor(ctx context.Context, firstName, lastName, email string, phoneNumber *string) (*models.Advisor, error) {
	advisor := models.NewAdvisor(
		strings.TrimSpace(firstName),
		strings.TrimSpace(lastName),
		normalizeEmail(email),
		phoneNumber,
	)
	if err := validator.Struct(advisor); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(advisor).Error; err != nil {
		return nil, writeError(err, apperrors.ErrDuplicateAdvisor, apperrors.ErrReferenceNotFound)
	}
	return advisor, nil
}

// GetAdvisorByID returns an advisor by its ID.
func (s *advisorService) GetAdvisorByID(ctx context.Context, id string) (*models.Advisor, error) {
	id, err := parseID(id, apperrors.ErrAdvisorNotFound)
	if err != nil {
		return nil, err
	}
	var advisor models.Advisor
	if err := s.db.WithContext(ctx).First(&advisor, "id = ?", id).Error; err != nil {
		return nil, readError(err, apperrors.ErrAdvisorNotFound)
	}
	return &advisor, nil
}

// GetAdvisorByEmail returns the advisor with the given email, compared
// case-insensitively.
func (s *advisorService) GetAdvisorByEmail(ctx context.Context, email string) (*models.Advisor, error) {
	var advisor models.Advisor
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&advisor).Error; err != nil {
		return nil, readError(err, apperrors.ErrAdvisorNotFound)
	}
	return &advisor, nil
}

// ListAdvisors returns a page of advisors ordered by last name, then first name.
func (s *advisorService) ListAdvisors(ctx context.Context, page pagination.PageRequest) (*pagination.Page[models.Advisor], error) {
	page = page.Normalize()

	var totalItems int64
	base := s.db.WithContext(ctx).Model(&models.Advisor{})
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var advisors []models.Advisor
	if err := base.Order("last_name ASC, first_name ASC, id ASC").Scopes(pagination.Paginate(page)).Find(&advisors).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPage(advisors, page, totalItems)
	return &result, nil
}

// UpdateAdvisor applies the non-nil fields of upd.
func (s *advisorService) UpdateAdvisor(ctx context.Context, id string, upd AdvisorUpdate) (*models.Advisor, error) {
	advisor, err := s.GetAdvisorByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if upd.FirstName != nil {
		advisor.FirstName = strings.TrimSpace(*upd.FirstName)
		updates["first_name"] = advisor.FirstName
	}
	if upd.LastName != nil {
		advisor.LastName = strings.TrimSpace(*upd.LastName)
		updates["last_name"] = advisor.LastName
	}
	if upd.Email != nil {
		advisor.Email = normalizeEmail(*upd.Email)
		updates["email"] = advisor.Email
	}
	switch {
	case upd.ClearPhoneNumber:
		advisor.PhoneNumber = nil
		updates["phone_number"] = nil
	case upd.PhoneNumber != nil:
		advisor.PhoneNumber = upd.PhoneNumber
		updates["phone_number"] = *upd.PhoneNumber
	}
	if len(updates) == 0 {
		return advisor, nil
	}
	if err := validator.Struct(advisor); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&models.Advisor{}).Where("id = ?", advisor.ID).Updates(updates).Error; err != nil {
		return nil, writeError(err, apperrors.ErrDuplicateAdvisor, apperrors.ErrReferenceNotFound)
	}
	return advisor, nil
}

// RecordLogin stamps the advisor's last login time.
func (s *advisorService) RecordLogin(ctx context.Context, id string, at time.Time) error {
	id, err := parseID(id, apperrors.ErrAdvisorNotFound)
	if err != nil {
		return err
	}
	result := s.db.WithContext(ctx).Model(&models.Advisor{}).Where("id = ?", id).Update("last_login", timestamp(at))
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrAdvisorNotFound
	}
	return nil
}

// DeleteAdvisor removes an advisor that no longer has clients. Advisors with
// clients are rejected with ErrAdvisorHasClients; reassign the clients first.
func (s *advisorService) DeleteAdvisor(ctx context.Context, id string) error {
	id, err := parseID(id, apperrors.ErrAdvisorNotFound)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := exists(tx, &models.Advisor{}, id)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if !found {
			return apperrors.ErrAdvisorNotFound
		}

		var clients int64
		if err := tx.Model(&models.Client{}).Where("advisor_id = ?", id).Count(&clients).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if clients > 0 {
			logger.Named("advisors").Warnw("advisor delete rejected", "advisor_id", id, "clients", clients)
			return apperrors.ErrAdvisorHasClients
		}

		if err := tx.Delete(&models.Advisor{}, "id = ?", id).Error; err != nil {
			if isForeignKeyError(err) {
				return apperrors.Wrap(apperrors.ErrAdvisorHasClients, err)
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}
