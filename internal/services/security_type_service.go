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

// defaultSecurityTypes are the classifications seeded by
// EnsureDefaultSecurityTypes.
var defaultSecurityTypes = []struct {
	Name        string
	Description string
}{
	{"Equity", "Shares of stock in a company"},
	{"Bond", "Fixed income debt instrument"},
	{"ETF", "Exchange-traded fund"},
	{"Mutual Fund", "Pooled investment fund priced once a day"},
	{"Cash Equivalent", "Money market and other short-term holdings"},
}

// securityTypeService handles the shared security type lookup.
type securityTypeService struct {
	db *gorm.DB
}

// NewSecurityTypeService creates a new SecurityTypeServicer.
func NewSecurityTypeService(db *gorm.DB) SecurityTypeServicer {
	return &securityTypeService{db: db}
}

// CreateSecurityType stores a new classification with a unique name.
func (s *securityTypeService) CreateSecurityType(ctx context.Context, name string, description *string) (*models.SecurityType, error) {
	st := models.NewSecurityType(strings.TrimSpace(name), description)
	if err := validator.Struct(st); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(st).Error; err != nil {
		return nil, writeError(err, apperrors.ErrDuplicateSecurityType, apperrors.ErrReferenceNotFound)
	}
	return st, nil
}

// GetSecurityTypeByID returns a security type by its ID.
func (s *securityTypeService) GetSecurityTypeByID(ctx context.Context, id string) (*models.SecurityType, error) {
	id, err := parseID(id, apperrors.ErrSecurityTypeNotFound)
	if err != nil {
		return nil, err
	}
	var st models.SecurityType
	if err := s.db.WithContext(ctx).First(&st, "id = ?", id).Error; err != nil {
		return nil, readError(err, apperrors.ErrSecurityTypeNotFound)
	}
	return &st, nil
}

// GetSecurityTypeByName returns the security type with exactly this name.
func (s *securityTypeService) GetSecurityTypeByName(ctx context.Context, name string) (*models.SecurityType, error) {
	var st models.SecurityType
	if err := s.db.WithContext(ctx).Where("name = ?", strings.TrimSpace(name)).First(&st).Error; err != nil {
		return nil, readError(err, apperrors.ErrSecurityTypeNotFound)
	}
	return &st, nil
}

// ListSecurityTypes returns a page of security types ordered by name.
func (s *securityTypeService) ListSecurityTypes(ctx context.Context, page pagination.PageRequest) (*pagination.Page[models.SecurityType], error) {
	page = page.Normalize()

	var totalItems int64
	base := s.db.WithContext(ctx).Model(&models.SecurityType{})
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var types []models.SecurityType
	if err := base.Order("name ASC").Scopes(pagination.Paginate(page)).Find(&types).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPage(types, page, totalItems)
	return &result, nil
}

// UpdateSecurityType renames or re-describes a security type.
func (s *securityTypeService) UpdateSecurityType(ctx context.Context, id string, upd SecurityTypeUpdate) (*models.SecurityType, error) {
	st, err := s.GetSecurityTypeByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if upd.Name != nil {
		st.Name = strings.TrimSpace(*upd.Name)
		updates["name"] = st.Name
	}
	switch {
	case upd.ClearDescription:
		st.Description = nil
		updates["description"] = nil
	case upd.Description != nil:
		st.Description = upd.Description
		updates["description"] = *upd.Description
	}
	if len(updates) == 0 {
		return st, nil
	}
	if err := validator.Struct(st); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&models.SecurityType{}).Where("id = ?", st.ID).Updates(updates).Error; err != nil {
		return nil, writeError(err, apperrors.ErrDuplicateSecurityType, apperrors.ErrReferenceNotFound)
	}
	return st, nil
}

// ReassignSecurityType moves every security of type fromID to type toID and
// returns how many were moved.
func (s *securityTypeService) ReassignSecurityType(ctx context.Context, fromID, toID string) (int64, error) {
	fromID, err := parseID(fromID, apperrors.ErrSecurityTypeNotFound)
	if err != nil {
		return 0, err
	}
	toID, err = parseID(toID, apperrors.ErrSecurityTypeNotFound)
	if err != nil {
		return 0, err
	}
	if fromID == toID {
		return 0, apperrors.ErrSameSecurityType
	}

	var moved int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireSecurityType(tx, fromID); err != nil {
			return err
		}
		if err := requireSecurityType(tx, toID); err != nil {
			return err
		}

		result := tx.Model(&models.Security{}).Where("type_id = ?", fromID).
			Updates(map[string]interface{}{"type_id": toID, "updated_at": time.Now().UTC()})
		if result.Error != nil {
			return writeError(result.Error, apperrors.ErrUniqueViolation, apperrors.ErrSecurityTypeNotFound)
		}
		moved = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Named("security_types").Infow("securities reassigned",
		"from_type_id", fromID,
		"to_type_id", toID,
		"moved", moved,
	)
	return moved, nil
}

// DeleteSecurityType removes a security type no security refers to. Types in
// use are rejected with ErrSecurityTypeInUse.
func (s *securityTypeService) DeleteSecurityType(ctx context.Context, id string) error {
	id, err := parseID(id, apperrors.ErrSecurityTypeNotFound)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireSecurityType(tx, id); err != nil {
			return err
		}

		var inUse int64
		if err := tx.Model(&models.Security{}).Where("type_id = ?", id).Count(&inUse).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if inUse > 0 {
			logger.Named("security_types").Warnw("security type delete rejected", "type_id", id, "securities", inUse)
			return apperrors.ErrSecurityTypeInUse
		}

		if err := tx.Delete(&models.SecurityType{}, "id = ?", id).Error; err != nil {
			if isForeignKeyError(err) {
				return apperrors.Wrap(apperrors.ErrSecurityTypeInUse, err)
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// EnsureDefaultSecurityTypes creates any missing default classification.
// Existing rows, including edited descriptions, are left as they are.
func (s *securityTypeService) EnsureDefaultSecurityTypes(ctx context.Context) ([]models.SecurityType, error) {
	types := make([]models.SecurityType, 0, len(defaultSecurityTypes))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, d := range defaultSecurityTypes {
			description := d.Description
			st := models.SecurityType{}
			if err := tx.Where(models.SecurityType{Name: d.Name}).
				Attrs(models.SecurityType{Description: &description}).
				FirstOrCreate(&st).Error; err != nil {
				return writeError(err, apperrors.ErrDuplicateSecurityType, apperrors.ErrReferenceNotFound)
			}
			types = append(types, st)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return types, nil
}
