package repository

import (
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/model"
	"gorm.io/gorm"
)

type ConnectorRepository struct {
	db *gorm.DB
}

func NewConnectorRepository(db *gorm.DB) *ConnectorRepository {
	return &ConnectorRepository{db: db}
}

func (r *ConnectorRepository) Create(c *model.Connector) error {
	return r.db.Create(c).Error
}

// ListActive returns active connectors with their profile loaded.
func (r *ConnectorRepository) ListActive() ([]model.Connector, error) {
	var connectors []model.Connector
	err := r.db.
		Preload("Profile").
		Preload("Profile.DisabledAlgorithms").
		Where("active = ?", true).
		Order("id ASC").
		Find(&connectors).Error
	return connectors, err
}

func (r *ConnectorRepository) FindByID(id uint) (*model.Connector, error) {
	var c model.Connector
	err := r.db.
		Preload("Profile").
		Preload("Profile.DisabledAlgorithms").
		First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindActiveByKind returns the first active connector of a kind for a
// company, or nil.
func (r *ConnectorRepository) FindActiveByKind(companyID uint, kind model.ActionKind) (*model.Connector, error) {
	var connectors []model.Connector
	err := r.db.
		Preload("Profile").
		Preload("Profile.DisabledAlgorithms").
		Where("active = ? AND company_id = ? AND action_kind = ?", true, companyID, kind).
		Order("id ASC").
		Limit(1).
		Find(&connectors).Error
	if err != nil || len(connectors) == 0 {
		return nil, err
	}
	return &connectors[0], nil
}
