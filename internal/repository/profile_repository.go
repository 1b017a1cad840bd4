package repository

import (
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/model"
	"gorm.io/gorm"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(p *model.ConnectionProfile) error {
	return r.db.Create(p).Error
}

// Save updates every column, associations excluded.
func (r *ProfileRepository) Save(p *model.ConnectionProfile) error {
	return r.db.Omit("DisabledAlgorithms").Save(p).Error
}

func (r *ProfileRepository) FindByID(id uint) (*model.ConnectionProfile, error) {
	var p model.ConnectionProfile
	if err := r.db.Preload("DisabledAlgorithms").First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) FindByName(name string) (*model.ConnectionProfile, error) {
	var p model.ConnectionProfile
	if err := r.db.Preload("DisabledAlgorithms").Where("name = ?", name).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) FindAll() ([]model.ConnectionProfile, error) {
	var profiles []model.ConnectionProfile
	err := r.db.Preload("DisabledAlgorithms").Order("id ASC").Find(&profiles).Error
	return profiles, err
}

// SetDisabledAlgorithms replaces the profile's algorithm exclusions.
func (r *ProfileRepository) SetDisabledAlgorithms(profileID uint, names []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("profile_id = ?", profileID).Delete(&model.DisabledAlgorithm{}).Error; err != nil {
			return err
		}
		for _, name := range names {
			if err := tx.Create(&model.DisabledAlgorithm{ProfileID: profileID, Name: name}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
