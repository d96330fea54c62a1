package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Jasemalbateni/academybase-sub001/config"
	"github.com/Jasemalbateni/academybase-sub001/utils"
	"github.com/google/uuid"
)

type Academy struct {
	ID          uuid.UUID `gorm:"primary_key" json:"id"`
	LogoUrl     string    `json:"logo_url"`
	Name        string    `gorm:"index;size:100;not null" json:"name" binding:"required"`
	ContactName string    `gorm:"size:100" json:"contact_name"`
	Email       string    `gorm:"size:255" json:"email"`
	Phone       string    `gorm:"size:20" json:"phone"`
	Website     string    `gorm:"size:255" json:"website"`
	About       string    `gorm:"type:text" json:"about"`
	Address     string    `gorm:"type:text" json:"address"`
	Country     string    `gorm:"size:100"  json:"country"`
	City        string    `gorm:"size:100"  json:"city"`
	Timezone    string    `gorm:"size:50" json:"timezone"`
	// user create?
	PrimaryBranchId int       `gorm:"not null" json:"primary_branch_id"`
	IsActive        *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewAcademy struct {
	LogoUrl     string `json:"logo_url"`
	Name        string `json:"name" binding:"required"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email" binding:"required"`
	Phone       string `json:"phone"`
	Website     string `json:"website"`
	About       string `json:"about"`
	Address     string `json:"address"`
	Country     string `json:"country"`
	City        string `json:"city"`
	Timezone    string `json:"timezone"`
}

func (academy *Academy) StoreRedis() error {
	return config.SetRedisObject("Academy:"+fmt.Sprint(academy.ID), academy, 0)
}

func (academy *Academy) RemoveRedis() error {
	return config.RemoveRedisKey("Academy:" + fmt.Sprint(academy.ID))
}

func (input *NewAcademy) validate(ctx context.Context, id string) error {
	// name
	if err := utils.ValidateUnique[Academy](ctx, "", "name", input.Name, id); err != nil {
		return err
	}
	// email
	if !utils.IsValidEmail(input.Email) {
		return errors.New("invalid email address")
	}
	if err := utils.ValidateUnique[Academy](ctx, "", "email", input.Email, id); err != nil {
		return err
	}
	// phone
	if input.Phone != "" {
		if err := utils.ValidateUnique[Academy](ctx, "", "phone", input.Phone, id); err != nil {
			return err
		}
	}
	return nil
}

func CreateAcademy(ctx context.Context, input *NewAcademy) (*Academy, error) {
	// only admin have access

	// When creating an academy,
	// - create default branch.
	// - create 'Owner' user.
	if err := input.validate(ctx, ""); err != nil {
		return nil, err
	}
	db := config.GetDB()

	tx := db.Begin()

	AID := uuid.New()
	timezone := input.Timezone
	if timezone == "" {
		timezone = utils.DefaultTimezone()
	}

	academy := Academy{
		ID:          AID,
		LogoUrl:     input.LogoUrl,
		Name:        input.Name,
		ContactName: input.ContactName,
		Email:       input.Email,
		Phone:       input.Phone,
		Website:     input.Website,
		About:       input.About,
		Address:     input.Address,
		Country:     input.Country,
		City:        input.City,
		Timezone:    timezone,
		IsActive:    utils.NewTrue(),
	}

	// create academy
	err := tx.WithContext(ctx).Create(&academy).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// create defaults for the new academy
	academyId := academy.ID.String()
	ctx = utils.SetAcademyIdInContext(ctx, academyId)

	_, err = CreateDefaultOwner(tx, ctx, academyId, academy.Email, academy.Name)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	branchInput := &NewBranch{
		Name: "Main Branch",
	}
	branch, err := CreateDefaultBranch(tx, ctx, branchInput, academyId)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// Update Primary Branch
	err = tx.WithContext(ctx).Model(&academy).Updates(map[string]interface{}{
		"PrimaryBranchId": branch.ID,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err = tx.Commit().Error; err != nil {
		return nil, err
	}

	// caching
	if err := utils.ClearRedisAdmin[Academy](); err != nil {
		return nil, err
	}

	return &academy, nil
}

// EnsureAcademyDefaults backfills the default branch for academies created
// before the defaults existed (primary_branch_id = 0). Returns the number of
// academies repaired.
func EnsureAcademyDefaults(ctx context.Context) (int, error) {
	db := config.GetDB()
	var academies []Academy
	if err := db.WithContext(ctx).
		Where("primary_branch_id = 0").
		Find(&academies).Error; err != nil {
		return 0, err
	}

	repaired := 0
	for _, academy := range academies {
		academyId := academy.ID.String()
		academyCtx := utils.SetAcademyIdInContext(ctx, academyId)

		tx := db.Begin()
		branch, err := CreateDefaultBranch(tx, academyCtx, &NewBranch{Name: "Main Branch"}, academyId)
		if err != nil {
			return repaired, fmt.Errorf("academy %s: %w", academyId, err)
		}
		if err := tx.WithContext(academyCtx).Model(&Academy{}).
			Where("id = ?", academyId).
			Update("PrimaryBranchId", branch.ID).Error; err != nil {
			tx.Rollback()
			return repaired, fmt.Errorf("academy %s: %w", academyId, err)
		}
		if err := tx.Commit().Error; err != nil {
			return repaired, fmt.Errorf("academy %s: %w", academyId, err)
		}
		repaired++
	}
	return repaired, nil
}

func UpdateAcademy(ctx context.Context, input *NewAcademy) (*Academy, error) {

	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return nil, errors.New("academy id is required")
	}

	if err := input.validate(ctx, academyId); err != nil {
		return nil, err
	}

	// db action
	db := config.GetDB()
	var academy Academy
	if err := db.WithContext(ctx).Where("id = ?", academyId).First(&academy).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	err := db.WithContext(ctx).Model(&academy).Updates(map[string]interface{}{
		"LogoUrl":     input.LogoUrl,
		"Name":        input.Name,
		"ContactName": input.ContactName,
		"Email":       input.Email,
		"Phone":       input.Phone,
		"Website":     input.Website,
		"About":       input.About,
		"Address":     input.Address,
		"Country":     input.Country,
		"City":        input.City,
		// "Timezone":    input.Timezone,
	}).Error
	if err != nil {
		return nil, err
	}

	// caching
	if err := academy.RemoveRedis(); err != nil {
		return nil, err
	}
	if err := utils.ClearRedisAdmin[Academy](); err != nil {
		return nil, err
	}
	return &academy, nil
}

func ToggleActiveAcademy(ctx context.Context, id uuid.UUID, isActive bool) (*Academy, error) {

	db := config.GetDB()
	var result Academy

	// check exists
	err := db.WithContext(ctx).Where("id = ?", id).First(&result).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	// db action
	tx := db.Begin()
	err = tx.WithContext(ctx).Model(&result).Updates(map[string]interface{}{
		"IsActive": isActive,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// toggling related users
	// db action
	err = tx.WithContext(ctx).Model(&User{}).Where("academy_id = ?", id).Updates(map[string]interface{}{
		"IsActive": isActive,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// caching
	if err := result.RemoveRedis(); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := utils.ClearRedisAdmin[Academy](); err != nil {
		tx.Rollback()
		return nil, err
	}
	return &result, tx.Commit().Error
}

func GetAcademyById(ctx context.Context, id string) (*Academy, error) {

	var result Academy

	exists, err := config.GetRedisObject("Academy:"+id, &result)
	if err != nil {
		return nil, err
	}

	if !exists {
		db := config.GetDB()
		// db query
		err := db.WithContext(ctx).Where("id = ?", id).First(&result).Error
		if err != nil {
			return nil, utils.ErrorRecordNotFound
		}
		// caching
		if err := result.StoreRedis(); err != nil {
			return nil, err
		}
	}
	return &result, nil
}

func GetAcademy(ctx context.Context) (*Academy, error) {

	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return nil, errors.New("academy id is required")
	}
	return GetAcademyById(ctx, academyId)
}

func GetAcademies(ctx context.Context, name *string) ([]*Academy, error) {

	db := config.GetDB()
	var results []*Academy

	dbCtx := db.WithContext(ctx)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	// db query
	err := dbCtx.Order("name").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ActiveAcademyIds lists the ids of every active academy, for the background
// workers iterating tenants.
func ActiveAcademyIds(ctx context.Context) ([]string, error) {

	db := config.GetDB()
	var ids []string
	err := db.WithContext(ctx).Model(&Academy{}).
		Where("is_active = ?", true).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// TimezoneFor returns the academy's timezone, falling back to the service default.
func TimezoneFor(ctx context.Context, academyId string) string {
	academy, err := GetAcademyById(ctx, academyId)
	if err != nil || academy.Timezone == "" {
		return utils.DefaultTimezone()
	}
	return academy.Timezone
}
