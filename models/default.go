package models

import (
	"context"

	"github.com/Jasemalbateni/academybase-sub001/utils"
	"gorm.io/gorm"
)

func CreateDefaultOwner(tx *gorm.DB, ctx context.Context, academyId string, email string, name string) (*User, error) {

	hashedPassword, err := utils.HashPassword("default123")
	if err != nil {
		return &User{}, err
	}

	owner := User{
		AcademyId: academyId,
		Username:  email,
		Name:      name,
		Email:     &email,
		Password:  string(hashedPassword),
		IsActive:  utils.NewTrue(),
		Role:      UserRoleOwner,
	}
	if err := tx.WithContext(ctx).Create(&owner).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	return &owner, nil
}

func CreateDefaultBranch(tx *gorm.DB, ctx context.Context, input *NewBranch, academyId string) (*Branch, error) {

	branch := Branch{
		AcademyId:    academyId,
		Name:         input.Name,
		TrainingDays: input.TrainingDays,
		IsActive:     utils.NewTrue(),
	}

	if err := tx.WithContext(ctx).Create(&branch).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	return &branch, nil
}
