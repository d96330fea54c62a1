package models

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Jasemalbateni/academybase-sub001/config"
	"github.com/Jasemalbateni/academybase-sub001/utils"
)

type Branch struct {
	ID        int    `gorm:"primary_key" json:"id"`
	AcademyId string `gorm:"index;not null" json:"academy_id"`
	Name      string `gorm:"index;size:100;not null" json:"name" binding:"required"`
	Phone     string `gorm:"size:20" json:"phone"`
	Address   string `gorm:"type:text" json:"address"`
	// comma separated weekday ordinals, Sunday = 0. empty means no scheduled training days
	TrainingDays   string    `gorm:"size:20" json:"training_days"`
	CalendarFeedId *string   `gorm:"size:255;default:NULL" json:"calendar_feed_id"`
	IsActive       *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewBranch struct {
	Name           string  `json:"name" binding:"required"`
	Phone          string  `json:"phone"`
	Address        string  `json:"address"`
	TrainingDays   string  `json:"training_days"`
	CalendarFeedId *string `json:"calendar_feed_id"`
}

// ParseTrainingDays converts the stored csv into weekday values.
// Bad tokens or duplicates are rejected, an empty string yields an empty set.
func ParseTrainingDays(csv string) ([]time.Weekday, error) {
	csv = strings.TrimSpace(csv)
	if csv == "" {
		return nil, nil
	}
	seen := make(map[int]bool)
	var days []time.Weekday
	for _, token := range strings.Split(csv, ",") {
		day, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil {
			return nil, errors.New("invalid training day: " + token)
		}
		if day < 0 || day > 6 {
			return nil, errors.New("training day out of range: " + token)
		}
		if seen[day] {
			return nil, errors.New("duplicate training day: " + token)
		}
		seen[day] = true
		days = append(days, time.Weekday(day))
	}
	return days, nil
}

// TrainingWeekdays returns the branch's weekday set, ignoring malformed data.
func (b Branch) TrainingWeekdays() []time.Weekday {
	days, err := ParseTrainingDays(b.TrainingDays)
	if err != nil {
		return nil
	}
	return days
}

func trainingDayInts(csv string) []int {
	days, err := ParseTrainingDays(csv)
	if err != nil {
		return nil
	}
	ints := make([]int, 0, len(days))
	for _, d := range days {
		ints = append(ints, int(d))
	}
	return ints
}

// validate input for both create & update. (id = 0 for create)

func (input *NewBranch) validate(ctx context.Context, academyId string, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Branch](ctx, academyId, id); err != nil {
			return err
		}
	}
	// name
	if err := utils.ValidateUnique[Branch](ctx, academyId, "name", input.Name, id); err != nil {
		return err
	}
	// phone
	if len(strings.TrimSpace(input.Phone)) > 0 {
		if err := utils.ValidateUnique[Branch](ctx, academyId, "phone", input.Phone, id); err != nil {
			return err
		}
	}
	// training days
	if _, err := ParseTrainingDays(input.TrainingDays); err != nil {
		return err
	}
	return nil
}

func CreateBranch(ctx context.Context, input *NewBranch) (*Branch, error) {

	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return nil, errors.New("academy id is required")
	}

	if err := input.validate(ctx, academyId, 0); err != nil {
		return nil, err
	}

	branch := Branch{
		AcademyId:      academyId,
		Name:           input.Name,
		Phone:          input.Phone,
		Address:        input.Address,
		TrainingDays:   input.TrainingDays,
		CalendarFeedId: input.CalendarFeedId,
		IsActive:       utils.NewTrue(),
	}

	// db action
	db := config.GetDB()
	err := db.WithContext(ctx).Create(&branch).Error
	if err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(branch); err != nil {
		return nil, err
	}

	return &branch, nil
}

func UpdateBranch(ctx context.Context, id int, input *NewBranch) (*Branch, error) {

	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return nil, errors.New("academy id is required")
	}

	if err := input.validate(ctx, academyId, id); err != nil {
		return nil, err
	}

	branch, err := utils.FetchModel[Branch](ctx, academyId, id)
	if err != nil {
		return nil, err
	}

	scheduleChanged := !utils.AreIntSlicesEqual(trainingDayInts(branch.TrainingDays), trainingDayInts(input.TrainingDays))

	// db action
	db := config.GetDB()
	err = db.WithContext(ctx).Model(&branch).Updates(map[string]interface{}{
		"Name":           input.Name,
		"Phone":          input.Phone,
		"Address":        input.Address,
		"TrainingDays":   input.TrainingDays,
		"CalendarFeedId": input.CalendarFeedId,
	}).Error
	if err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*branch); err != nil {
		return nil, err
	}

	// a schedule change invalidates cached insights for the running months
	if scheduleChanged {
		if err := RemoveInsightCache(academyId); err != nil {
			return nil, err
		}
	}

	return branch, nil
}

func DeleteBranch(ctx context.Context, id int) (*Branch, error) {

	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return nil, errors.New("academy id is required")
	}

	result, err := utils.FetchModel[Branch](ctx, academyId, id)
	if err != nil {
		return nil, err
	}

	// check if the branch is used
	db := config.GetDB()
	var count int64
	if err := db.WithContext(ctx).Model(&Academy{}).
		Where("id = ? AND primary_branch_id = ?", academyId, id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("cannot delete primary branch")
	}
	if err := db.WithContext(ctx).Model(&Member{}).
		Where("branch_id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("branch has members")
	}
	if err := db.WithContext(ctx).Model(&AttendanceRecord{}).
		Where("branch_id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("branch has attendance records")
	}

	// db action
	err = db.WithContext(ctx).Delete(&result).Error
	if err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*result); err != nil {
		return nil, err
	}

	return result, nil
}

func GetBranch(ctx context.Context, id int) (*Branch, error) {

	return GetResource[Branch](ctx, id)
}

func GetBranches(ctx context.Context, name *string) ([]*Branch, error) {
	// unfiltered list goes through the cached path
	if name == nil || len(*name) == 0 {
		return ListAllResource[Branch](ctx, "name")
	}

	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return nil, errors.New("academy id is required")
	}

	db := config.GetDB()
	var results []*Branch

	dbCtx := db.WithContext(ctx).Where("academy_id = ?", academyId)
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

func ToggleActiveBranch(ctx context.Context, id int, isActive bool) (*Branch, error) {
	// <owner>
	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return nil, errors.New("academy id is required")
	}
	if !isActive {
		db := config.GetDB()
		var count int64
		if err := db.WithContext(ctx).Model(&Academy{}).
			Where("id = ? AND primary_branch_id = ?", academyId, id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, errors.New("cannot toggle primary branch inactive")
		}
	}
	return ToggleActiveModel[Branch](ctx, academyId, id, isActive)
}

// FetchBranchesOf lists every branch of an academy by explicit id, for the
// snapshot loader and workers running outside a request scope.
func FetchBranchesOf(ctx context.Context, academyId string) ([]*Branch, error) {
	db := config.GetDB()
	var results []*Branch
	err := db.WithContext(ctx).
		Where("academy_id = ?", academyId).
		Order("id").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// SyncableBranches lists branches of every active academy that carry a calendar feed id.
// Tenant scoping is bypassed since the sync worker walks all academies.
func SyncableBranches(ctx context.Context) ([]*Branch, error) {
	db := config.GetDB()
	var results []*Branch
	err := db.WithContext(utils.SetSkipTenantScopeInContext(ctx, true)).
		Joins("JOIN academies ON academies.id = branches.academy_id AND academies.is_active = true").
		Where("branches.calendar_feed_id IS NOT NULL AND branches.is_active = true").
		Order("branches.academy_id, branches.id").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
