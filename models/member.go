package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Jasemalbateni/academybase-sub001/config"
	"github.com/Jasemalbateni/academybase-sub001/utils"
)

type Member struct {
	ID        int    `gorm:"primary_key" json:"id"`
	AcademyId string `gorm:"index;not null" json:"academy_id"`
	// 0 means the member is not tied to a branch
	BranchId         int              `gorm:"index" json:"branch_id"`
	Name             string           `gorm:"index;size:100;not null" json:"name" binding:"required"`
	Phone            string           `gorm:"size:20" json:"phone"`
	Email            string           `gorm:"size:255" json:"email"`
	SubscriptionMode SubscriptionMode `gorm:"type:enum('calendar_month','session_count');default:calendar_month" json:"subscription_mode"`
	SessionTarget    int              `gorm:"default:0" json:"session_target"`
	StartDate        time.Time        `json:"start_date"`
	// authoritative end date, overrides the last resolved period when set
	EndDate   *time.Time `gorm:"default:NULL" json:"end_date"`
	IsPaused  *bool      `gorm:"not null;default:false" json:"paused"`
	Notes     string     `gorm:"type:text" json:"notes"`
	IsActive  *bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewMember struct {
	BranchId         int           `json:"branch_id"`
	Name             string        `json:"name" binding:"required"`
	Phone            string        `json:"phone"`
	Email            string        `json:"email"`
	SubscriptionMode string        `json:"subscription_mode"`
	SessionTarget    int           `json:"session_target"`
	StartDate        MyDateString  `json:"start_date"`
	EndDate          *MyDateString `json:"end_date"`
	Notes            string        `json:"notes"`
}

func (m Member) GetId() int {
	return m.ID
}

func (m Member) GetCursor() string {
	return m.CreatedAt.String()
}

type MembersConnection struct {
	Edges    []*MembersEdge `json:"edges"`
	PageInfo *PageInfo      `json:"pageInfo"`
}

type MembersEdge Edge[Member]

// validate input for both create & update. (id = 0 for create)

func (input *NewMember) validate(ctx context.Context, academyId string, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Member](ctx, academyId, id); err != nil {
			return err
		}
	}
	// branch
	if input.BranchId > 0 {
		if err := utils.ValidateResourceId[Branch](ctx, academyId, input.BranchId); err != nil {
			return errors.New("branch not found")
		}
	}
	// phone
	if len(strings.TrimSpace(input.Phone)) > 0 {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return errors.New("invalid phone number")
		}
		if err := utils.ValidateUnique[Member](ctx, academyId, "phone", input.Phone, id); err != nil {
			return err
		}
	}
	// email
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return errors.New("invalid email address")
	}
	// subscription mode
	if input.SubscriptionMode != "" {
		if _, err := ParseSubscriptionMode(input.SubscriptionMode); err != nil {
			return err
		}
	}
	if input.SessionTarget < 0 {
		return errors.New("session target cannot be negative")
	}
	return nil
}

func CreateMember(ctx context.Context, input *NewMember) (*Member, error) {

	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return nil, errors.New("academy id is required")
	}

	if err := input.validate(ctx, academyId, 0); err != nil {
		return nil, err
	}

	mode := SubscriptionModeCalendarMonth
	if input.SubscriptionMode != "" {
		mode, _ = ParseSubscriptionMode(input.SubscriptionMode)
	}
	startDate := input.StartDate.Time()
	if startDate.IsZero() {
		startDate = utils.Today()
	}
	var endDate *time.Time
	if input.EndDate != nil && !input.EndDate.IsZero() {
		d := input.EndDate.Time()
		endDate = &d
	}

	member := Member{
		AcademyId:        academyId,
		BranchId:         input.BranchId,
		Name:             input.Name,
		Phone:            input.Phone,
		Email:            input.Email,
		SubscriptionMode: mode,
		SessionTarget:    input.SessionTarget,
		StartDate:        startDate,
		EndDate:          endDate,
		IsPaused:         utils.NewFalse(),
		Notes:            input.Notes,
		IsActive:         utils.NewTrue(),
	}

	// db action
	db := config.GetDB()
	err := db.WithContext(ctx).Create(&member).Error
	if err != nil {
		return nil, err
	}

	return &member, nil
}

func UpdateMember(ctx context.Context, id int, input *NewMember) (*Member, error) {

	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return nil, errors.New("academy id is required")
	}

	if err := input.validate(ctx, academyId, id); err != nil {
		return nil, err
	}

	member, err := utils.FetchModel[Member](ctx, academyId, id)
	if err != nil {
		return nil, err
	}

	mode := member.SubscriptionMode
	if input.SubscriptionMode != "" {
		mode, _ = ParseSubscriptionMode(input.SubscriptionMode)
	}
	var endDate *time.Time
	if input.EndDate != nil && !input.EndDate.IsZero() {
		d := input.EndDate.Time()
		endDate = &d
	}

	// db action
	db := config.GetDB()
	err = db.WithContext(ctx).Model(&member).Updates(map[string]interface{}{
		"BranchId":         input.BranchId,
		"Name":             input.Name,
		"Phone":            input.Phone,
		"Email":            input.Email,
		"SubscriptionMode": mode,
		"SessionTarget":    input.SessionTarget,
		"StartDate":        input.StartDate.Time(),
		"EndDate":          endDate,
		"Notes":            input.Notes,
	}).Error
	if err != nil {
		return nil, err
	}

	// caching
	if err := RemoveRedisBoth(*member); err != nil {
		return nil, err
	}

	return member, nil
}

func DeleteMember(ctx context.Context, id int) (*Member, error) {

	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return nil, errors.New("academy id is required")
	}

	result, err := utils.FetchModel[Member](ctx, academyId, id)
	if err != nil {
		return nil, err
	}

	// check if the member is used
	db := config.GetDB()
	var count int64
	if err := db.WithContext(ctx).Model(&Payment{}).
		Where("member_id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("member has payments")
	}
	if err := db.WithContext(ctx).Model(&AttendanceRecord{}).
		Where("member_id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("member has attendance records")
	}

	// db action
	err = db.WithContext(ctx).Delete(&result).Error
	if err != nil {
		return nil, err
	}

	// caching
	if err := RemoveRedisBoth(*result); err != nil {
		return nil, err
	}

	return result, nil
}

func GetMember(ctx context.Context, id int) (*Member, error) {

	return GetResource[Member](ctx, id)
}

func GetMembers(ctx context.Context, name *string, branchId *int, paused *bool) ([]*Member, error) {
	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return nil, errors.New("academy id is required")
	}

	db := config.GetDB()
	var results []*Member

	dbCtx := db.WithContext(ctx).Where("academy_id = ?", academyId)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	if branchId != nil && *branchId > 0 {
		dbCtx = dbCtx.Where("branch_id = ?", *branchId)
	}
	if paused != nil {
		dbCtx = dbCtx.Where("is_paused = ?", *paused)
	}
	// db query
	err := dbCtx.Order("name").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func PaginateMember(ctx context.Context,
	limit *int,
	after *string,
	name *string,
	branchId *int,
	paused *bool,
) (*MembersConnection, error) {
	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return nil, errors.New("academy id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("academy_id = ?", academyId)
	if name != nil && *name != "" {
		dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	if branchId != nil && *branchId > 0 {
		dbCtx.Where("branch_id = ?", *branchId)
	}
	if paused != nil {
		dbCtx.Where("is_paused = ?", *paused)
	}

	edges, pageInfo, err := FetchPageCompositeCursor[Member](dbCtx, *limit, after, "created_at", "<")
	if err != nil {
		return nil, err
	}
	var membersConnection MembersConnection
	membersConnection.PageInfo = pageInfo
	for _, edge := range edges {
		membersEdge := MembersEdge(edge)
		membersConnection.Edges = append(membersConnection.Edges, &membersEdge)
	}

	return &membersConnection, err
}

func ToggleActiveMember(ctx context.Context, id int, isActive bool) (*Member, error) {
	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return nil, errors.New("academy id is required")
	}
	return ToggleActiveModel[Member](ctx, academyId, id, isActive)
}

// SetMemberPaused flips the pause flag. A paused member keeps the subscription
// clock running, only attendance toggling for current and future dates stops.
func SetMemberPaused(ctx context.Context, id int, paused bool) (*Member, error) {

	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return nil, errors.New("academy id is required")
	}

	db := config.GetDB()
	var result *Member
	if err := db.WithContext(ctx).Where("academy_id = ?", academyId).First(&result, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	// update db
	tx := db.Begin()
	Tx := tx.WithContext(ctx).Model(&result).
		UpdateColumn("IsPaused", paused)
	if Tx.Error != nil {
		tx.Rollback()
		return nil, Tx.Error
	}

	var actionType string
	if paused {
		actionType = "*PAUSED*"
	} else {
		actionType = "*RESUMED*"
	}

	// create history without hook
	if err := createHistory(tx.WithContext(ctx), actionType, id, Tx.Statement.Table, nil, nil, "pause toggled for member"); err != nil {
		tx.Rollback()
		return nil, err
	}

	// clear cache
	if err := RemoveRedisBoth(*result); err != nil {
		tx.Rollback()
		return nil, err
	}

	return result, tx.Commit().Error
}

// FetchMembersOf lists every member of an academy by explicit id, for the
// snapshot loader and workers running outside a request scope.
func FetchMembersOf(ctx context.Context, academyId string) ([]*Member, error) {
	db := config.GetDB()
	var results []*Member
	err := db.WithContext(ctx).
		Where("academy_id = ?", academyId).
		Order("id").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// MembersExpiringBetween lists members whose authoritative end date falls in [from, to].
func MembersExpiringBetween(ctx context.Context, academyId string, from time.Time, to time.Time) ([]*Member, error) {
	db := config.GetDB()
	var results []*Member
	err := db.WithContext(ctx).
		Where("academy_id = ? AND end_date IS NOT NULL AND end_date >= ? AND end_date <= ?", academyId, from, to).
		Order("end_date").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
