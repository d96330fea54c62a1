package models

import (
	"context"
	"errors"
	"time"

	"github.com/Jasemalbateni/academybase-sub001/config"
	"github.com/Jasemalbateni/academybase-sub001/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AttendanceRecord is one presence mark, keyed uniquely by (member, date).
type AttendanceRecord struct {
	ID        int       `gorm:"primary_key" json:"id"`
	AcademyId string    `gorm:"index;not null" json:"academy_id"`
	MemberId  int       `gorm:"not null;index:uniq_attendance,unique" json:"member_id"`
	Date      time.Time `gorm:"not null;index:uniq_attendance,unique" json:"date"`
	// denormalized from the member at write time, feeds per-branch rates
	BranchId  int       `gorm:"index" json:"branch_id"`
	Present   *bool     `gorm:"not null;default:false" json:"present"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a AttendanceRecord) GetId() int {
	return a.ID
}

func (a AttendanceRecord) GetCursor() string {
	return a.Date.String()
}

// PersistPresence upserts the (member, date) row to the given value. This is
// the toggle protocol's persistence collaborator: writes serialize per
// academy, leave a history line, and drop the month's cached list.
func PersistPresence(ctx context.Context, memberId int, date time.Time, present bool) error {

	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return errors.New("academy id is required")
	}

	member, err := utils.FetchModel[Member](ctx, academyId, memberId)
	if err != nil {
		return err
	}

	if err := utils.AcademyLock(ctx, academyId, "attendance-write", "attendance.go", "PersistPresence"); err != nil {
		return err
	}

	record := AttendanceRecord{
		AcademyId: academyId,
		MemberId:  memberId,
		Date:      date,
		BranchId:  member.BranchId,
		Present:   &present,
	}

	// db action
	db := config.GetDB()
	tx := db.Begin()
	Tx := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "member_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"present": present, "branch_id": member.BranchId}),
	}).Create(&record)
	if Tx.Error != nil {
		tx.Rollback()
		return Tx.Error
	}

	actionType := "*ABSENT*"
	if present {
		actionType = "*PRESENT*"
	}
	if err := createHistory(tx.WithContext(ctx), actionType, memberId, "attendance_records", nil, &record,
		"presence toggled for "+date.Format("2006-01-02")); err != nil {
		tx.Rollback()
		return err
	}

	// caching
	if err := RemoveRedisBoth(record); err != nil {
		tx.Rollback()
		return err
	}
	if err := RemoveInsightCache(academyId); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// GetMemberAttendance returns a member's marks inside [from, to), ascending.
func GetMemberAttendance(ctx context.Context, memberId int, from time.Time, to time.Time) ([]*AttendanceRecord, error) {
	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return nil, errors.New("academy id is required")
	}

	db := config.GetDB()
	var results []*AttendanceRecord
	err := db.WithContext(ctx).
		Where("academy_id = ? AND member_id = ? AND date >= ? AND date < ?", academyId, memberId, from, to).
		Order("date").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetAttendance lists the academy's marks for a month, optionally one branch.
func GetAttendance(ctx context.Context, branchId *int, from time.Time, to time.Time) ([]*AttendanceRecord, error) {
	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return nil, errors.New("academy id is required")
	}

	db := config.GetDB()
	var results []*AttendanceRecord

	dbCtx := db.WithContext(ctx).
		Where("academy_id = ? AND date >= ? AND date < ?", academyId, from, to)
	if branchId != nil && *branchId > 0 {
		dbCtx = dbCtx.Where("branch_id = ?", *branchId)
	}
	// db query
	err := dbCtx.Order("date, member_id").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// AttendanceInMonths lists every mark of the academy inside [from, to),
// ascending by date. Feeds the insight snapshot.
func AttendanceInMonths(ctx context.Context, academyId string, from time.Time, to time.Time) ([]*AttendanceRecord, error) {
	db := config.GetDB()
	var results []*AttendanceRecord
	err := db.WithContext(ctx).
		Where("academy_id = ? AND date >= ? AND date < ?", academyId, from, to).
		Order("date, member_id").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetPresence reads the stored value for one (member, date) key without
// erroring on absence: missing rows read as (false, not found).
func GetPresence(ctx context.Context, memberId int, date time.Time) (present bool, found bool, err error) {
	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return false, false, errors.New("academy id is required")
	}

	db := config.GetDB()
	var record AttendanceRecord
	err = db.WithContext(ctx).
		Where("academy_id = ? AND member_id = ? AND date = ?", academyId, memberId, date).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, false, nil
		}
		return false, false, err
	}
	return utils.DereferencePtr(record.Present), true, nil
}
