package models

import (
	"context"
	"errors"
	"time"

	"github.com/Jasemalbateni/academybase-sub001/config"
	"github.com/Jasemalbateni/academybase-sub001/utils"
	"gorm.io/gorm"
)

// CalendarEvent is an ad-hoc session or note. Only "training"-typed events
// with a branch id extend the attendance sheet's session-date set.
type CalendarEvent struct {
	ID        int    `gorm:"primary_key" json:"id"`
	AcademyId string `gorm:"index;not null" json:"academy_id"`
	// 0 means no branch; such events never extend session dates
	BranchId  int                 `gorm:"index" json:"branch_id"`
	Date      time.Time           `gorm:"index;not null" json:"date"`
	EventType CalendarEventType   `gorm:"type:enum('training','holiday','meeting','note');default:note" json:"event_type"`
	Title     string              `gorm:"size:255" json:"title"`
	Source    CalendarEventSource `gorm:"type:enum('manual','synced');default:manual" json:"source"`
	// feed item id for synced events, upsert key for the calendar worker
	ExternalId *string   `gorm:"size:255;default:NULL;index" json:"external_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCalendarEvent struct {
	BranchId  int          `json:"branch_id"`
	Date      MyDateString `json:"date" binding:"required"`
	EventType string       `json:"event_type" binding:"required"`
	Title     string       `json:"title"`
}

func (c CalendarEvent) GetId() int {
	return c.ID
}

func (c CalendarEvent) GetCursor() string {
	return c.Date.String()
}

// validate input for both create & update. (id = 0 for create)

func (input *NewCalendarEvent) validate(ctx context.Context, academyId string, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[CalendarEvent](ctx, academyId, id); err != nil {
			return err
		}
	}
	// branch
	if input.BranchId > 0 {
		if err := utils.ValidateResourceId[Branch](ctx, academyId, input.BranchId); err != nil {
			return errors.New("branch not found")
		}
	}
	// event type
	if _, err := ParseCalendarEventType(input.EventType); err != nil {
		return err
	}
	if input.Date.IsZero() {
		return errors.New("date is required")
	}
	return nil
}

func CreateCalendarEvent(ctx context.Context, input *NewCalendarEvent) (*CalendarEvent, error) {

	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return nil, errors.New("academy id is required")
	}

	if err := input.validate(ctx, academyId, 0); err != nil {
		return nil, err
	}

	eventType, _ := ParseCalendarEventType(input.EventType)
	event := CalendarEvent{
		AcademyId: academyId,
		BranchId:  input.BranchId,
		Date:      input.Date.Time(),
		EventType: eventType,
		Title:     input.Title,
		Source:    CalendarEventSourceManual,
	}

	// db action
	db := config.GetDB()
	err := db.WithContext(ctx).Create(&event).Error
	if err != nil {
		return nil, err
	}

	return &event, nil
}

func UpdateCalendarEvent(ctx context.Context, id int, input *NewCalendarEvent) (*CalendarEvent, error) {

	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return nil, errors.New("academy id is required")
	}

	if err := input.validate(ctx, academyId, id); err != nil {
		return nil, err
	}

	event, err := utils.FetchModel[CalendarEvent](ctx, academyId, id)
	if err != nil {
		return nil, err
	}
	if event.Source == CalendarEventSourceSynced {
		return nil, errors.New("synced events cannot be edited")
	}

	eventType, _ := ParseCalendarEventType(input.EventType)

	// db action
	db := config.GetDB()
	err = db.WithContext(ctx).Model(&event).Updates(map[string]interface{}{
		"BranchId":  input.BranchId,
		"Date":      input.Date.Time(),
		"EventType": eventType,
		"Title":     input.Title,
	}).Error
	if err != nil {
		return nil, err
	}

	// caching
	if err := RemoveRedisBoth(*event); err != nil {
		return nil, err
	}

	return event, nil
}

func DeleteCalendarEvent(ctx context.Context, id int) (*CalendarEvent, error) {

	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return nil, errors.New("academy id is required")
	}

	result, err := utils.FetchModel[CalendarEvent](ctx, academyId, id)
	if err != nil {
		return nil, err
	}

	// db action
	db := config.GetDB()
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

// UpsertSyncedCalendarEvent applies one feed item. The external id is the
// upsert key; an existing synced row is updated in place so redelivered feed
// items converge instead of duplicating.
func UpsertSyncedCalendarEvent(ctx context.Context, academyId string, branchId int,
	externalId string, date time.Time, eventType CalendarEventType, title string) (*CalendarEvent, error) {

	db := config.GetDB()

	var existing CalendarEvent
	err := db.WithContext(ctx).
		Where("academy_id = ? AND external_id = ?", academyId, externalId).
		First(&existing).Error
	if err == nil {
		err = db.WithContext(ctx).Model(&existing).Updates(map[string]interface{}{
			"BranchId":  branchId,
			"Date":      date,
			"EventType": eventType,
			"Title":     title,
		}).Error
		if err != nil {
			return nil, err
		}
		if err := RemoveRedisBoth(existing); err != nil {
			return nil, err
		}
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	event := CalendarEvent{
		AcademyId:  academyId,
		BranchId:   branchId,
		Date:       date,
		EventType:  eventType,
		Title:      title,
		Source:     CalendarEventSourceSynced,
		ExternalId: &externalId,
	}
	if err := db.WithContext(ctx).Create(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// GetCalendarEvents lists events inside [from, to), optionally one branch.
func GetCalendarEvents(ctx context.Context, branchId *int, from time.Time, to time.Time) ([]*CalendarEvent, error) {
	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return nil, errors.New("academy id is required")
	}

	db := config.GetDB()
	var results []*CalendarEvent

	dbCtx := db.WithContext(ctx).
		Where("academy_id = ? AND date >= ? AND date < ?", academyId, from, to)
	if branchId != nil && *branchId > 0 {
		dbCtx = dbCtx.Where("branch_id = ?", *branchId)
	}
	// db query
	err := dbCtx.Order("date, id").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// TrainingEventDates returns the dates of "training"-typed events for one
// branch inside [from, to). These extend the generated session-date set.
func TrainingEventDates(ctx context.Context, academyId string, branchId int, from time.Time, to time.Time) ([]time.Time, error) {
	if branchId <= 0 {
		return nil, nil
	}

	db := config.GetDB()
	var events []*CalendarEvent
	err := db.WithContext(ctx).
		Where("academy_id = ? AND branch_id = ? AND event_type = ? AND date >= ? AND date < ?",
			academyId, branchId, CalendarEventTypeTraining, from, to).
		Order("date").
		Find(&events).Error
	if err != nil {
		return nil, err
	}

	dates := make([]time.Time, 0, len(events))
	for _, event := range events {
		dates = append(dates, event.Date)
	}
	return dates, nil
}
