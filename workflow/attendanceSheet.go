package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/Jasemalbateni/academybase-sub001/models"
	"github.com/Jasemalbateni/academybase-sub001/utils"
)

// SheetEntry is one date on a member's monthly attendance sheet, annotated
// with its eligibility state. Only dates classified active are togglable;
// a paused member loses togglability for today and future dates.
type SheetEntry struct {
	Date      time.Time                `json:"date"`
	Status    models.EligibilityStatus `json:"status"`
	Togglable bool                     `json:"togglable"`
	// nil when no presence mark has been stored yet
	Present *bool `json:"present"`
}

type MemberSheet struct {
	MemberId int          `json:"member_id"`
	Year     int          `json:"year"`
	Month    time.Month   `json:"month"`
	Entries  []SheetEntry `json:"entries"`
}

// AnnotateSheet builds the sheet entries for an already-merged date sequence.
// Pure: every fact arrives as an argument.
func AnnotateSheet(dates []time.Time, periods []SubscriptionPeriod, paused bool, today time.Time,
	presence map[string]bool) []SheetEntry {

	entries := make([]SheetEntry, 0, len(dates))
	for _, date := range dates {
		status := Classify(date, periods)
		togglable := status == models.EligibilityStatusActive
		if paused && !dateBefore(date, today) {
			// past dates keep their state, the pause only freezes the present/future
			togglable = false
		}
		entry := SheetEntry{
			Date:      date,
			Status:    status,
			Togglable: togglable,
		}
		if present, ok := presence[date.Format("2006-01-02")]; ok {
			value := present
			entry.Present = &value
		}
		entries = append(entries, entry)
	}
	return entries
}

// BuildMemberSheet loads a member's facts for one month and assembles the
// annotated sheet: generated session dates merged with ad-hoc training
// events, each date classified and marked with any stored presence.
func BuildMemberSheet(ctx context.Context, memberId int, year int, month time.Month) (*MemberSheet, error) {

	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return nil, errors.New("academy id is required")
	}

	member, err := models.GetMember(ctx, memberId)
	if err != nil {
		return nil, err
	}

	var branch *models.Branch
	if member.BranchId > 0 {
		branch, err = models.GetBranch(ctx, member.BranchId)
		if err != nil && !errors.Is(err, utils.ErrorRecordNotFound) {
			return nil, err
		}
	}

	rows, err := models.GetMemberPayments(ctx, memberId)
	if err != nil {
		return nil, err
	}
	periods := ResolvePeriods(member, branch, rows)

	scheduled := []time.Time{}
	if branch != nil {
		scheduled = SessionDates(year, month, branch.TrainingWeekdays())
	}

	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	var extra []time.Time
	if branch != nil {
		extra, err = models.TrainingEventDates(ctx, academyId, branch.ID, from, to)
		if err != nil {
			return nil, err
		}
	}
	dates := MergeSessionDates(scheduled, extra)

	records, err := models.GetMemberAttendance(ctx, memberId, from, to)
	if err != nil {
		return nil, err
	}
	presence := make(map[string]bool, len(records))
	for _, record := range records {
		presence[record.Date.Format("2006-01-02")] = utils.DereferencePtr(record.Present)
	}

	sheet := &MemberSheet{
		MemberId: memberId,
		Year:     year,
		Month:    month,
		Entries:  AnnotateSheet(dates, periods, utils.DereferencePtr(member.IsPaused), utils.Today(), presence),
	}
	return sheet, nil
}

// ResolveMemberPeriods loads what the resolver needs and returns the derived
// period list for one member.
func ResolveMemberPeriods(ctx context.Context, memberId int) ([]SubscriptionPeriod, error) {

	member, err := models.GetMember(ctx, memberId)
	if err != nil {
		return nil, err
	}

	var branch *models.Branch
	if member.BranchId > 0 {
		branch, err = models.GetBranch(ctx, member.BranchId)
		if err != nil && !errors.Is(err, utils.ErrorRecordNotFound) {
			return nil, err
		}
	}

	rows, err := models.GetMemberPayments(ctx, memberId)
	if err != nil {
		return nil, err
	}
	return ResolvePeriods(member, branch, rows), nil
}
