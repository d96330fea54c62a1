package calsync

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/Jasemalbateni/academybase-sub001/config"
	"github.com/Jasemalbateni/academybase-sub001/models"
	"github.com/Jasemalbateni/academybase-sub001/utils"
	"github.com/Jasemalbateni/academybase-sub001/workflow"
	"github.com/sirupsen/logrus"
)

const syncHandlerName = "calendar-sync"

// SyncWorker polls the external calendar provider for every branch carrying a
// feed id and applies the items idempotently. Academies are processed one at
// a time; a failing academy is logged and skipped, never fatal for the sweep.
type SyncWorker struct {
	Logger   *logrus.Logger
	Interval time.Duration
	// window around today the worker asks the provider for
	PastDays   int
	FutureDays int
}

func NewSyncWorker(logger *logrus.Logger) *SyncWorker {
	return &SyncWorker{
		Logger:     logger,
		Interval:   syncInterval(),
		PastDays:   7,
		FutureDays: 60,
	}
}

// CAL_SYNC_INTERVAL_MINUTES, default 30 minutes.
func syncInterval() time.Duration {
	if raw := os.Getenv("CAL_SYNC_INTERVAL_MINUTES"); raw != "" {
		if minutes, err := strconv.Atoi(raw); err == nil && minutes > 0 {
			return time.Duration(minutes) * time.Minute
		}
	}
	return 30 * time.Minute
}

func (w *SyncWorker) Run(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		w.SyncOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(w.Interval):
		}
	}
}

// SyncOnce performs a single sweep across all syncable branches.
func (w *SyncWorker) SyncOnce(ctx context.Context) {
	client, err := newCalendarClient()
	if err != nil {
		config.LogError(w.Logger, "Worker.go", "SyncOnce", "building calendar client", nil, err)
		return
	}

	branches, err := models.SyncableBranches(ctx)
	if err != nil {
		config.LogError(w.Logger, "Worker.go", "SyncOnce", "listing syncable branches", nil, err)
		return
	}

	today := utils.Today()
	from := today.AddDate(0, 0, -w.PastDays)
	to := today.AddDate(0, 0, w.FutureDays)

	for _, branch := range branches {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if err := w.syncBranch(ctx, client, branch, from, to); err != nil {
			config.LogError(w.Logger, "Worker.go", "SyncOnce", "syncing branch", branch.ID, err)
		}
	}
}

func (w *SyncWorker) syncBranch(ctx context.Context, client *calendarClient, branch *models.Branch, from time.Time, to time.Time) error {
	if branch.CalendarFeedId == nil || *branch.CalendarFeedId == "" {
		return nil
	}

	branchCtx := utils.SetAcademyIdInContext(ctx, branch.AcademyId)
	items, err := client.FetchFeedEvents(branchCtx, *branch.CalendarFeedId, from, to)
	if err != nil {
		return err
	}

	applied := 0
	for _, item := range items {
		if item.ID == "" {
			continue
		}
		if err := w.applyItem(branchCtx, branch, item); err != nil {
			if errors.Is(err, workflow.ErrIdempotencyInProgress) {
				continue
			}
			config.LogError(w.Logger, "Worker.go", "syncBranch", "applying feed item", item.ID, err)
			continue
		}
		applied++
	}

	w.Logger.WithFields(logrus.Fields{
		"academy_id": branch.AcademyId,
		"branch_id":  branch.ID,
		"items":      len(items),
		"applied":    applied,
	}).Info("calendar feed synced")
	return nil
}

// applyItem upserts one feed item behind a durable idempotency key so a
// redelivered item is recognized and skipped.
func (w *SyncWorker) applyItem(ctx context.Context, branch *models.Branch, item FeedItem) error {
	date, err := item.EventDate()
	if err != nil {
		return err
	}

	db := config.GetDB().WithContext(ctx)
	messageId := item.ID + ":" + item.Date + ":" + item.Type + ":" + item.Title

	skip, err := workflow.BeginIdempotency(db, branch.AcademyId, syncHandlerName, messageId)
	if err != nil {
		return err
	}
	if skip {
		return nil
	}

	_, err = models.UpsertSyncedCalendarEvent(ctx, branch.AcademyId, branch.ID, item.ID, date, item.EventType(), item.Title)
	if err != nil {
		_ = workflow.MarkIdempotencyFailed(db, branch.AcademyId, syncHandlerName, messageId, err)
		return err
	}
	return workflow.MarkIdempotencySucceeded(db, branch.AcademyId, syncHandlerName, messageId)
}
