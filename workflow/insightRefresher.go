package workflow

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/Jasemalbateni/academybase-sub001/config"
	"github.com/Jasemalbateni/academybase-sub001/models"
	"github.com/Jasemalbateni/academybase-sub001/utils"
	"github.com/sirupsen/logrus"
)

// InsightRefresher periodically rebuilds the cached insight list of every
// active academy so the API mostly serves warm results. One failing academy
// never stops the sweep.
type InsightRefresher struct {
	Logger   *logrus.Logger
	Interval time.Duration
}

func NewInsightRefresher(logger *logrus.Logger) *InsightRefresher {
	return &InsightRefresher{
		Logger:   logger,
		Interval: insightRefreshInterval(),
	}
}

// INSIGHT_REFRESH_INTERVAL_MINUTES, default one hour.
func insightRefreshInterval() time.Duration {
	if raw := os.Getenv("INSIGHT_REFRESH_INTERVAL_MINUTES"); raw != "" {
		if minutes, err := strconv.Atoi(raw); err == nil && minutes > 0 {
			return time.Duration(minutes) * time.Minute
		}
	}
	return time.Hour
}

func (r *InsightRefresher) Run(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		r.refreshOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(r.Interval):
		}
	}
}

func (r *InsightRefresher) refreshOnce(ctx context.Context) {
	academyIds, err := models.ActiveAcademyIds(ctx)
	if err != nil {
		config.LogError(r.Logger, "InsightRefresher.go", "refreshOnce", "listing active academies", nil, err)
		return
	}

	for _, academyId := range academyIds {
		select {
		case <-ctx.Done():
			return
		default:
		}
		// the current month flips at the academy's local midnight
		monthKey := utils.MonthKey(utils.Today())
		if localToday, err := utils.ConvertToDate(time.Now(), models.TimezoneFor(ctx, academyId)); err == nil {
			monthKey = utils.MonthKey(localToday)
		}
		insights, err := RefreshInsights(ctx, academyId, monthKey)
		if err != nil {
			config.LogError(r.Logger, "InsightRefresher.go", "refreshOnce", "refreshing insights", academyId, err)
			continue
		}
		for _, insight := range insights {
			if insight.Severity != models.InsightSeverityCritical {
				continue
			}
			r.Logger.WithFields(logrus.Fields{
				"academy_id": academyId,
				"insight_id": insight.Id,
				"scope":      insight.Scope,
				"scope_key":  insight.ScopeKey,
			}).Warn(insight.Title)
		}
	}
}
