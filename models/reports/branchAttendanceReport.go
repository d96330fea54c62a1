package reports

import (
	"context"
	"errors"
	"time"

	"github.com/Jasemalbateni/academybase-sub001/config"
	"github.com/Jasemalbateni/academybase-sub001/utils"
	"github.com/shopspring/decimal"
)

type BranchAttendanceSummary struct {
	BranchId   int             `json:"branch_id"`
	BranchName string          `json:"branch_name"`
	Present    int             `json:"present"`
	Total      int             `json:"total"`
	Rate       decimal.Decimal `json:"rate"`
}

// GetBranchAttendanceSummary returns per-branch present/total counts and the
// percentage rate for one month. Branches with no marks are omitted.
func GetBranchAttendanceSummary(ctx context.Context, monthKey string) ([]*BranchAttendanceSummary, error) {
	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return nil, errors.New("academy id is required")
	}
	if _, err := utils.ParseMonth(monthKey); err != nil {
		return nil, err
	}

	cacheKey := "Report:BranchAttendance:" + academyId + ":" + monthKey
	if reportCacheEnabled() {
		var cached []*BranchAttendanceSummary
		if found, err := cacheGet(cacheKey, &cached); err == nil && found {
			return cached, nil
		}
	}
	started := time.Now()

	db := config.GetDB()
	var results []*BranchAttendanceSummary

	err := db.WithContext(ctx).Raw(`
			SELECT
				ar.branch_id,
				b.name AS branch_name,
				COALESCE(SUM(ar.present), 0) AS present,
				COUNT(*) AS total,
				ROUND(COALESCE(SUM(ar.present), 0) * 100.0 / COUNT(*), 1) AS rate
			FROM attendance_records ar
			LEFT JOIN branches b ON b.id = ar.branch_id
			WHERE ar.academy_id = ?
				AND ar.branch_id > 0
				AND DATE_FORMAT(ar.date, '%Y-%m') = ?
			GROUP BY ar.branch_id, b.name
			ORDER BY b.name;
		`, academyId, monthKey).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	logSlowReport(ctx, "branch_attendance", started, map[string]any{"month": monthKey})
	if reportCacheEnabled() {
		_ = cacheSet(cacheKey, results, reportCacheTTL())
	}
	return results, nil
}
