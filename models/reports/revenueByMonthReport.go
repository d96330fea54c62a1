package reports

import (
	"context"
	"errors"
	"time"

	"github.com/Jasemalbateni/academybase-sub001/config"
	"github.com/Jasemalbateni/academybase-sub001/models"
	"github.com/Jasemalbateni/academybase-sub001/utils"
	"github.com/shopspring/decimal"
)

type RevenueByMonth struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
	Expense decimal.Decimal `json:"expense"`
}

// GetRevenueByMonth returns a zero-filled ascending series covering the last
// `months` calendar months, current month included.
func GetRevenueByMonth(ctx context.Context, months int) ([]*RevenueByMonth, error) {
	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return nil, errors.New("academy id is required")
	}
	if months <= 0 {
		months = 12
	}
	if months > 60 {
		months = 60
	}

	now := utils.Today()
	endMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	startMonth := endMonth.AddDate(0, -(months - 1), 0)

	cacheKey := "Report:RevenueByMonth:" + academyId + ":" + utils.MonthKey(startMonth) + ":" + utils.MonthKey(endMonth)
	if reportCacheEnabled() {
		var cached []*RevenueByMonth
		if found, err := cacheGet(cacheKey, &cached); err == nil && found {
			return cached, nil
		}
	}
	started := time.Now()

	db := config.GetDB()
	var results []*RevenueByMonth

	query := `
			WITH RECURSIVE MonthList AS (
				SELECT ? AS month_date
				UNION ALL
				SELECT DATE_ADD(month_date, INTERVAL 1 MONTH)
				FROM MonthList
				WHERE DATE_ADD(month_date, INTERVAL 1 MONTH) <= ?
			),
			MonthlyAgg AS (
				SELECT
					month,
					SUM(CASE WHEN type = ? THEN amount ELSE 0 END) AS revenue,
					SUM(CASE WHEN type = ? THEN amount ELSE 0 END) AS expense
				FROM finance_transactions
				WHERE academy_id = ?
					AND source <> ?
					AND month >= ?
					AND month <= ?
				GROUP BY month
			)
			SELECT
				DATE_FORMAT(ml.month_date, '%Y-%m') AS month,
				COALESCE(ma.revenue, 0) AS revenue,
				COALESCE(ma.expense, 0) AS expense
			FROM
				MonthList ml
			LEFT JOIN
				MonthlyAgg ma ON DATE_FORMAT(ml.month_date, '%Y-%m') = ma.month
			ORDER BY
				ml.month_date;
		`

	err := db.WithContext(ctx).Raw(query,
		startMonth, endMonth,
		models.FinanceTransactionTypeRevenue, models.FinanceTransactionTypeExpense,
		academyId, models.FinanceTransactionSourceSuppressed,
		utils.MonthKey(startMonth), utils.MonthKey(endMonth)).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	logSlowReport(ctx, "revenue_by_month", started, map[string]any{"months": months})
	if reportCacheEnabled() {
		_ = cacheSet(cacheKey, results, reportCacheTTL())
	}
	return results, nil
}
