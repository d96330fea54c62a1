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

type MonthlySummary struct {
	Month             string          `json:"month"`
	Revenue           decimal.Decimal `json:"revenue"`
	Expense           decimal.Decimal `json:"expense"`
	Net               decimal.Decimal `json:"net"`
	PaymentCount      int             `json:"payment_count"`
	NewMemberCount    int             `json:"new_member_count"`
	ActiveMemberCount int             `json:"active_member_count"`
	// present marks over all marks of the month, percent, 0 when no marks
	AttendanceRate decimal.Decimal `json:"attendance_rate"`
}

// GetMonthlySummary aggregates one month's finances, payments, membership
// and attendance. Suppressed ledger lines never count.
func GetMonthlySummary(ctx context.Context, monthKey string) (*MonthlySummary, error) {
	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return nil, errors.New("academy id is required")
	}
	if _, err := utils.ParseMonth(monthKey); err != nil {
		return nil, err
	}

	cacheKey := "Report:MonthlySummary:" + academyId + ":" + monthKey
	if reportCacheEnabled() {
		var cached MonthlySummary
		if found, err := cacheGet(cacheKey, &cached); err == nil && found {
			return &cached, nil
		}
	}
	started := time.Now()

	db := config.GetDB()
	summary := &MonthlySummary{Month: monthKey}

	var totals struct {
		Revenue decimal.NullDecimal
		Expense decimal.NullDecimal
	}
	err := db.WithContext(ctx).Raw(`
			SELECT
				SUM(CASE WHEN type = ? THEN amount ELSE 0 END) AS revenue,
				SUM(CASE WHEN type = ? THEN amount ELSE 0 END) AS expense
			FROM finance_transactions
			WHERE academy_id = ?
				AND month = ?
				AND source <> ?
		`, models.FinanceTransactionTypeRevenue, models.FinanceTransactionTypeExpense,
		academyId, monthKey, models.FinanceTransactionSourceSuppressed).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	summary.Revenue = totals.Revenue.Decimal
	summary.Expense = totals.Expense.Decimal
	summary.Net = summary.Revenue.Sub(summary.Expense)

	err = db.WithContext(ctx).Raw(`
			SELECT COUNT(*)
			FROM payments
			WHERE academy_id = ?
				AND DATE_FORMAT(paid_date, '%Y-%m') = ?
		`, academyId, monthKey).
		Scan(&summary.PaymentCount).Error
	if err != nil {
		return nil, err
	}

	// a member is "new" in the month holding their earliest-ever payment
	err = db.WithContext(ctx).Raw(`
			SELECT COUNT(*)
			FROM (
				SELECT member_id, DATE_FORMAT(MIN(paid_date), '%Y-%m') AS first_month
				FROM payments
				WHERE academy_id = ?
				GROUP BY member_id
			) firsts
			WHERE firsts.first_month = ?
		`, academyId, monthKey).
		Scan(&summary.NewMemberCount).Error
	if err != nil {
		return nil, err
	}

	err = db.WithContext(ctx).Raw(`
			SELECT COUNT(*)
			FROM members
			WHERE academy_id = ? AND is_active = 1
		`, academyId).
		Scan(&summary.ActiveMemberCount).Error
	if err != nil {
		return nil, err
	}

	var marks struct {
		Present int64
		Total   int64
	}
	err = db.WithContext(ctx).Raw(`
			SELECT
				COALESCE(SUM(present), 0) AS present,
				COUNT(*) AS total
			FROM attendance_records
			WHERE academy_id = ?
				AND DATE_FORMAT(date, '%Y-%m') = ?
		`, academyId, monthKey).
		Scan(&marks).Error
	if err != nil {
		return nil, err
	}
	if marks.Total > 0 {
		summary.AttendanceRate = decimal.NewFromInt(marks.Present).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(marks.Total)).
			Round(1)
	}

	logSlowReport(ctx, "monthly_summary", started, map[string]any{"month": monthKey})
	if reportCacheEnabled() {
		_ = cacheSet(cacheKey, summary, reportCacheTTL())
	}
	return summary, nil
}
