package reports

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/Jasemalbateni/academybase-sub001/config"
	"github.com/Jasemalbateni/academybase-sub001/utils"
	"github.com/shopspring/decimal"
)

type PaymentActivityRow struct {
	Month        string          `json:"month"`
	PaymentCount int             `json:"payment_count"`
	PayerCount   int             `json:"payer_count"`
	Amount       decimal.Decimal `json:"amount"`
}

// GetPaymentActivity aggregates payments per month inside a named filter
// period (thisMonth, previousMonth, last6months, last12months), optionally
// narrowed to one branch's members.
func GetPaymentActivity(ctx context.Context, filterType string, branchId *int) ([]*PaymentActivityRow, error) {

	sqlTemplate := `
SELECT
    DATE_FORMAT(p.paid_date, '%Y-%m') AS month,
    COUNT(*) AS payment_count,
    COUNT(DISTINCT p.member_id) AS payer_count,
    COALESCE(SUM(p.amount), 0) AS amount
FROM
    payments p
    {{- if .branchId }}
    JOIN members m ON m.id = p.member_id AND m.academy_id = p.academy_id
    {{- end }}
WHERE
    p.academy_id = @academyId
    AND p.paid_date >= @startDate
    AND p.paid_date <= @endDate
    {{- if .branchId }} AND m.branch_id = @branchId {{- end }}
GROUP BY
    DATE_FORMAT(p.paid_date, '%Y-%m')
ORDER BY
    month;
`

	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return nil, errors.New("academy id is required")
	}
	startDate, endDate, err := utils.GetPeriodRange(filterType)
	if err != nil {
		return nil, err
	}

	cacheKey := "Report:PaymentActivity:" + academyId + ":" + filterType
	if branchId != nil && *branchId > 0 {
		cacheKey += ":" + strconv.Itoa(*branchId)
	}
	if reportCacheEnabled() {
		var cached []*PaymentActivityRow
		if found, err := cacheGet(cacheKey, &cached); err == nil && found {
			return cached, nil
		}
	}
	started := time.Now()

	sql, err := utils.ExecTemplate(sqlTemplate, map[string]interface{}{
		"branchId": utils.DereferencePtr(branchId, 0),
	})
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var results []*PaymentActivityRow
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"academyId": academyId,
		"startDate": startDate,
		"endDate":   endDate,
		"branchId":  branchId,
	}).Scan(&results).Error; err != nil {
		return nil, err
	}

	logSlowReport(ctx, "payment_activity", started, map[string]any{"period": filterType})
	if reportCacheEnabled() {
		_ = cacheSet(cacheKey, results, reportCacheTTL())
	}
	return results, nil
}
