package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Jasemalbateni/academybase-sub001/config"
	"github.com/Jasemalbateni/academybase-sub001/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FinanceTransaction is one ledger line. Lines are never destroyed: reversal
// flips the source to "suppressed" and every aggregation filters those out.
type FinanceTransaction struct {
	ID        int                      `gorm:"primary_key" json:"id"`
	AcademyId string                   `gorm:"index;not null" json:"academy_id"`
	Month     string                   `gorm:"size:7;index;not null" json:"month"`
	Type      FinanceTransactionType   `gorm:"type:enum('expense','revenue');not null" json:"type"`
	Amount    decimal.Decimal          `gorm:"type:decimal(20,4);default:0" json:"amount"`
	Source    FinanceTransactionSource `gorm:"type:enum('auto','manual','suppressed');default:manual" json:"source"`
	// set for auto lines only, points back at the originating payment
	PaymentId   *int      `gorm:"index;default:NULL" json:"payment_id"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewFinanceTransaction struct {
	Month       string `json:"month" binding:"required"`
	Type        string `json:"type" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	Description string `json:"description"`
}

type FinanceSummary struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

// createAutoFinanceLine writes the revenue line a payment generates, keyed to
// the month of its paid date. Runs inside the payment's transaction.
func createAutoFinanceLine(tx *gorm.DB, payment *Payment) error {
	line := FinanceTransaction{
		AcademyId:   payment.AcademyId,
		Month:       utils.MonthKey(payment.PaidDate),
		Type:        FinanceTransactionTypeRevenue,
		Amount:      payment.Amount,
		Source:      FinanceTransactionSourceAuto,
		PaymentId:   &payment.ID,
		Description: "subscription payment",
	}
	return tx.Create(&line).Error
}

// suppressAutoFinanceLine reverses the live auto line(s) of a payment.
func suppressAutoFinanceLine(tx *gorm.DB, academyId string, paymentId int) error {
	return tx.Model(&FinanceTransaction{}).
		Where("academy_id = ? AND payment_id = ? AND source = ?",
			academyId, paymentId, FinanceTransactionSourceAuto).
		UpdateColumn("Source", FinanceTransactionSourceSuppressed).Error
}

// CreateManualFinanceTransaction records a hand-entered ledger line. Auto
// lines only ever come from payments.
func CreateManualFinanceTransaction(ctx context.Context, input *NewFinanceTransaction) (*FinanceTransaction, error) {

	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return nil, errors.New("academy id is required")
	}

	if _, err := utils.ParseMonth(input.Month); err != nil {
		return nil, err
	}
	txType, err := ParseFinanceTransactionType(input.Type)
	if err != nil {
		return nil, err
	}
	amount, err := utils.ParseDecimal(input.Amount)
	if err != nil {
		return nil, errors.New("invalid amount")
	}
	if amount.IsNegative() {
		return nil, errors.New("amount cannot be negative")
	}

	line := FinanceTransaction{
		AcademyId:   academyId,
		Month:       input.Month,
		Type:        txType,
		Amount:      amount,
		Source:      FinanceTransactionSourceManual,
		Description: input.Description,
	}

	// db action
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&line).Error; err != nil {
		return nil, err
	}

	// caching
	if err := RemoveInsightCache(academyId); err != nil {
		return nil, err
	}

	return &line, nil
}

// SuppressFinanceTransaction flips any line's source to suppressed.
func SuppressFinanceTransaction(ctx context.Context, id int) (*FinanceTransaction, error) {

	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return nil, errors.New("academy id is required")
	}

	result, err := utils.FetchModel[FinanceTransaction](ctx, academyId, id)
	if err != nil {
		return nil, err
	}
	if result.Source == FinanceTransactionSourceSuppressed {
		return nil, errors.New("transaction is already suppressed")
	}

	// db action
	db := config.GetDB()
	tx := db.Begin()
	before := *result
	Tx := tx.WithContext(ctx).Model(&result).
		UpdateColumn("Source", FinanceTransactionSourceSuppressed)
	if Tx.Error != nil {
		tx.Rollback()
		return nil, Tx.Error
	}

	if err := SaveHistoryUpdate(Tx, result.ID, &before, "finance transaction suppressed"); err != nil {
		tx.Rollback()
		return nil, err
	}

	// caching
	if err := RemoveRedisBoth(*result); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := RemoveInsightCache(academyId); err != nil {
		tx.Rollback()
		return nil, err
	}

	return result, tx.Commit().Error
}

// GetFinanceTransactions lists lines for a month. Suppressed lines are
// excluded unless explicitly requested.
func GetFinanceTransactions(ctx context.Context, month *string, includeSuppressed bool) ([]*FinanceTransaction, error) {
	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return nil, errors.New("academy id is required")
	}

	db := config.GetDB()
	var results []*FinanceTransaction

	dbCtx := db.WithContext(ctx).Where("academy_id = ?", academyId)
	if month != nil && *month != "" {
		if _, err := utils.ParseMonth(*month); err != nil {
			return nil, err
		}
		dbCtx = dbCtx.Where("month = ?", *month)
	}
	if !includeSuppressed {
		dbCtx = dbCtx.Where("source <> ?", FinanceTransactionSourceSuppressed)
	}
	// db query
	err := dbCtx.Order("month DESC, id DESC").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetFinanceSummary totals the month's live lines.
func GetFinanceSummary(ctx context.Context, month string) (*FinanceSummary, error) {
	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return nil, errors.New("academy id is required")
	}
	if _, err := utils.ParseMonth(month); err != nil {
		return nil, err
	}

	revenue, err := MonthRevenue(ctx, academyId, month)
	if err != nil {
		return nil, err
	}
	expense, err := monthTotal(ctx, academyId, month, FinanceTransactionTypeExpense)
	if err != nil {
		return nil, err
	}

	return &FinanceSummary{
		Month:   month,
		Revenue: revenue,
		Expense: expense,
		Net:     revenue.Sub(expense),
	}, nil
}

// MonthRevenue sums the month's revenue lines, suppressed excluded.
func MonthRevenue(ctx context.Context, academyId string, month string) (decimal.Decimal, error) {
	return monthTotal(ctx, academyId, month, FinanceTransactionTypeRevenue)
}

func monthTotal(ctx context.Context, academyId string, month string, txType FinanceTransactionType) (decimal.Decimal, error) {
	db := config.GetDB()
	var total decimal.NullDecimal
	err := db.WithContext(ctx).Model(&FinanceTransaction{}).
		Select("SUM(amount)").
		Where("academy_id = ? AND month = ? AND type = ? AND source <> ?",
			academyId, month, txType, FinanceTransactionSourceSuppressed).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// BackfillAutoFinanceLines creates the missing auto revenue line for every
// payment of the academy that has no line pointing back at it. Suppressed
// lines still count as coverage. Returns the number of uncovered payments.
func BackfillAutoFinanceLines(ctx context.Context, academyId string, dryRun bool) (int, error) {
	db := config.GetDB()
	var orphans []*Payment
	err := db.WithContext(ctx).
		Where("academy_id = ? AND id NOT IN (?)", academyId,
			db.Model(&FinanceTransaction{}).
				Select("payment_id").
				Where("academy_id = ? AND payment_id IS NOT NULL", academyId)).
		Order("id").
		Find(&orphans).Error
	if err != nil {
		return 0, err
	}
	if dryRun {
		return len(orphans), nil
	}
	for _, payment := range orphans {
		if err := createAutoFinanceLine(db.WithContext(ctx), payment); err != nil {
			return len(orphans), fmt.Errorf("payment %d: %w", payment.ID, err)
		}
	}
	return len(orphans), nil
}

// FinanceTransactionsInMonths lists live lines for a set of month keys,
// feeding the insight snapshot.
func FinanceTransactionsInMonths(ctx context.Context, academyId string, months []string) ([]*FinanceTransaction, error) {
	db := config.GetDB()
	var results []*FinanceTransaction
	err := db.WithContext(ctx).
		Where("academy_id = ? AND month IN ? AND source <> ?",
			academyId, months, FinanceTransactionSourceSuppressed).
		Order("month, id").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
