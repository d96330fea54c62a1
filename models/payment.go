package models

import (
	"context"
	"errors"
	"time"

	"github.com/Jasemalbateni/academybase-sub001/config"
	"github.com/Jasemalbateni/academybase-sub001/utils"
	"github.com/shopspring/decimal"
)

// Payment is one raw subscription purchase. Rows for a member are consumed
// by the period resolver in ascending start-date order.
type Payment struct {
	ID        int             `gorm:"primary_key" json:"id"`
	AcademyId string          `gorm:"index;not null" json:"academy_id"`
	MemberId  int             `gorm:"index;not null" json:"member_id" binding:"required"`
	PaidDate  time.Time       `gorm:"not null" json:"paid_date"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	Kind      PaymentKind     `gorm:"type:enum('subscription','legacy');default:subscription" json:"kind"`
	StartDate time.Time       `gorm:"index;not null" json:"start_date"`
	// nullable stored period end; the resolver synthesizes one when absent
	EndDate   *time.Time `gorm:"default:NULL" json:"end_date"`
	Notes     string     `gorm:"type:text" json:"notes"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewPayment struct {
	MemberId  int           `json:"member_id" binding:"required"`
	PaidDate  MyDateString  `json:"paid_date"`
	Amount    string        `json:"amount" binding:"required"`
	Kind      string        `json:"kind"`
	StartDate MyDateString  `json:"start_date"`
	EndDate   *MyDateString `json:"end_date"`
	Notes     string        `json:"notes"`
}

func (p Payment) GetId() int {
	return p.ID
}

func (p Payment) GetCursor() string {
	return p.PaidDate.String()
}

type PaymentsConnection struct {
	Edges    []*PaymentsEdge `json:"edges"`
	PageInfo *PageInfo       `json:"pageInfo"`
}

type PaymentsEdge Edge[Payment]

// validate input for both create & update. (id = 0 for create)

func (input *NewPayment) validate(ctx context.Context, academyId string, id int) (decimal.Decimal, error) {
	if id > 0 {
		if err := utils.ValidateResourceId[Payment](ctx, academyId, id); err != nil {
			return decimal.Zero, err
		}
	}
	// member
	if err := utils.ValidateResourceId[Member](ctx, academyId, input.MemberId); err != nil {
		return decimal.Zero, errors.New("member not found")
	}
	// amount
	amount, err := utils.ParseDecimal(input.Amount)
	if err != nil {
		return decimal.Zero, errors.New("invalid amount")
	}
	if amount.IsNegative() {
		return decimal.Zero, errors.New("amount cannot be negative")
	}
	// kind
	if input.Kind != "" {
		if _, err := ParsePaymentKind(input.Kind); err != nil {
			return decimal.Zero, err
		}
	}
	return amount, nil
}

// CreatePayment records a purchase and, in the same transaction, the auto
// revenue line for the paid month.
func CreatePayment(ctx context.Context, input *NewPayment) (*Payment, error) {

	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return nil, errors.New("academy id is required")
	}

	amount, err := input.validate(ctx, academyId, 0)
	if err != nil {
		return nil, err
	}

	// finance posting serializes per academy
	if err := utils.AcademyLock(ctx, academyId, "payment-posting", "payment.go", "CreatePayment"); err != nil {
		return nil, err
	}

	kind := PaymentKindSubscription
	if input.Kind != "" {
		kind, _ = ParsePaymentKind(input.Kind)
	}
	paidDate := input.PaidDate.Time()
	if paidDate.IsZero() {
		paidDate = utils.Today()
	}
	startDate := input.StartDate.Time()
	if startDate.IsZero() {
		startDate = paidDate
	}
	var endDate *time.Time
	if input.EndDate != nil && !input.EndDate.IsZero() {
		d := input.EndDate.Time()
		endDate = &d
	}

	payment := Payment{
		AcademyId: academyId,
		MemberId:  input.MemberId,
		PaidDate:  paidDate,
		Amount:    amount,
		Kind:      kind,
		StartDate: startDate,
		EndDate:   endDate,
		Notes:     input.Notes,
	}

	// db action
	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&payment).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// auto revenue line, same transaction as the payment
	if err := createAutoFinanceLine(tx.WithContext(ctx), &payment); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := SaveHistoryCreate(tx.WithContext(ctx), payment.ID, &payment, "payment created"); err != nil {
		tx.Rollback()
		return nil, err
	}

	// caching
	if err := RemoveRedisBoth(payment); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := RemoveInsightCache(academyId); err != nil {
		tx.Rollback()
		return nil, err
	}

	return &payment, tx.Commit().Error
}

// UpdatePayment suppresses the stale auto line and writes a fresh one for the
// new amount/date, keeping the ledger audit-preserving.
func UpdatePayment(ctx context.Context, id int, input *NewPayment) (*Payment, error) {

	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return nil, errors.New("academy id is required")
	}

	amount, err := input.validate(ctx, academyId, id)
	if err != nil {
		return nil, err
	}

	payment, err := utils.FetchModel[Payment](ctx, academyId, id)
	if err != nil {
		return nil, err
	}

	if err := utils.AcademyLock(ctx, academyId, "payment-posting", "payment.go", "UpdatePayment"); err != nil {
		return nil, err
	}

	kind := payment.Kind
	if input.Kind != "" {
		kind, _ = ParsePaymentKind(input.Kind)
	}
	paidDate := input.PaidDate.Time()
	if paidDate.IsZero() {
		paidDate = payment.PaidDate
	}
	startDate := input.StartDate.Time()
	if startDate.IsZero() {
		startDate = payment.StartDate
	}
	var endDate *time.Time
	if input.EndDate != nil && !input.EndDate.IsZero() {
		d := input.EndDate.Time()
		endDate = &d
	}

	moneyChanged := !payment.Amount.Equal(amount) || !payment.PaidDate.Equal(paidDate)

	// db action
	db := config.GetDB()
	tx := db.Begin()
	before := *payment
	Tx := tx.WithContext(ctx).Model(&payment).Updates(map[string]interface{}{
		"MemberId":  input.MemberId,
		"PaidDate":  paidDate,
		"Amount":    amount,
		"Kind":      kind,
		"StartDate": startDate,
		"EndDate":   endDate,
		"Notes":     input.Notes,
	})
	if Tx.Error != nil {
		tx.Rollback()
		return nil, Tx.Error
	}

	if moneyChanged {
		if err := suppressAutoFinanceLine(tx.WithContext(ctx), academyId, payment.ID); err != nil {
			tx.Rollback()
			return nil, err
		}
		if err := createAutoFinanceLine(tx.WithContext(ctx), payment); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := SaveHistoryUpdate(Tx, payment.ID, &before, "payment updated"); err != nil {
		tx.Rollback()
		return nil, err
	}

	// caching
	if err := RemoveRedisBoth(*payment); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := RemoveInsightCache(academyId); err != nil {
		tx.Rollback()
		return nil, err
	}

	return payment, tx.Commit().Error
}

// DeletePayment removes the row and suppresses its auto finance line instead
// of destroying the ledger entry.
func DeletePayment(ctx context.Context, id int) (*Payment, error) {

	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return nil, errors.New("academy id is required")
	}

	result, err := utils.FetchModel[Payment](ctx, academyId, id)
	if err != nil {
		return nil, err
	}

	if err := utils.AcademyLock(ctx, academyId, "payment-posting", "payment.go", "DeletePayment"); err != nil {
		return nil, err
	}

	// db action
	db := config.GetDB()
	tx := db.Begin()
	Tx := tx.WithContext(ctx).Delete(&result)
	if Tx.Error != nil {
		tx.Rollback()
		return nil, Tx.Error
	}

	if err := suppressAutoFinanceLine(tx.WithContext(ctx), academyId, result.ID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := SaveHistoryDelete(Tx, result.ID, result, "payment deleted"); err != nil {
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

func GetPayment(ctx context.Context, id int) (*Payment, error) {

	return GetResource[Payment](ctx, id)
}

// GetMemberPayments returns a member's rows ascending by start date, the
// order the period resolver expects.
func GetMemberPayments(ctx context.Context, memberId int) ([]*Payment, error) {
	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return nil, errors.New("academy id is required")
	}

	db := config.GetDB()
	var results []*Payment
	err := db.WithContext(ctx).
		Where("academy_id = ? AND member_id = ?", academyId, memberId).
		Order("start_date, id").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func PaginatePayment(ctx context.Context,
	limit *int,
	after *string,
	memberId *int,
) (*PaymentsConnection, error) {
	academyId, ok := utils.GetAcademyIdFromContext(ctx)
	if !ok || academyId == "" {
		return nil, errors.New("academy id is required")
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("academy_id = ?", academyId)
	if memberId != nil && *memberId > 0 {
		dbCtx.Where("member_id = ?", *memberId)
	}

	edges, pageInfo, err := FetchPageCompositeCursor[Payment](dbCtx, *limit, after, "paid_date", "<")
	if err != nil {
		return nil, err
	}
	var paymentsConnection PaymentsConnection
	paymentsConnection.PageInfo = pageInfo
	for _, edge := range edges {
		paymentsEdge := PaymentsEdge(edge)
		paymentsConnection.Edges = append(paymentsConnection.Edges, &paymentsEdge)
	}

	return &paymentsConnection, err
}

// PaymentsInMonths lists every payment of the academy whose paid date falls in
// [from, to), ascending. Used by the insight snapshot loader.
func PaymentsInMonths(ctx context.Context, academyId string, from time.Time, to time.Time) ([]*Payment, error) {
	db := config.GetDB()
	var results []*Payment
	err := db.WithContext(ctx).
		Where("academy_id = ? AND paid_date >= ? AND paid_date < ?", academyId, from, to).
		Order("paid_date, id").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// EarliestPaymentDates maps member id to the member's earliest paid date
// across all history, any kind. Feeds the new-vs-renewal partition.
func EarliestPaymentDates(ctx context.Context, academyId string) (map[int]time.Time, error) {
	db := config.GetDB()

	type row struct {
		MemberId int
		Earliest time.Time
	}
	var rows []row
	err := db.WithContext(ctx).Model(&Payment{}).
		Select("member_id, MIN(paid_date) AS earliest").
		Where("academy_id = ?", academyId).
		Group("member_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	earliest := make(map[int]time.Time, len(rows))
	for _, r := range rows {
		earliest[r.MemberId] = r.Earliest
	}
	return earliest, nil
}
