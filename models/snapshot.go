package models

import (
	"context"
	"time"

	"github.com/Jasemalbateni/academybase-sub001/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var tracer trace.Tracer = otel.Tracer("academybase")

// Snapshot is the immutable fact set the insight rule engine scans. It is
// loaded once per computation and passed explicitly; the engine holds no
// caches of its own.
type Snapshot struct {
	AcademyId string `json:"academy_id"`
	// selected month key (YYYY-MM) and the month before it
	Month     string `json:"month"`
	PrevMonth string `json:"prev_month"`

	Members  []*Member `json:"members"`
	Branches []*Branch `json:"branches"`
	// payments paid within the previous and selected months, ascending
	Payments []*Payment `json:"payments"`
	// earliest-ever paid date per member, across all history and kinds
	EarliestPaid map[int]time.Time `json:"earliest_paid"`
	// marks dated inside the selected month, ascending by date
	Attendance []*AttendanceRecord `json:"attendance"`
	// live ledger lines of the two months (suppressed already filtered)
	Finance []*FinanceTransaction `json:"finance"`
}

// BranchName resolves a branch id against the snapshot, empty when unknown.
func (s *Snapshot) BranchName(branchId int) string {
	for _, branch := range s.Branches {
		if branch.ID == branchId {
			return branch.Name
		}
	}
	return ""
}

// MemberName resolves a member id against the snapshot, empty when unknown.
func (s *Snapshot) MemberName(memberId int) string {
	for _, member := range s.Members {
		if member.ID == memberId {
			return member.Name
		}
	}
	return ""
}

// LoadSnapshot gathers every fact the rule engine needs for one academy and
// month. The individual loads are plain scoped queries; callers hold the
// result immutable for the duration of the computation.
func LoadSnapshot(ctx context.Context, academyId string, monthKey string) (*Snapshot, error) {
	ctx, span := tracer.Start(ctx, "LoadSnapshot")
	defer span.End()

	prevMonth, err := utils.PrevMonthKey(monthKey)
	if err != nil {
		return nil, err
	}
	monthStart, monthEnd, err := utils.MonthRange(monthKey)
	if err != nil {
		return nil, err
	}
	prevStart, _, err := utils.MonthRange(prevMonth)
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		AcademyId: academyId,
		Month:     monthKey,
		PrevMonth: prevMonth,
	}

	// tenant scope comes from the explicit academy id on each query
	if snapshot.Members, err = FetchMembersOf(ctx, academyId); err != nil {
		return nil, err
	}
	if snapshot.Branches, err = FetchBranchesOf(ctx, academyId); err != nil {
		return nil, err
	}
	if snapshot.Payments, err = PaymentsInMonths(ctx, academyId, prevStart, monthEnd); err != nil {
		return nil, err
	}
	if snapshot.EarliestPaid, err = EarliestPaymentDates(ctx, academyId); err != nil {
		return nil, err
	}
	if snapshot.Attendance, err = AttendanceInMonths(ctx, academyId, monthStart, monthEnd); err != nil {
		return nil, err
	}
	if snapshot.Finance, err = FinanceTransactionsInMonths(ctx, academyId, []string{prevMonth, monthKey}); err != nil {
		return nil, err
	}

	return snapshot, nil
}
