package workflow

import (
	"reflect"
	"testing"
	"time"

	"github.com/Jasemalbateni/academybase-sub001/models"
	"github.com/shopspring/decimal"
)

func emptySnapshot() *models.Snapshot {
	return &models.Snapshot{
		AcademyId:    "acad-1",
		Month:        "2024-03",
		PrevMonth:    "2024-02",
		EarliestPaid: map[int]time.Time{},
	}
}

func addPayment(s *models.Snapshot, memberId int, paid time.Time, earliest time.Time) {
	s.Payments = append(s.Payments, &models.Payment{
		MemberId: memberId,
		PaidDate: paid,
		Kind:     models.PaymentKindSubscription,
	})
	s.EarliestPaid[memberId] = earliest
}

func TestRenewalRateDropRule(t *testing.T) {
	s := emptySnapshot()
	march := date(2024, time.March, 10)
	feb := date(2024, time.February, 10)
	jan := date(2024, time.January, 10)

	// selected month: 6 first-ever payers, 4 renewals, rate 40%
	for i := 1; i <= 6; i++ {
		addPayment(s, i, march, march)
	}
	for i := 7; i <= 10; i++ {
		addPayment(s, i, march, jan)
	}
	// previous month: 13 renewals of 20, rate 65%
	for i := 101; i <= 107; i++ {
		addPayment(s, i, feb, feb)
	}
	for i := 108; i <= 120; i++ {
		addPayment(s, i, feb, jan)
	}

	insights := renewalRateDropRule(s, date(2024, time.March, 20))
	if len(insights) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(insights))
	}
	insight := insights[0]
	if insight.Severity != models.InsightSeverityCritical {
		t.Fatalf("drop of 25 points should be critical, got %s", insight.Severity)
	}
	if insight.Id != "renewal-rate-drop-acad-1-2024-03" {
		t.Fatalf("unexpected id %q", insight.Id)
	}
	if !insight.Metrics["rate"].Equal(decimal.NewFromInt(40)) {
		t.Fatalf("rate = %s, want 40", insight.Metrics["rate"])
	}
	if !insight.Metrics["prev_rate"].Equal(decimal.NewFromInt(65)) {
		t.Fatalf("prev_rate = %s, want 65", insight.Metrics["prev_rate"])
	}
}

func TestRenewalRateDropRuleNeedsBothMonths(t *testing.T) {
	s := emptySnapshot()
	march := date(2024, time.March, 10)
	addPayment(s, 1, march, march)

	if insights := renewalRateDropRule(s, march); len(insights) != 0 {
		t.Fatalf("no prior-month payments should suppress the rule, got %d", len(insights))
	}
}

func TestRenewalRateDropRuleIgnoresLegacy(t *testing.T) {
	s := emptySnapshot()
	s.Payments = append(s.Payments, &models.Payment{
		MemberId: 1,
		PaidDate: date(2024, time.March, 10),
		Kind:     models.PaymentKindLegacy,
	})
	s.Payments = append(s.Payments, &models.Payment{
		MemberId: 2,
		PaidDate: date(2024, time.February, 10),
		Kind:     models.PaymentKindLegacy,
	})

	if insights := renewalRateDropRule(s, date(2024, time.March, 20)); len(insights) != 0 {
		t.Fatalf("legacy payments never qualify, got %d insights", len(insights))
	}
}

func addRevenue(s *models.Snapshot, month string, amount int64) {
	s.Finance = append(s.Finance, &models.FinanceTransaction{
		Month:  month,
		Type:   models.FinanceTransactionTypeRevenue,
		Amount: decimal.NewFromInt(amount),
		Source: models.FinanceTransactionSourceAuto,
	})
}

func TestRevenueDropRule(t *testing.T) {
	s := emptySnapshot()
	addRevenue(s, "2024-02", 1000)
	addRevenue(s, "2024-03", 650)

	insights := revenueDropRule(s, date(2024, time.March, 20))
	if len(insights) != 1 {
		t.Fatalf("35%% drop should trigger, got %d insights", len(insights))
	}
	if insights[0].Severity != models.InsightSeverityCritical {
		t.Fatalf("drop of 35%% should be critical, got %s", insights[0].Severity)
	}

	s = emptySnapshot()
	addRevenue(s, "2024-02", 1000)
	addRevenue(s, "2024-03", 800)
	insights = revenueDropRule(s, date(2024, time.March, 20))
	if len(insights) != 1 || insights[0].Severity != models.InsightSeverityWarning {
		t.Fatalf("drop of 20%% should be a single warning, got %v", insights)
	}

	s = emptySnapshot()
	addRevenue(s, "2024-02", 1000)
	addRevenue(s, "2024-03", 900)
	if insights = revenueDropRule(s, date(2024, time.March, 20)); len(insights) != 0 {
		t.Fatalf("drop of 10%% should not trigger, got %d", len(insights))
	}
}

func TestRevenueDropRuleNeedsBothMonthsNonzero(t *testing.T) {
	s := emptySnapshot()
	addRevenue(s, "2024-03", 500)
	if insights := revenueDropRule(s, date(2024, time.March, 20)); len(insights) != 0 {
		t.Fatalf("zero prior revenue should suppress the rule, got %d", len(insights))
	}
}

func TestUpcomingExpirationsRule(t *testing.T) {
	today := date(2024, time.March, 20)
	s := emptySnapshot()
	for i := 1; i <= 5; i++ {
		s.Members = append(s.Members, &models.Member{
			ID:       i,
			Name:     "Member",
			EndDate:  datePtr(2024, time.March, 20+i),
			IsActive: boolPtr(true),
		})
	}
	// outside the window and inactive members never count
	s.Members = append(s.Members, &models.Member{
		ID: 6, EndDate: datePtr(2024, time.April, 15), IsActive: boolPtr(true),
	})
	s.Members = append(s.Members, &models.Member{
		ID: 7, EndDate: datePtr(2024, time.March, 22), IsActive: boolPtr(false),
	})

	insights := upcomingExpirationsRule(s, today)
	if len(insights) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(insights))
	}
	if insights[0].Severity != models.InsightSeverityCritical {
		t.Fatalf("5 expiring members should be critical, got %s", insights[0].Severity)
	}
	if !insights[0].Metrics["expiring"].Equal(decimal.NewFromInt(5)) {
		t.Fatalf("expiring = %s, want 5", insights[0].Metrics["expiring"])
	}
}

func TestUpcomingExpirationsWindowInclusive(t *testing.T) {
	today := date(2024, time.March, 20)
	s := emptySnapshot()
	s.Members = append(s.Members, &models.Member{
		ID: 1, EndDate: datePtr(2024, time.March, 20), IsActive: boolPtr(true),
	})
	s.Members = append(s.Members, &models.Member{
		ID: 2, EndDate: datePtr(2024, time.March, 27), IsActive: boolPtr(true),
	})
	s.Members = append(s.Members, &models.Member{
		ID: 3, EndDate: datePtr(2024, time.March, 28), IsActive: boolPtr(true),
	})

	insights := upcomingExpirationsRule(s, today)
	if len(insights) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(insights))
	}
	if !insights[0].Metrics["expiring"].Equal(decimal.NewFromInt(2)) {
		t.Fatalf("both window edges count, day 8 does not: expiring = %s, want 2",
			insights[0].Metrics["expiring"])
	}
	if insights[0].Severity != models.InsightSeverityWarning {
		t.Fatalf("2 expiring members should be a warning, got %s", insights[0].Severity)
	}
}

func addMark(s *models.Snapshot, memberId int, branchId int, day time.Time, present bool) {
	s.Attendance = append(s.Attendance, &models.AttendanceRecord{
		MemberId: memberId,
		BranchId: branchId,
		Date:     day,
		Present:  boolPtr(present),
	})
}

func TestConsecutiveAbsencesRule(t *testing.T) {
	s := emptySnapshot()
	s.Members = []*models.Member{
		{ID: 1, Name: "Runny"},
		{ID: 2, Name: "Steady"},
	}
	// member 1: present, then 3 absences in a row
	addMark(s, 1, 0, date(2024, time.March, 2), true)
	addMark(s, 1, 0, date(2024, time.March, 5), false)
	addMark(s, 1, 0, date(2024, time.March, 9), false)
	addMark(s, 1, 0, date(2024, time.March, 12), false)
	// member 2: absences broken up by attendance
	addMark(s, 2, 0, date(2024, time.March, 2), false)
	addMark(s, 2, 0, date(2024, time.March, 5), false)
	addMark(s, 2, 0, date(2024, time.March, 9), true)
	addMark(s, 2, 0, date(2024, time.March, 12), false)

	insights := consecutiveAbsencesRule(s, date(2024, time.March, 20))
	if len(insights) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(insights))
	}
	if insights[0].ScopeKey != "1" || insights[0].Scope != models.InsightScopeMember {
		t.Fatalf("insight should target member 1, got scope %s key %s",
			insights[0].Scope, insights[0].ScopeKey)
	}
	if insights[0].Severity != models.InsightSeverityWarning {
		t.Fatalf("run of 3 should be a warning, got %s", insights[0].Severity)
	}
}

func TestConsecutiveAbsencesNeedsThreeRecords(t *testing.T) {
	s := emptySnapshot()
	s.Members = []*models.Member{{ID: 1, Name: "Sparse"}}
	addMark(s, 1, 0, date(2024, time.March, 2), false)
	addMark(s, 1, 0, date(2024, time.March, 5), false)

	if insights := consecutiveAbsencesRule(s, date(2024, time.March, 20)); len(insights) != 0 {
		t.Fatalf("fewer than 3 records should never trigger, got %d", len(insights))
	}
}

func TestConsecutiveAbsencesCriticalAtFive(t *testing.T) {
	s := emptySnapshot()
	s.Members = []*models.Member{{ID: 1, Name: "Gone"}}
	for day := 1; day <= 5; day++ {
		addMark(s, 1, 0, date(2024, time.March, day), false)
	}

	insights := consecutiveAbsencesRule(s, date(2024, time.March, 20))
	if len(insights) != 1 || insights[0].Severity != models.InsightSeverityCritical {
		t.Fatalf("run of 5 should be critical, got %v", insights)
	}
}

func TestLowBranchAttendanceRule(t *testing.T) {
	s := emptySnapshot()
	s.Branches = []*models.Branch{
		{ID: 1, Name: "Downtown"},
		{ID: 2, Name: "Harbor"},
	}
	// branch 1: 100%, branch 2: 25%; average 62.5, gap 37.5
	for day := 1; day <= 4; day++ {
		addMark(s, 10, 1, date(2024, time.March, day), true)
	}
	addMark(s, 20, 2, date(2024, time.March, 1), true)
	addMark(s, 20, 2, date(2024, time.March, 2), false)
	addMark(s, 20, 2, date(2024, time.March, 3), false)
	addMark(s, 20, 2, date(2024, time.March, 4), false)

	insights := lowBranchAttendanceRule(s, date(2024, time.March, 20))
	if len(insights) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(insights))
	}
	if insights[0].ScopeKey != "2" || insights[0].Scope != models.InsightScopeBranch {
		t.Fatalf("insight should target branch 2, got scope %s key %s",
			insights[0].Scope, insights[0].ScopeKey)
	}
	if insights[0].Severity != models.InsightSeverityCritical {
		t.Fatalf("gap of 37.5 should be critical, got %s", insights[0].Severity)
	}
}

func TestLowBranchAttendanceNeedsTwoBranches(t *testing.T) {
	s := emptySnapshot()
	s.Branches = []*models.Branch{{ID: 1, Name: "Only"}}
	addMark(s, 10, 1, date(2024, time.March, 1), false)

	if insights := lowBranchAttendanceRule(s, date(2024, time.March, 20)); len(insights) != 0 {
		t.Fatalf("a single qualifying branch should never trigger, got %d", len(insights))
	}
}

func TestRunRulesDeterministicAndSorted(t *testing.T) {
	s := emptySnapshot()
	// revenue drop (warning)
	addRevenue(s, "2024-02", 1000)
	addRevenue(s, "2024-03", 800)
	// consecutive absences (critical)
	s.Members = []*models.Member{{ID: 1, Name: "Gone"}}
	for day := 1; day <= 5; day++ {
		addMark(s, 1, 0, date(2024, time.March, day), false)
	}

	today := date(2024, time.March, 20)
	first := RunRules(s, today)
	second := RunRules(s, today)

	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical input must produce identical output")
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 insights, got %d", len(first))
	}
	for i := 1; i < len(first); i++ {
		if first[i-1].Severity.Rank() > first[i].Severity.Rank() {
			t.Fatalf("insights out of severity order: %s before %s",
				first[i-1].Severity, first[i].Severity)
		}
	}
	if first[0].Severity != models.InsightSeverityCritical {
		t.Fatalf("critical insight should sort first, got %s", first[0].Severity)
	}
}

func boolPtr(v bool) *bool {
	return &v
}
