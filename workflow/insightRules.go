package workflow

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Jasemalbateni/academybase-sub001/models"
	"github.com/Jasemalbateni/academybase-sub001/utils"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// renewalRateDropRule compares the share of renewing members between the
// previous and selected months. A member's payment counts as "new" when the
// earliest paid date across all history falls inside the month.
func renewalRateDropRule(snapshot *models.Snapshot, today time.Time) []Insight {
	selectedRate, selectedCount := renewalRate(snapshot, snapshot.Month)
	prevRate, prevCount := renewalRate(snapshot, snapshot.PrevMonth)
	if selectedCount == 0 || prevCount == 0 {
		return nil
	}
	drop := prevRate - selectedRate
	if drop < 10 {
		return nil
	}
	severity := models.InsightSeverityWarning
	if drop >= 25 {
		severity = models.InsightSeverityCritical
	}
	return []Insight{{
		Id:       InsightID("renewal-rate-drop", snapshot.AcademyId, snapshot.Month),
		Title:    "Renewal rate dropped",
		Description: fmt.Sprintf("Renewal rate fell from %d%% in %s to %d%% in %s.",
			prevRate, snapshot.PrevMonth, selectedRate, snapshot.Month),
		Severity: severity,
		Scope:    models.InsightScopeAcademy,
		ScopeKey: snapshot.AcademyId,
		Actions: []string{
			"Review members whose subscriptions lapsed this month",
			"Follow up with expiring members before their end date",
		},
		Metrics: map[string]decimal.Decimal{
			"rate":      decimal.NewFromInt(int64(selectedRate)),
			"prev_rate": decimal.NewFromInt(int64(prevRate)),
			"drop":      decimal.NewFromInt(int64(drop)),
		},
		CreatedAt: today,
	}}
}

// renewalRate returns the rounded percentage of renewing members among those
// with a qualifying payment in the month, plus the qualifying payment count.
func renewalRate(snapshot *models.Snapshot, monthKey string) (int, int) {
	// one vote per member, earliest classification wins
	seen := map[int]bool{}
	newMembers := 0
	renewals := 0
	qualifying := 0
	for _, payment := range snapshot.Payments {
		if payment.Kind == models.PaymentKindLegacy {
			continue
		}
		if utils.MonthKey(payment.PaidDate) != monthKey {
			continue
		}
		qualifying++
		if seen[payment.MemberId] {
			continue
		}
		seen[payment.MemberId] = true
		earliest, ok := snapshot.EarliestPaid[payment.MemberId]
		if ok && utils.MonthKey(earliest) != monthKey {
			renewals++
		} else {
			newMembers++
		}
	}
	total := renewals + newMembers
	if total == 0 {
		return 0, qualifying
	}
	rate := decimal.NewFromInt(int64(renewals)).Mul(oneHundred).
		Div(decimal.NewFromInt(int64(total))).Round(0)
	return int(rate.IntPart()), qualifying
}

// revenueDropRule compares live revenue totals of the two months.
func revenueDropRule(snapshot *models.Snapshot, today time.Time) []Insight {
	selected := monthRevenue(snapshot, snapshot.Month)
	prev := monthRevenue(snapshot, snapshot.PrevMonth)
	if selected.IsZero() || prev.IsZero() {
		return nil
	}
	dropPct := prev.Sub(selected).Mul(oneHundred).Div(prev)
	if dropPct.LessThan(decimal.NewFromInt(15)) {
		return nil
	}
	severity := models.InsightSeverityWarning
	if dropPct.GreaterThanOrEqual(decimal.NewFromInt(30)) {
		severity = models.InsightSeverityCritical
	}
	return []Insight{{
		Id:       InsightID("revenue-drop", snapshot.AcademyId, snapshot.Month),
		Title:    "Revenue dropped",
		Description: fmt.Sprintf("Revenue fell %s%% from %s to %s.",
			dropPct.Round(1).String(), snapshot.PrevMonth, snapshot.Month),
		Severity: severity,
		Scope:    models.InsightScopeAcademy,
		ScopeKey: snapshot.AcademyId,
		Actions: []string{
			"Check for payments recorded in the wrong month",
			"Review this month's pricing and discounts",
		},
		Metrics: map[string]decimal.Decimal{
			"revenue":      selected,
			"prev_revenue": prev,
			"drop_pct":     dropPct.Round(1),
		},
		CreatedAt: today,
	}}
}

func monthRevenue(snapshot *models.Snapshot, monthKey string) decimal.Decimal {
	total := decimal.Zero
	for _, line := range snapshot.Finance {
		if line.Month != monthKey || line.Type != models.FinanceTransactionTypeRevenue {
			continue
		}
		total = total.Add(line.Amount)
	}
	return total
}

// upcomingExpirationsRule flags members whose authoritative end date lands in
// the coming week, today inclusive.
func upcomingExpirationsRule(snapshot *models.Snapshot, today time.Time) []Insight {
	horizon := today.AddDate(0, 0, 7)
	expiring := 0
	names := []string{}
	for _, member := range snapshot.Members {
		if member.EndDate == nil || !utils.DereferencePtr(member.IsActive) {
			continue
		}
		end := *member.EndDate
		if dateBefore(end, today) || dateBefore(horizon, end) {
			continue
		}
		expiring++
		if len(names) < 5 {
			names = append(names, member.Name)
		}
	}
	if expiring == 0 {
		return nil
	}
	severity := models.InsightSeverityInfo
	if expiring >= 5 {
		severity = models.InsightSeverityCritical
	} else if expiring >= 2 {
		severity = models.InsightSeverityWarning
	}
	return []Insight{{
		Id:       InsightID("upcoming-expirations", snapshot.AcademyId, snapshot.Month),
		Title:    "Subscriptions expiring soon",
		Description: fmt.Sprintf("%d member subscriptions end within the next 7 days.",
			expiring),
		Severity: severity,
		Scope:    models.InsightScopeAcademy,
		ScopeKey: snapshot.AcademyId,
		Actions:  append([]string{"Contact members about renewal"}, names...),
		Metrics: map[string]decimal.Decimal{
			"expiring": decimal.NewFromInt(int64(expiring)),
		},
		CreatedAt: today,
	}}
}

// consecutiveAbsencesRule emits one insight per member whose longest run of
// absences in the month reached three sessions.
func consecutiveAbsencesRule(snapshot *models.Snapshot, today time.Time) []Insight {
	type memberRuns struct {
		records int
		longest int
		current int
	}
	// snapshot attendance arrives ascending by date
	runs := map[int]*memberRuns{}
	for _, record := range snapshot.Attendance {
		stats, ok := runs[record.MemberId]
		if !ok {
			stats = &memberRuns{}
			runs[record.MemberId] = stats
		}
		stats.records++
		if utils.DereferencePtr(record.Present) {
			stats.current = 0
			continue
		}
		stats.current++
		if stats.current > stats.longest {
			stats.longest = stats.current
		}
	}

	insights := []Insight{}
	// member order keeps equal-severity output deterministic
	for _, member := range snapshot.Members {
		stats, ok := runs[member.ID]
		if !ok || stats.records < 3 || stats.longest < 3 {
			continue
		}
		severity := models.InsightSeverityWarning
		if stats.longest >= 5 {
			severity = models.InsightSeverityCritical
		}
		insights = append(insights, Insight{
			Id:       InsightID("consecutive-absences", strconv.Itoa(member.ID), snapshot.Month),
			Title:    "Member missing sessions in a row",
			Description: fmt.Sprintf("%s missed %d consecutive sessions in %s.",
				member.Name, stats.longest, snapshot.Month),
			Severity: severity,
			Scope:    models.InsightScopeMember,
			ScopeKey: strconv.Itoa(member.ID),
			Actions: []string{
				"Call the member to check in",
				"Confirm the training schedule still suits them",
			},
			Metrics: map[string]decimal.Decimal{
				"longest_run": decimal.NewFromInt(int64(stats.longest)),
				"records":     decimal.NewFromInt(int64(stats.records)),
			},
			CreatedAt: today,
		})
	}
	return insights
}

// lowBranchAttendanceRule flags branches whose attendance rate trails the
// academy-wide unweighted average by twenty points or more.
func lowBranchAttendanceRule(snapshot *models.Snapshot, today time.Time) []Insight {
	type branchTally struct {
		present int
		total   int
	}
	tallies := map[int]*branchTally{}
	for _, record := range snapshot.Attendance {
		if record.BranchId == 0 {
			continue
		}
		tally, ok := tallies[record.BranchId]
		if !ok {
			tally = &branchTally{}
			tallies[record.BranchId] = tally
		}
		tally.total++
		if utils.DereferencePtr(record.Present) {
			tally.present++
		}
	}
	if len(tallies) < 2 {
		return nil
	}

	rates := map[int]decimal.Decimal{}
	sum := decimal.Zero
	for branchId, tally := range tallies {
		rate := decimal.NewFromInt(int64(tally.present)).Mul(oneHundred).
			Div(decimal.NewFromInt(int64(tally.total)))
		rates[branchId] = rate
		sum = sum.Add(rate)
	}
	average := sum.Div(decimal.NewFromInt(int64(len(rates))))

	insights := []Insight{}
	for _, branch := range snapshot.Branches {
		rate, ok := rates[branch.ID]
		if !ok {
			continue
		}
		gap := average.Sub(rate)
		if gap.LessThan(decimal.NewFromInt(20)) {
			continue
		}
		severity := models.InsightSeverityWarning
		if gap.GreaterThanOrEqual(decimal.NewFromInt(35)) {
			severity = models.InsightSeverityCritical
		}
		insights = append(insights, Insight{
			Id:       InsightID("low-branch-attendance", strconv.Itoa(branch.ID), snapshot.Month),
			Title:    "Branch attendance trailing",
			Description: fmt.Sprintf("%s attendance is %s%%, %s points below the academy average of %s%%.",
				branch.Name, rate.Round(1).String(), gap.Round(1).String(), average.Round(1).String()),
			Severity: severity,
			Scope:    models.InsightScopeBranch,
			ScopeKey: strconv.Itoa(branch.ID),
			Actions: []string{
				"Review the branch training schedule",
				"Ask the branch coach about recent no-shows",
			},
			Metrics: map[string]decimal.Decimal{
				"rate":    rate.Round(1),
				"average": average.Round(1),
				"gap":     gap.Round(1),
			},
			CreatedAt: today,
		})
	}
	return insights
}
