package workflow

import (
	"context"
	"sort"
	"time"

	"github.com/Jasemalbateni/academybase-sub001/config"
	"github.com/Jasemalbateni/academybase-sub001/models"
	"github.com/Jasemalbateni/academybase-sub001/utils"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var tracer trace.Tracer = otel.Tracer("academybase")

// Insight is one finding the rule engine produced for a month. Ids are
// deterministic functions of rule, scope and month so two runs over the same
// facts emit the same list.
type Insight struct {
	Id          string                     `json:"id"`
	Title       string                     `json:"title"`
	Description string                     `json:"description"`
	Severity    models.InsightSeverity     `json:"severity"`
	Scope       models.InsightScope        `json:"scope"`
	ScopeKey    string                     `json:"scope_key"`
	Actions     []string                   `json:"actions"`
	Metrics     map[string]decimal.Decimal `json:"metrics"`
	CreatedAt   time.Time                  `json:"created_at"`
}

// InsightID builds the stable identifier: <rule>-<scope-key>-<month>.
func InsightID(rule string, scopeKey string, month string) string {
	return rule + "-" + scopeKey + "-" + month
}

type insightRule struct {
	key string
	run func(snapshot *models.Snapshot, today time.Time) []Insight
}

// registration order fixes the relative order of equal-severity insights
var insightRules = []insightRule{
	{key: "renewal-rate-drop", run: renewalRateDropRule},
	{key: "revenue-drop", run: revenueDropRule},
	{key: "upcoming-expirations", run: upcomingExpirationsRule},
	{key: "consecutive-absences", run: consecutiveAbsencesRule},
	{key: "low-branch-attendance", run: lowBranchAttendanceRule},
}

// RunRules evaluates every enabled rule against the snapshot and returns the
// findings in severity order. The sort is stable so equal severities keep the
// rule registration order.
func RunRules(snapshot *models.Snapshot, today time.Time) []Insight {
	insights := []Insight{}
	for _, rule := range insightRules {
		if config.InsightRuleDisabled(rule.key) {
			continue
		}
		insights = append(insights, rule.run(snapshot, today)...)
	}
	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].Severity.Rank() < insights[j].Severity.Rank()
	})
	return insights
}

// GetInsights serves one academy's insight list for a month, redis cached.
// A miss loads the snapshot and computes fresh; deterministic ids make the
// two paths indistinguishable to callers.
func GetInsights(ctx context.Context, academyId string, monthKey string) ([]Insight, error) {
	ctx, span := tracer.Start(ctx, "GetInsights")
	defer span.End()

	cacheKey := models.InsightCacheKey(academyId, monthKey)
	cached := []Insight{}
	if found, err := config.GetRedisObject(cacheKey, &cached); err == nil && found {
		return cached, nil
	}
	return RefreshInsights(ctx, academyId, monthKey)
}

// RefreshInsights recomputes one academy's insights and rewrites the cache.
func RefreshInsights(ctx context.Context, academyId string, monthKey string) ([]Insight, error) {
	snapshot, err := models.LoadSnapshot(ctx, academyId, monthKey)
	if err != nil {
		return nil, err
	}
	insights := RunRules(snapshot, utils.Today())
	if err := config.SetRedisObject(models.InsightCacheKey(academyId, monthKey), insights, insightCacheLifespan()); err != nil {
		logger := config.GetLogger()
		config.LogError(logger, "Insights.go", "RefreshInsights", "caching insights", academyId, err)
	}
	return insights, nil
}

func insightCacheLifespan() time.Duration {
	return time.Hour
}
