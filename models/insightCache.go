package models

import (
	"time"

	"github.com/Jasemalbateni/academybase-sub001/config"
	"github.com/Jasemalbateni/academybase-sub001/utils"
)

/*
caches:
	Insights:$academyId:$monthKey
*/

func InsightCacheKey(academyId string, monthKey string) string {
	return "Insights:" + academyId + ":" + monthKey
}

// RemoveInsightCache drops the cached insight lists the refresher maintains,
// the current and the previous month. Older months are recomputed on demand.
func RemoveInsightCache(academyId string) error {
	now := time.Now()
	thisMonth := utils.MonthKey(now)
	prevMonth := utils.MonthKey(now.AddDate(0, -1, 0))
	return config.RemoveRedisKey(
		InsightCacheKey(academyId, thisMonth),
		InsightCacheKey(academyId, prevMonth),
	)
}
