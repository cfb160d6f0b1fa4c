package returns

import (
	"time"

	"DistroDash/internal/domain/models"
	"DistroDash/pkg/util"
)

// MonthEndReturns aggregates, per month, the bars dated within the last days calendar days of that month in loc.
func MonthEndReturns(bars []models.Bar, days int, loc *time.Location, factor float64, lastX int) []models.ReturnRecord {
	if days <= 0 {
		return nil
	}
	out := groupBy(bars, factor, func(t time.Time) (string, bool) {
		lt := t.In(loc)
		lastDay := util.MonthEnd(lt).Day()
		if lastDay-lt.Day() > days-1 {
			return "", false
		}
		return lt.Format("2006-01"), true
	})
	return Tail(out, lastX)
}
