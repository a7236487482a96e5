package projection

import (
	"sort"

	v1 "github.com/aevon-lab/pulse/internal/api/v1"
	"github.com/aevon-lab/pulse/internal/core/aggregation"
)

// activityDays labels per-day counts with their weekday.
func activityDays(counts []aggregation.DailyCount) []aggregation.ActivityDay {
	days := make([]aggregation.ActivityDay, 0, len(counts))
	for _, c := range counts {
		days = append(days, aggregation.ActivityDay{
			Date:   c.Date,
			Day:    c.Date.WeekdayName(),
			Amount: c.Amount,
		})
	}
	return days
}

// twitOverview totals per-day twit counts across all days.
func twitOverview(counts []aggregation.DailyCount) aggregation.TwitOverview {
	overview := aggregation.TwitOverview{Twits: make([]aggregation.DailyCount, 0, len(counts))}
	for _, c := range counts {
		overview.Total += c.Amount
		overview.Twits = append(overview.Twits, c)
	}
	return overview
}

// hashtagDays builds one row per day present in daily, each carrying exactly
// the top tags with zero for tags unused that day. Tags outside top are dropped.
func hashtagDays(top, daily []aggregation.HashtagCount) []aggregation.HashtagDay {
	rows := make([]aggregation.HashtagDay, 0)
	if len(daily) == 0 {
		return rows
	}

	byDay := make(map[v1.Date]map[string]int64)
	var order []v1.Date
	for _, c := range daily {
		counts, ok := byDay[c.Date]
		if !ok {
			counts = make(map[string]int64, len(top))
			for _, t := range top {
				counts[t.Hashtag] = 0
			}
			byDay[c.Date] = counts
			order = append(order, c.Date)
		}
		if _, tracked := counts[c.Hashtag]; tracked {
			counts[c.Hashtag] += c.Count
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j].Time) })

	for _, d := range order {
		rows = append(rows, aggregation.HashtagDay{Date: d, Hashtags: byDay[d]})
	}
	return rows
}
