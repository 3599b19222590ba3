package aggregate

import (
	"time"

	"tokenlens/internal/domain"
)

// WeekCohort is one 7-day acquisition window anchored to campaign start
type WeekCohort struct {
	Week          int     `json:"week"` // 1-based
	StartsAt      int64   `json:"starts_at"`
	EndsAt        int64   `json:"ends_at"`
	Wallets       int     `json:"wallets"`
	TotalAcquired float64 `json:"total_acquired"`
	AvgAcquired   float64 `json:"avg_acquired"`
}

// WeeklyCohorts partitions wallets by the calendar week containing FirstSeen.
// Weeks are non-overlapping 7-day windows from campaignStart through now,
// the partial trailing week included. Wallets first seen before campaign start
// or after now are dropped; the sum of per-week counts equals the number of
// wallets partitioned
func WeeklyCohorts(profiles map[string]*domain.WalletProfile, campaignStart, now time.Time) []WeekCohort {
	if now.Before(campaignStart) {
		return nil
	}

	weeks := int(now.Sub(campaignStart).Hours()/(24*7)) + 1
	cohorts := make([]WeekCohort, weeks)
	for i := range cohorts {
		start := campaignStart.Add(time.Duration(i) * 7 * 24 * time.Hour)
		cohorts[i] = WeekCohort{
			Week:     i + 1,
			StartsAt: start.Unix(),
			EndsAt:   start.Add(7 * 24 * time.Hour).Unix(),
		}
	}

	startUnix := campaignStart.Unix()
	nowUnix := now.Unix()
	for _, p := range profiles {
		if p.FirstSeen < startUnix || p.FirstSeen > nowUnix {
			continue
		}
		idx := int((p.FirstSeen - startUnix) / (7 * 24 * 3600))
		if idx >= weeks {
			idx = weeks - 1
		}
		cohorts[idx].Wallets++
		cohorts[idx].TotalAcquired += p.TotalAcquired()
	}

	for i := range cohorts {
		if cohorts[i].Wallets > 0 {
			cohorts[i].AvgAcquired = cohorts[i].TotalAcquired / float64(cohorts[i].Wallets)
		}
	}

	return cohorts
}
