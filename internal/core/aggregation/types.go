package aggregation

import (
	v1 "github.com/aevon-lab/pulse/internal/api/v1"
)

// TopHashtagLimit is how many hashtags a hashtag summary reports per day.
const TopHashtagLimit = 10

// RegisterDay summarizes register events of one day.
type RegisterDay struct {
	Date                    v1.Date `json:"date"`
	RegisterUsers           int64   `json:"registerUsers"`
	AverageRegistrationTime float64 `json:"averageRegistrationTime"`
	SuccessRate             float64 `json:"successRate"` // 0..1
}

// RegisterWithProviderDay compares plain and federated registrations of one day.
type RegisterWithProviderDay struct {
	Date                            v1.Date `json:"date"`
	SuccessfulRegisters             int64   `json:"successfulRegisters"`
	SuccessfulRegistersWithProvider int64   `json:"successfulRegistersWithProvider"`
}

// LoginDay summarizes login events of one day.
type LoginDay struct {
	Date                v1.Date `json:"date"`
	LoginUsers          int64   `json:"loginUsers"`
	SuccessfulLogins    int64   `json:"successfulLogins"`
	FailedLoginAttempts int64   `json:"failedLoginAttempts"`
	AverageLoginTime    float64 `json:"averageLoginTime"`
}

// LoginWithProviderDay compares plain and federated logins of one day.
type LoginWithProviderDay struct {
	Date                         v1.Date `json:"date"`
	SuccessfulLogins             int64   `json:"successfulLogins"`
	SuccessfulLoginsWithProvider int64   `json:"successfulLoginsWithProvider"`
}

// BlockedDay counts blocked events of one day.
type BlockedDay struct {
	Date         v1.Date `json:"date"`
	BlockedUsers int64   `json:"blockedUsers"`
}

// DailyCount is a per-day event count.
type DailyCount struct {
	Date   v1.Date `json:"date"`
	Amount int64   `json:"amount"`
}

// ActivityDay is one bucket of a user's social activity, labeled with its weekday.
type ActivityDay struct {
	Date   v1.Date `json:"date"`
	Day    string  `json:"day"`
	Amount int64   `json:"amount"`
}

// TwitOverview is the all-user twit summary.
type TwitOverview struct {
	Total int64        `json:"total"`
	Twits []DailyCount `json:"twits"`
}

// CountryCount is the number of location events resolved to one country.
type CountryCount struct {
	Country string `json:"country"`
	Amount  int64  `json:"amount"`
}

// DailyFollow is the sum of follow amounts of one day.
type DailyFollow struct {
	Date   v1.Date `json:"date"`
	Amount float64 `json:"amount"`
}

// FollowOverview pairs the all-time follow balance with the windowed per-day follows.
type FollowOverview struct {
	Total   float64       `json:"total"`
	Follows []DailyFollow `json:"follows"`
}

// HashtagCount is the number of uses of one hashtag, optionally on one day.
type HashtagCount struct {
	Date    v1.Date
	Hashtag string
	Count   int64
}

// HashtagDay reports the top hashtags of one day, zero-filled.
type HashtagDay struct {
	Date     v1.Date          `json:"date"`
	Hashtags map[string]int64 `json:"hashtags"`
}
