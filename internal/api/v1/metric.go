package v1

import (
	"fmt"
	"strings"
	"time"
)

// MetricType discriminates the shape of a metric payload.
type MetricType string

const (
	TypeRegister             MetricType = "register"
	TypeRegisterWithProvider MetricType = "register_with_provider"
	TypeLogin                MetricType = "login"
	TypeLoginWithProvider    MetricType = "login_with_provider"
	TypeBlocked              MetricType = "blocked"
	TypeTwit                 MetricType = "twit"
	TypeLike                 MetricType = "like"
	TypeRetwit               MetricType = "retwit"
	TypeComment              MetricType = "comment"
	TypeLocation             MetricType = "location"
	TypeFollow               MetricType = "follow"
	TypeHashtag              MetricType = "hashtag"
)

// MetricTypes is the closed enumeration accepted by both the write and read paths.
var MetricTypes = []MetricType{
	TypeRegister,
	TypeRegisterWithProvider,
	TypeLogin,
	TypeLoginWithProvider,
	TypeBlocked,
	TypeTwit,
	TypeLike,
	TypeRetwit,
	TypeComment,
	TypeLocation,
	TypeFollow,
	TypeHashtag,
}

// ParseMetricType reports whether s names a known metric type.
func ParseMetricType(s string) (MetricType, bool) {
	for _, t := range MetricTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// IsSocialAction reports whether t is one of the per-user social actions
// (twit, like, retwit, comment). Their payload is always empty and their
// read queries are scoped to a username.
func (t MetricType) IsSocialAction() bool {
	switch t {
	case TypeTwit, TypeLike, TypeRetwit, TypeComment:
		return true
	}
	return false
}

// CreateMetricRequest is the body of POST /metrics.
//
// Fields are decoded loosely so that the validator, not the JSON decoder,
// decides which error a malformed request gets.
type CreateMetricRequest struct {
	CreatedAt interface{} `json:"createdAt"`
	Type      interface{} `json:"type"`
	Username  interface{} `json:"username"`
	Metrics   interface{} `json:"metrics"`
}

// Metric is a validated metric event.
//
// CreatedAtRaw is the caller's original timestamp string; it is echoed back
// verbatim while CreatedAt is the parsed instant written to the store.
type Metric struct {
	ID           int64                  `json:"id"`
	CreatedAt    time.Time              `json:"-"`
	CreatedAtRaw string                 `json:"createdAt"`
	Type         MetricType             `json:"type"`
	Username     string                 `json:"username"`
	Metrics      map[string]interface{} `json:"metrics"`
}

// createdAtLayouts are tried in order when parsing createdAt.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp parses a caller-supplied timestamp (RFC 3339 or a bare date).
// Timestamps without an offset are taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("timestamp is empty")
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// Date is a calendar day bucket, serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// NewDate truncates t to its UTC calendar day.
func NewDate(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// WeekdayName returns the English weekday name of the bucket.
func (d Date) WeekdayName() string {
	return d.Weekday().String()
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	d.Time = t
	return nil
}
