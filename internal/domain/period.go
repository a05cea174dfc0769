package domain

// Period is the width of an aggregate time bucket.
type Period string

const (
	PeriodHour Period = "hour"
	PeriodDay  Period = "day"
)

// Periods lists the aggregate granularities in update order: hourly buckets
// are written before daily ones so the daily TVL update can read the fresher
// hourly figure.
var Periods = []Period{PeriodHour, PeriodDay}

const (
	hourSeconds = 3600
	daySeconds  = 86400
)

// BucketStart returns the UTC start timestamp of the bucket containing ts.
func (p Period) BucketStart(ts int64) int64 {
	if p == PeriodHour {
		return (ts / hourSeconds) * hourSeconds
	}
	return (ts / daySeconds) * daySeconds
}
