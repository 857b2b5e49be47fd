package filtering

import (
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/bubbletea-slz/teahouse/internal/entity"
)

// DateBucket names a relative time window used for filtering.
type DateBucket string

const (
	BucketAll       DateBucket = "all"
	BucketToday     DateBucket = "today"
	BucketYesterday DateBucket = "yesterday"
	BucketWeek      DateBucket = "week"
)

// Filter restricts the order listing. Zero values mean "no restriction";
// the sentinel "all" behaves the same as an empty field. Conditions
// compose with AND.
type Filter struct {
	Client     string
	Status     entity.Status
	DateBucket DateBucket
}

// Apply runs the filter pipeline over a snapshot of orders and returns a
// new slice sorted by creation time, most recent first. Ties keep the
// original insertion order. The input slice is never mutated.
func Apply(orders []entity.Order, f Filter, now time.Time) []entity.Order {
	result := slices.Clone(orders)

	if term := strings.ToLower(strings.TrimSpace(f.Client)); term != "" {
		result = lo.Filter(result, func(o entity.Order, _ int) bool {
			return strings.Contains(strings.ToLower(o.Client), term) ||
				strings.Contains(strings.ToLower(o.PurchaseCode), term)
		})
	}

	if f.Status != "" && f.Status != "all" {
		result = lo.Filter(result, func(o entity.Order, _ int) bool {
			return o.Status == f.Status
		})
	}

	if f.DateBucket != "" && f.DateBucket != BucketAll {
		result = lo.Filter(result, func(o entity.Order, _ int) bool {
			return inBucket(o.CreatedAt, f.DateBucket, now)
		})
	}

	slices.SortStableFunc(result, func(a, b entity.Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return result
}

func inBucket(createdAt time.Time, bucket DateBucket, now time.Time) bool {
	switch bucket {
	case BucketToday:
		return sameDay(createdAt, now)
	case BucketYesterday:
		return sameDay(createdAt, now.AddDate(0, 0, -1))
	case BucketWeek:
		// Rolling 7-day window, not calendar aligned.
		return !createdAt.Before(now.AddDate(0, 0, -7))
	default:
		return true
	}
}

// sameDay reports calendar-day equality in the local timezone.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}
