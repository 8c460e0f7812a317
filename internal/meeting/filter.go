// Package meeting filters, ranks and annotates meetings after they have
// been parsed and expanded from raw calendar records.
package meeting

import (
	"sort"
	"time"

	"github.com/evbridge/meetingd/internal/domain"
)

// ShouldInclude reports whether a meeting belongs in an upcoming-meetings
// query. A meeting qualifies when it is still ahead of now, or when it is
// in progress and started inside the query window. Meetings with a
// non-positive duration are always excluded.
func ShouldInclude(start, end, now, queryStart time.Time) bool {
	isFuture := start.After(now)
	isInProgress := !start.After(now) && start.After(queryStart) && end.After(now)
	return (isFuture || isInProgress) && start.Before(end)
}

// SortAndLimit orders meetings by start time, earliest first, and keeps at
// most limit entries. Ties sort by UID so repeated queries stay stable. A
// limit below one is treated as one.
func SortAndLimit(meetings []domain.Meeting, limit int) []domain.Meeting {
	sort.SliceStable(meetings, func(i, j int) bool {
		if meetings[i].Start.Equal(meetings[j].Start) {
			return meetings[i].UID < meetings[j].UID
		}
		return meetings[i].Start.Before(meetings[j].Start)
	})
	if limit < 1 {
		limit = 1
	}
	if len(meetings) > limit {
		meetings = meetings[:limit]
	}
	return meetings
}

// Dedup removes meetings whose UID was already seen, keeping the first
// occurrence. Order is preserved.
func Dedup(meetings []domain.Meeting) []domain.Meeting {
	seen := make(map[string]struct{}, len(meetings))
	out := meetings[:0]
	for _, m := range meetings {
		if _, dup := seen[m.UID]; dup {
			continue
		}
		seen[m.UID] = struct{}{}
		out = append(out, m)
	}
	return out
}
