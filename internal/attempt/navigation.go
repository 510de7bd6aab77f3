package attempt

import (
	"time"

	"github.com/SAP-F-2025/attempt-engine/internal/models"
)

// navigationLog is the append-only action record of one attempt. Events are
// totally ordered by sequence number; entries are never rewritten or
// compacted. The per-question delta reconstructs time spent independently of
// the tracker's own accrual and feeds post-hoc analytics.
type navigationLog struct {
	events   []models.NavigationEvent
	lastSeen map[models.QuestionID]time.Time
	seq      int
}

func newNavigationLog() *navigationLog {
	return &navigationLog{
		lastSeen: make(map[models.QuestionID]time.Time),
	}
}

func (l *navigationLog) append(now time.Time, id models.QuestionID, action models.NavigationAction) {
	var sinceLast time.Duration
	if prev, ok := l.lastSeen[id]; ok {
		if d := now.Sub(prev); d > 0 {
			sinceLast = d
		}
	}
	l.seq++
	l.events = append(l.events, models.NavigationEvent{
		Seq:           l.seq,
		Timestamp:     now,
		QuestionID:    id,
		Action:        action,
		TimeSinceLast: sinceLast,
	})
	l.lastSeen[id] = now
}

// snapshot returns a copy; the log itself stays append-only and private.
func (l *navigationLog) snapshot() []models.NavigationEvent {
	events := make([]models.NavigationEvent, len(l.events))
	copy(events, l.events)
	return events
}
