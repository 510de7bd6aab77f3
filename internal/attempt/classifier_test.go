package attempt

import (
	"testing"

	"github.com/SAP-F-2025/attempt-engine/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		tracker models.QuestionTracker
		want    models.QuestionState
	}{
		{
			name:    "untouched question",
			tracker: models.QuestionTracker{QuestionID: "q1"},
			want:    models.StateNotVisited,
		},
		{
			name:    "visited without answer",
			tracker: models.QuestionTracker{QuestionID: "q1", IsVisited: true},
			want:    models.StateNotAnswered,
		},
		{
			name: "answered only",
			tracker: models.QuestionTracker{
				QuestionID: "q1",
				IsVisited:  true,
				UserAnswer: models.SingleChoice(2),
			},
			want: models.StateAnswered,
		},
		{
			name: "marked without answer",
			tracker: models.QuestionTracker{
				QuestionID: "q1",
				IsVisited:  true,
				IsMarked:   true,
			},
			want: models.StateMarkedForReview,
		},
		{
			name: "answered and marked",
			tracker: models.QuestionTracker{
				QuestionID: "q1",
				IsVisited:  true,
				IsMarked:   true,
				UserAnswer: models.MultiChoice{0, 2},
			},
			want: models.StateAnsweredAndMarked,
		},
		{
			name: "answer wins over visit",
			tracker: models.QuestionTracker{
				QuestionID: "q1",
				IsVisited:  true,
				UserAnswer: models.Numeric(9.8),
			},
			want: models.StateAnswered,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.tracker); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCountStates_PartitionCompleteness(t *testing.T) {
	// Sweep every combination of the three tracker flags. The five buckets
	// must stay disjoint and sum to the tracker count.
	var trackers []models.QuestionTracker
	for _, visited := range []bool{false, true} {
		for _, marked := range []bool{false, true} {
			for _, answered := range []bool{false, true} {
				tr := models.QuestionTracker{QuestionID: "q", IsVisited: visited, IsMarked: marked}
				if answered {
					tr.UserAnswer = models.SingleChoice(1)
				}
				trackers = append(trackers, tr)
			}
		}
	}

	counts := CountStates(trackers)
	if got, want := counts.Total(), len(trackers); got != want {
		t.Fatalf("bucket counts sum to %d, want %d", got, want)
	}
	for _, state := range models.AllQuestionStates() {
		if _, ok := counts[state]; !ok {
			t.Errorf("state %s missing from counts", state)
		}
	}
}

func TestPartitionStates_KeepsQuestionOrder(t *testing.T) {
	order := []models.QuestionID{"q1", "q2", "q3", "q4"}
	trackers := map[models.QuestionID]*models.QuestionTracker{
		"q1": {QuestionID: "q1", IsVisited: true, UserAnswer: models.SingleChoice(0)},
		"q2": {QuestionID: "q2"},
		"q3": {QuestionID: "q3", IsVisited: true, UserAnswer: models.SingleChoice(1)},
		"q4": {QuestionID: "q4"},
	}

	partition := PartitionStates(order, trackers)

	answered := partition[models.StateAnswered]
	if len(answered) != 2 || answered[0] != "q1" || answered[1] != "q3" {
		t.Errorf("answered bucket = %v, want [q1 q3]", answered)
	}
	notVisited := partition[models.StateNotVisited]
	if len(notVisited) != 2 || notVisited[0] != "q2" || notVisited[1] != "q4" {
		t.Errorf("not_visited bucket = %v, want [q2 q4]", notVisited)
	}
	if got := partition.Counts().Total(); got != len(order) {
		t.Errorf("partition total = %d, want %d", got, len(order))
	}
}
