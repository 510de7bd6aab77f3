package attempt

import "github.com/SAP-F-2025/attempt-engine/internal/models"

// Classify maps a tracker to exactly one display state. First match wins;
// the order resolves the overlap between answered and marked.
func Classify(t models.QuestionTracker) models.QuestionState {
	switch {
	case t.UserAnswer != nil && t.IsMarked:
		return models.StateAnsweredAndMarked
	case t.IsMarked:
		return models.StateMarkedForReview
	case t.UserAnswer != nil:
		return models.StateAnswered
	case t.IsVisited:
		return models.StateNotAnswered
	default:
		return models.StateNotVisited
	}
}

// CountStates tallies every tracker into the five buckets. The buckets are
// disjoint, so the counts always sum to len(trackers).
func CountStates(trackers []models.QuestionTracker) models.StateCounts {
	counts := make(models.StateCounts, 5)
	for _, state := range models.AllQuestionStates() {
		counts[state] = 0
	}
	for _, t := range trackers {
		counts[Classify(t)]++
	}
	return counts
}

// PartitionStates splits question ids into the five buckets, keeping test
// question order within each bucket.
func PartitionStates(order []models.QuestionID, trackers map[models.QuestionID]*models.QuestionTracker) models.StatePartition {
	partition := make(models.StatePartition, 5)
	for _, state := range models.AllQuestionStates() {
		partition[state] = []models.QuestionID{}
	}
	for _, id := range order {
		t := trackers[id]
		if t == nil {
			continue
		}
		state := Classify(*t)
		partition[state] = append(partition[state], id)
	}
	return partition
}
