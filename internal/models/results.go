package models

import "time"

// UnknownSubject groups questions that carry no subject tag.
const UnknownSubject = "unknown"

type ScoreResult struct {
	Score              float64 `json:"score"`
	Percentage         float64 `json:"percentage"`
	TotalPossibleMarks float64 `json:"total_possible_marks"`
	CorrectCount       int     `json:"correct_count"`
	IncorrectCount     int     `json:"incorrect_count"`
	UnattemptedCount   int     `json:"unattempted_count"`
}

// TimeDistribution buckets attempted questions by time spent. Unattempted
// questions are excluded entirely. 120s falls in the third bucket; the
// fourth is strictly greater.
type TimeDistribution struct {
	Under30s   int `json:"under_30s"`
	Sec30To60  int `json:"sec_30_to_60"`
	Sec60To120 int `json:"sec_60_to_120"`
	Over120s   int `json:"over_120s"`
}

func (d TimeDistribution) Total() int {
	return d.Under30s + d.Sec30To60 + d.Sec60To120 + d.Over120s
}

// GroupStats is the per-subject / per-difficulty rollup.
type GroupStats struct {
	Total     int           `json:"total"`
	Attempted int           `json:"attempted"`
	Correct   int           `json:"correct"`
	TimeSpent time.Duration `json:"time_spent"`
}

type AnalysisReport struct {
	TimeDistribution TimeDistribution               `json:"time_distribution"`
	SubjectWise      map[string]GroupStats          `json:"subject_wise"`
	DifficultyWise   map[DifficultyLevel]GroupStats `json:"difficulty_wise"`
	QuestionStates   StatePartition                 `json:"question_states"`
}
