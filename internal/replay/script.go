package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/SAP-F-2025/attempt-engine/internal/models"
)

// Op identifies one kind of recorded candidate action.
type Op string

const (
	OpVisit      Op = "visit"
	OpAnswer     Op = "answer"
	OpClear      Op = "clear"
	OpToggleMark Op = "toggle_mark"
	OpAccrueTime Op = "accrue_time"
)

// Action is a single step of a recorded session.
type Action struct {
	Op         Op     `json:"op" validate:"required,oneof=visit answer clear toggle_mark accrue_time"`
	QuestionID string `json:"question_id" validate:"required"`

	// Answer carries the payload for answer actions and is ignored otherwise.
	Answer *models.AnswerPayload `json:"answer,omitempty"`

	// Seconds accrues active time for answer and accrue_time actions.
	Seconds float64 `json:"seconds,omitempty" validate:"gte=0"`
}

// Script is a recorded candidate session, replayable against the question set
// it was captured on.
type Script struct {
	CandidateID string   `json:"candidate_id,omitempty"`
	Actions     []Action `json:"actions" validate:"required,min=1,dive"`
}

// LoadQuestionSet reads a question-set document from disk.
func LoadQuestionSet(path string) (*models.QuestionSetDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question set: %w", err)
	}

	var doc models.QuestionSetDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse question set: %w", err)
	}
	return &doc, nil
}

// LoadScript reads a replay script from disk.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	var script Script
	if err := json.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	return &script, nil
}

// LoadSubmission reads a previously saved submission from disk.
func LoadSubmission(path string) (*models.Submission, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read submission: %w", err)
	}

	var sub models.Submission
	if err := json.Unmarshal(data, &sub); err != nil {
		return nil, fmt.Errorf("failed to parse submission: %w", err)
	}
	return &sub, nil
}

// SaveSubmission writes a submission as indented JSON in the format
// LoadSubmission reads back.
func SaveSubmission(path string, sub *models.Submission) error {
	data, err := json.MarshalIndent(sub, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode submission: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write submission: %w", err)
	}
	return nil
}
