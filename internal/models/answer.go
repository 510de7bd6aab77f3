package models

import "fmt"

// AnswerValue is a candidate's answer to a question. Implementations are
// SingleChoice, MultiChoice and Numeric; scoring dispatches on Kind. A nil
// AnswerValue means the question was left unattempted.
type AnswerValue interface {
	Kind() AnswerKind
	isAnswerValue()
}

// SingleChoice is the selected option index of a single-choice question.
type SingleChoice int

func (SingleChoice) Kind() AnswerKind { return AnswerSingleChoice }
func (SingleChoice) isAnswerValue()   {}

// MultiChoice is the set of selected option indices of a multi-choice
// question. Order and duplicates are irrelevant for correctness.
type MultiChoice []int

func (MultiChoice) Kind() AnswerKind { return AnswerMultiChoice }
func (MultiChoice) isAnswerValue()   {}

// Numeric is the value entered for a numeric question.
type Numeric float64

func (Numeric) Kind() AnswerKind { return AnswerNumeric }
func (Numeric) isAnswerValue()   {}

// AnswerPayload is the wire form of AnswerValue, used in submissions, replay
// scripts and event payloads.
type AnswerPayload struct {
	Kind    AnswerKind `json:"kind" validate:"required,oneof=single_choice multi_choice numeric"`
	Choice  *int       `json:"choice,omitempty"`
	Choices []int      `json:"choices,omitempty"`
	Value   *float64   `json:"value,omitempty"`
}

// ToValue converts the payload into the in-memory union.
func (p *AnswerPayload) ToValue() (AnswerValue, error) {
	if p == nil {
		return nil, nil
	}
	switch p.Kind {
	case AnswerSingleChoice:
		if p.Choice == nil {
			return nil, fmt.Errorf("answer payload: kind %s requires choice", p.Kind)
		}
		return SingleChoice(*p.Choice), nil
	case AnswerMultiChoice:
		if len(p.Choices) == 0 {
			return nil, fmt.Errorf("answer payload: kind %s requires choices", p.Kind)
		}
		choices := make([]int, len(p.Choices))
		copy(choices, p.Choices)
		return MultiChoice(choices), nil
	case AnswerNumeric:
		if p.Value == nil {
			return nil, fmt.Errorf("answer payload: kind %s requires value", p.Kind)
		}
		return Numeric(*p.Value), nil
	default:
		return nil, fmt.Errorf("answer payload: unknown kind %q", p.Kind)
	}
}

// PayloadFromValue converts an AnswerValue into its wire form. A nil value
// yields a nil payload (unattempted).
func PayloadFromValue(v AnswerValue) *AnswerPayload {
	switch a := v.(type) {
	case SingleChoice:
		choice := int(a)
		return &AnswerPayload{Kind: AnswerSingleChoice, Choice: &choice}
	case MultiChoice:
		choices := make([]int, len(a))
		copy(choices, a)
		return &AnswerPayload{Kind: AnswerMultiChoice, Choices: choices}
	case Numeric:
		value := float64(a)
		return &AnswerPayload{Kind: AnswerNumeric, Value: &value}
	default:
		return nil
	}
}
