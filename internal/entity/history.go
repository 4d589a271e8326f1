package entity

import "strings"

// Step is one authority-confirmed move.
type Step struct {
	Player Side  `json:"player"`
	Action Coord `json:"action"`
}

// StepHistory is an append-only log of completed turns.
type StepHistory struct {
	steps []Step
}

func NewStepHistory(steps ...Step) StepHistory {
	return StepHistory{steps: append([]Step(nil), steps...)}
}

func (that *StepHistory) Append(step Step) {
	that.steps = append(that.steps, step)
}

func (that StepHistory) Len() int {
	return len(that.steps)
}

func (that StepHistory) All() []Step {
	return append([]Step(nil), that.steps...)
}

// Notation renders the log as "+c4-c3...", black moves prefixed with '+' and white with '-'.
func (that StepHistory) Notation() string {
	var sb strings.Builder
	for _, step := range that.steps {
		sb.WriteString(step.Player.Sign())
		sb.WriteString(step.Action.String())
	}
	return sb.String()
}
