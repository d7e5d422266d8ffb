package assignment

import (
	"encoding/json"
	"time"
)

// Evaluation is recorded by Finish. All fields are set together.
type Evaluation struct {
	EvaluatedAt time.Time `yaml:"evaluated_at"`
	Rating      float64   `yaml:"rating"`
	Description string    `yaml:"description,omitempty"`
}

type Assignment struct {
	ID          string      `yaml:"id"`
	InspectorID string      `yaml:"inspector_id"`
	TaskID      string      `yaml:"task_id"`
	ScheduledAt time.Time   `yaml:"scheduled_at"`
	Status      Status      `yaml:"status"`
	Evaluation  *Evaluation `yaml:"evaluation,omitempty"`
	CreatedAt   time.Time   `yaml:"created_at"`
	UpdatedAt   time.Time   `yaml:"updated_at"`
}

// Complete records the evaluation and moves the assignment to completed in one step.
func (a *Assignment) Complete(ev Evaluation, at time.Time) {
	ev.EvaluatedAt = ev.EvaluatedAt.UTC()
	a.Evaluation = &ev
	a.Status = StatusCompleted
	a.UpdatedAt = at
}

// Patch holds the fields a partial update may overwrite. Nil fields are left untouched.
type Patch struct {
	ScheduledAt *time.Time `json:"scheduled_datetime,omitempty"`
	Status      *Status    `json:"status,omitempty"`
}

func (p Patch) Apply(a *Assignment) {
	if p.ScheduledAt != nil {
		a.ScheduledAt = p.ScheduledAt.UTC()
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
}

type assignmentJSON struct {
	ID                string     `json:"id"`
	InspectorID       string     `json:"inspector_id"`
	TaskID            string     `json:"task_id"`
	ScheduledDatetime time.Time  `json:"scheduled_datetime"`
	Status            Status     `json:"status"`
	EvaluatedAt       *time.Time `json:"evaluation_datetime"`
	Rating            *float64   `json:"rating"`
	RatingDescription *string    `json:"rating_description"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (a Assignment) MarshalJSON() ([]byte, error) {
	out := assignmentJSON{
		ID:                a.ID,
		InspectorID:       a.InspectorID,
		TaskID:            a.TaskID,
		ScheduledDatetime: a.ScheduledAt,
		Status:            a.Status,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
	if ev := a.Evaluation; ev != nil {
		out.EvaluatedAt = &ev.EvaluatedAt
		out.Rating = &ev.Rating
		out.RatingDescription = &ev.Description
	}
	return json.Marshal(out)
}

func (a *Assignment) UnmarshalJSON(data []byte) error {
	var in assignmentJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*a = Assignment{
		ID:          in.ID,
		InspectorID: in.InspectorID,
		TaskID:      in.TaskID,
		ScheduledAt: in.ScheduledDatetime,
		Status:      in.Status,
		CreatedAt:   in.CreatedAt,
		UpdatedAt:   in.UpdatedAt,
	}
	if in.EvaluatedAt != nil {
		ev := &Evaluation{EvaluatedAt: *in.EvaluatedAt}
		if in.Rating != nil {
			ev.Rating = *in.Rating
		}
		if in.RatingDescription != nil {
			ev.Description = *in.RatingDescription
		}
		a.Evaluation = ev
	}
	return nil
}
