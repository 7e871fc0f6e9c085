// Package discipline contains the domain model of a course offering and its
// weekly schedule. No external dependencies live here.
package discipline

import (
	"fmt"
	"strings"
	"time"

	"github.com/campus-hub/course-registry/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// TimeRange is one weekly slot of a discipline. Hours are minutes since midnight.
type TimeRange struct {
	StartHourInMinutes int `json:"startHourInMinutes" bson:"startHourInMinutes"`
	EndHourInMinutes   int `json:"endHourInMinutes" bson:"endHourInMinutes"`
	Day                int `json:"day" bson:"day"`
}

// IsValid reports whether the range starts strictly before it ends.
func (t TimeRange) IsValid() bool {
	return t.StartHourInMinutes < t.EndHourInMinutes
}

// String renders the slot as "day 2 01:40-03:20".
func (t TimeRange) String() string {
	return fmt.Sprintf("day %d %s-%s", t.Day, clock(t.StartHourInMinutes), clock(t.EndHourInMinutes))
}

func clock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Schedule is the caller-ordered list of weekly slots.
type Schedule []TimeRange

// Validate checks every entry on its own. Entries are not compared with each
// other, so overlapping slots are accepted.
func (s Schedule) Validate() error {
	for i, tr := range s {
		if !tr.IsValid() {
			return shared.NewDomainError("discipline", "Validate", shared.KindInvalidInput,
				fmt.Sprintf("Invalid time range at schedule[%d] (%s): startHourInMinutes must be lower than endHourInMinutes", i, tr))
		}
	}
	return nil
}

// Clone returns an independent copy of the schedule.
func (s Schedule) Clone() Schedule {
	if s == nil {
		return Schedule{}
	}
	out := make(Schedule, len(s))
	copy(out, s)
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: DISCIPLINE
// ══════════════════════════════════════════════════════════════════════════════

// Discipline is a course offering with a weekly schedule.
type Discipline struct {
	ID         string    `json:"_id"`
	Name       string    `json:"name"`
	Professor  string    `json:"professor"`
	Difficulty int       `json:"difficulty"`
	Schedule   Schedule  `json:"schedule"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Validate checks the invariants every stored discipline must hold.
func (d *Discipline) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(d.Professor) == "" {
		return ErrEmptyProfessor
	}
	return d.Schedule.Validate()
}

// Clone returns a deep copy.
func (d *Discipline) Clone() *Discipline {
	c := *d
	c.Schedule = d.Schedule.Clone()
	return &c
}

// CreateInput carries the fields of a new discipline.
type CreateInput struct {
	Name       string   `json:"name"`
	Professor  string   `json:"professor"`
	Difficulty int      `json:"difficulty"`
	Schedule   Schedule `json:"schedule"`
}

// New builds an unsaved discipline from input. The id is left for the
// repository to assign.
func New(in CreateInput, now time.Time) (*Discipline, error) {
	d := &Discipline{
		Name:       in.Name,
		Professor:  in.Professor,
		Difficulty: in.Difficulty,
		Schedule:   in.Schedule.Clone(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// UpdateInput is a partial replacement. Nil fields keep their stored value;
// a non-nil Schedule replaces the whole schedule.
type UpdateInput struct {
	Name       *string   `json:"name"`
	Professor  *string   `json:"professor"`
	Difficulty *int      `json:"difficulty"`
	Schedule   *Schedule `json:"schedule"`
}

// Merge applies the patch over a copy of d and validates the result.
// d itself is never modified.
func (d *Discipline) Merge(in UpdateInput, now time.Time) (*Discipline, error) {
	merged := d.Clone()
	if in.Name != nil {
		merged.Name = *in.Name
	}
	if in.Professor != nil {
		merged.Professor = *in.Professor
	}
	if in.Difficulty != nil {
		merged.Difficulty = *in.Difficulty
	}
	if in.Schedule != nil {
		merged.Schedule = in.Schedule.Clone()
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	merged.UpdatedAt = now
	return merged, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	ErrNotFound       = shared.NewDomainError("discipline", "Find", shared.KindNotFound, "Discipline not found")
	ErrEmptyName      = shared.NewDomainError("discipline", "Validate", shared.KindInvalidInput, "Discipline name is required")
	ErrEmptyProfessor = shared.NewDomainError("discipline", "Validate", shared.KindInvalidInput, "Discipline professor is required")
)
