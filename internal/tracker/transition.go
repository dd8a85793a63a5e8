package tracker

import (
	"fmt"

	"github.com/abhisek/utntracker/internal/status"
)

// Trigger names what caused a status transition.
type Trigger string

const (
	TriggerStart          Trigger = "start"
	TriggerGrades         Trigger = "grades"
	TriggerOverride       Trigger = "override"
	TriggerClearOverride  Trigger = "clear-override"
	TriggerWithdraw       Trigger = "withdraw"
	TriggerRecursar       Trigger = "recursar"
	TriggerElectiveAdd    Trigger = "elective-add"
	TriggerElectiveRemove Trigger = "elective-remove"
)

// Transition records a change of a subject's effective status for display
// and event logging. An empty From means the subject was not started; an
// empty To means its record was removed.
type Transition struct {
	Code    string
	Name    string
	From    status.Tag
	To      status.Tag
	Trigger Trigger
}

// Changed reports whether the effective status moved.
func (t Transition) Changed() bool {
	return t.From != t.To
}

func (t Transition) String() string {
	return fmt.Sprintf("%s: %s → %s", t.Code, t.From.Label(), t.To.Label())
}

// Result is what every tracker mutation reports back.
type Result struct {
	Transition Transition
	// Unlocked lists subjects available after the change but not before.
	Unlocked []string
	// Warning is set when the mutation went through with a caveat.
	Warning string
}
