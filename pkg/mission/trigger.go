package mission

// Trigger is one procedure-bound rule within a mission: an ordered
// position plus the events that fire it, the conditions that must hold,
// and the actions it performs.
type Trigger struct {
	Name       string
	Repeat     int
	Procedure  float64
	Step       float64
	Order      int
	Events     []Statement
	Conditions []Statement
	Actions    []Statement
}

// AllStatements returns every statement in a trigger, in
// events-then-conditions-then-actions order, for callers that don't care
// which list a statement came from (e.g. item-source extraction).
func (t Trigger) AllStatements() []Statement {
	out := make([]Statement, 0, len(t.Events)+len(t.Conditions)+len(t.Actions))
	out = append(out, t.Events...)
	out = append(out, t.Conditions...)
	out = append(out, t.Actions...)
	return out
}
