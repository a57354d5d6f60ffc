package chart

import "fmt"

type NotFoundError struct {
	Kind string
	ID   EntityID
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %d", e.Kind, e.ID)
}

// InvariantError reports an edit that would leave the chart in an invalid state.
// The world is unchanged when it is returned.
type InvariantError struct {
	Reason string
}

func (e InvariantError) Error() string {
	return "invariant violation: " + e.Reason
}

func lineNotFound(id EntityID) error  { return NotFoundError{Kind: "line", ID: id} }
func noteNotFound(id EntityID) error  { return NotFoundError{Kind: "note", ID: id} }
func eventNotFound(id EntityID) error { return NotFoundError{Kind: "event", ID: id} }
