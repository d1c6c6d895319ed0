// Package events defines the typed change notifications produced by the
// layer store and the bus that fans them out to renderer and UI
// subscribers.
package events

import (
	"github.com/RustWorks/rgis-map/pkg/geodata"
)

// Event is one change notification. Subscribers switch on the concrete
// type.
type Event interface {
	event()
}

// LayerCreated reports a layer appended to the top of the stack.
type LayerCreated struct {
	ID geodata.LayerID
}

// LayerDeleted reports a layer removed from the stack.
type LayerDeleted struct {
	ID geodata.LayerID
}

// LayerBecameVisible reports a layer whose visibility flipped on.
type LayerBecameVisible struct {
	ID geodata.LayerID
}

// LayerBecameHidden reports a layer whose visibility flipped off.
type LayerBecameHidden struct {
	ID geodata.LayerID
}

// LayerColorUpdated reports a layer whose color changed.
type LayerColorUpdated struct {
	ID geodata.LayerID
}

// LayerZIndexUpdated reports a layer whose stacking position changed.
// Swaps emit one of these for each affected layer.
type LayerZIndexUpdated struct {
	ID geodata.LayerID
}

// SelectionChanged reports the new selection. Selected is false when the
// selection was cleared, in which case ID is the zero LayerID.
type SelectionChanged struct {
	ID       geodata.LayerID
	Selected bool
}

func (LayerCreated) event()       {}
func (LayerDeleted) event()       {}
func (LayerBecameVisible) event() {}
func (LayerBecameHidden) event()  {}
func (LayerColorUpdated) event()  {}
func (LayerZIndexUpdated) event() {}
func (SelectionChanged) event()   {}
