// Package layers owns the ordered collection of geometric layers: IDs,
// z-order, aggregate bounds, visibility, color, selection and spatial
// hit-testing.
package layers

import (
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/paulmach/orb"

	"github.com/RustWorks/rgis-map/internal/events"
	"github.com/RustWorks/rgis-map/pkg/geodata"
)

// Direction says which way a layer moves through the stack.
type Direction int

const (
	// Up moves a layer one step toward the top of the stack.
	Up Direction = iota
	// Down moves a layer one step toward the bottom.
	Down
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	}
	return "unknown"
}

// Store is the authoritative layer collection. Index 0 of the sequence is
// the bottom of the visual stack; the sequence order is the sole authority
// for z-order. All writes happen on the consumer goroutine under the write
// lock; readers (renderer, UI, hit-testing) take the read lock and see a
// consistent snapshot.
type Store struct {
	logger   hclog.Logger
	notifier *events.Bus

	mu         sync.RWMutex
	data       []*geodata.Layer
	selected   geodata.LayerID
	bounds     orb.Bound
	hasBounds  bool
	colorIndex int
}

func NewStore(logger hclog.Logger, notifier *events.Bus) *Store {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if notifier == nil {
		notifier = events.NewBus(logger)
	}

	return &Store{
		logger:   logger.Named("layers"),
		notifier: notifier,
	}
}

// Add takes ownership of a candidate: it assigns a fresh ID and the next
// palette color, marks the layer visible, appends it to the top of the
// stack and grows the aggregate bounds. It emits a LayerCreated event and
// returns the new ID.
func (s *Store) Add(c geodata.Candidate) geodata.LayerID {
	layer := &geodata.Layer{
		ID:          geodata.NewLayerID(),
		Name:        c.Name,
		Metadata:    c.Metadata,
		SourceCRS:   c.SourceCRS,
		Unprojected: c.Unprojected,
		Projected:   c.Projected,
		Visible:     true,
	}

	s.mu.Lock()
	layer.Color = geodata.Palette[s.colorIndex%len(geodata.Palette)]
	s.colorIndex++
	s.data = append(s.data, layer)
	if s.hasBounds {
		s.bounds = s.bounds.Union(c.Projected.Bound)
	} else {
		s.bounds = c.Projected.Bound
		s.hasBounds = true
	}
	s.mu.Unlock()

	s.logger.Info("layer added", "layer", layer.ID, "name", layer.Name)
	s.notifier.Publish(events.LayerCreated{ID: layer.ID})

	return layer.ID
}

// Remove deletes the layer with the given ID. An unknown ID is a logged
// no-op. Removing the selected layer clears the selection. The aggregate
// bounds are not recomputed; they are a monotonic high-water mark.
func (s *Store) Remove(id geodata.LayerID) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		s.logger.Warn("remove: no layer with id", "layer", id)
		return
	}
	s.data = append(s.data[:idx], s.data[idx+1:]...)
	cleared := false
	if s.selected == id {
		s.selected = geodata.NilLayerID
		cleared = true
	}
	s.mu.Unlock()

	s.notifier.Publish(events.LayerDeleted{ID: id})
	if cleared {
		s.notifier.Publish(events.SelectionChanged{})
	}
}

// Get returns a copy of the layer with the given ID.
func (s *Store) Get(id geodata.LayerID) (geodata.Layer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return geodata.Layer{}, false
	}

	return *s.data[idx], true
}

// GetWithZIndex returns a copy of the layer plus its current position in
// the stack, 0 being the bottom.
func (s *Store) GetWithZIndex(id geodata.LayerID) (geodata.Layer, int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return geodata.Layer{}, 0, false
	}

	return *s.data[idx], idx, true
}

// Move swaps the layer with its neighbor one step in the given direction.
// Moving the topmost layer up or the bottommost layer down is a logged
// no-op; no event is emitted. On a swap, a LayerZIndexUpdated event is
// emitted for both affected layers.
func (s *Store) Move(id geodata.LayerID, dir Direction) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		s.logger.Warn("move: no layer with id", "layer", id)
		return
	}

	var neighbor int
	switch dir {
	case Up:
		if idx == len(s.data)-1 {
			s.mu.Unlock()
			s.logger.Debug("move: layer already at top", "layer", id)
			return
		}
		neighbor = idx + 1
	case Down:
		if idx == 0 {
			s.mu.Unlock()
			s.logger.Debug("move: layer already at bottom", "layer", id)
			return
		}
		neighbor = idx - 1
	default:
		s.mu.Unlock()
		s.logger.Warn("move: unknown direction", "direction", dir)
		return
	}

	other := s.data[neighbor].ID
	s.data[idx], s.data[neighbor] = s.data[neighbor], s.data[idx]
	s.mu.Unlock()

	s.notifier.Publish(events.LayerZIndexUpdated{ID: id})
	s.notifier.Publish(events.LayerZIndexUpdated{ID: other})
}

// SetVisibility sets the layer's visibility flag. Setting the current
// value is a no-op without an event; otherwise a LayerBecameVisible or
// LayerBecameHidden event is emitted, matching the direction of change.
func (s *Store) SetVisibility(id geodata.LayerID, visible bool) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		s.logger.Warn("set visibility: no layer with id", "layer", id)
		return
	}
	if s.data[idx].Visible == visible {
		s.mu.Unlock()
		return
	}
	s.data[idx].Visible = visible
	s.mu.Unlock()

	s.publishVisibility(id, visible)
}

// ToggleVisibility flips the layer's visibility flag.
func (s *Store) ToggleVisibility(id geodata.LayerID) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		s.logger.Warn("toggle visibility: no layer with id", "layer", id)
		return
	}
	s.data[idx].Visible = !s.data[idx].Visible
	visible := s.data[idx].Visible
	s.mu.Unlock()

	s.publishVisibility(id, visible)
}

func (s *Store) publishVisibility(id geodata.LayerID, visible bool) {
	if visible {
		s.notifier.Publish(events.LayerBecameVisible{ID: id})
	} else {
		s.notifier.Publish(events.LayerBecameHidden{ID: id})
	}
}

// SetColor updates the layer's color and emits a LayerColorUpdated event.
func (s *Store) SetColor(id geodata.LayerID, color geodata.Color) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		s.logger.Warn("set color: no layer with id", "layer", id)
		return
	}
	s.data[idx].Color = color
	s.mu.Unlock()

	s.notifier.Publish(events.LayerColorUpdated{ID: id})
}

// HitTest returns the IDs of every layer whose exact geometry contains p,
// topmost first. The point is assumed to be in the projected CRS.
func (s *Store) HitTest(p orb.Point) []geodata.LayerID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.hitTestLocked(p)
}

func (s *Store) hitTestLocked(p orb.Point) []geodata.LayerID {
	var hits []geodata.LayerID
	for i := len(s.data) - 1; i >= 0; i-- {
		if s.data[i].Projected.Contains(p) {
			hits = append(hits, s.data[i].ID)
		}
	}

	return hits
}

// SelectAt selects the topmost layer containing p, or clears the
// selection when no layer matches. It returns whether the selection
// changed and emits a SelectionChanged event only on change.
func (s *Store) SelectAt(p orb.Point) bool {
	s.mu.Lock()
	next := geodata.NilLayerID
	if hits := s.hitTestLocked(p); len(hits) > 0 {
		next = hits[0]
	}
	changed := next != s.selected
	s.selected = next
	s.mu.Unlock()

	if !changed {
		return false
	}

	if next != geodata.NilLayerID {
		s.logger.Info("layer selected", "layer", next)
	}
	s.notifier.Publish(events.SelectionChanged{ID: next, Selected: next != geodata.NilLayerID})

	return true
}

// Selected returns the currently selected layer ID, if any.
func (s *Store) Selected() (geodata.LayerID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.selected, s.selected != geodata.NilLayerID
}

// Count returns the number of layers in the store.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.data)
}

// Bounds returns the aggregate bounding rectangle grown across every Add.
// The second return is false until the first layer is added.
func (s *Store) Bounds() (orb.Bound, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.bounds, s.hasBounds
}

// EachBottomToTop calls fn with a copy of every layer in painter order.
// The snapshot is consistent: no mutation is observed mid-iteration.
func (s *Store) EachBottomToTop(fn func(geodata.Layer)) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, layer := range s.data {
		fn(*layer)
	}
}

func (s *Store) indexLocked(id geodata.LayerID) int {
	for i, layer := range s.data {
		if layer.ID == id {
			return i
		}
	}

	return -1
}
