package geodata

import (
	"github.com/lithammer/shortuuid/v3"
)

// LayerID identifies a layer for the lifetime of a store. IDs are stable
// once assigned and never reused after the layer is removed.
type LayerID string

// NilLayerID is the zero LayerID, used when no layer is referenced.
const NilLayerID = LayerID("")

// NewLayerID returns a fresh unique layer identifier.
func NewLayerID() LayerID {
	return LayerID(shortuuid.New())
}
