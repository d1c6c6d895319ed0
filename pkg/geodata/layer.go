package geodata

// Metadata carries the property map decoded alongside a geometry.
type Metadata map[string]interface{}

// Candidate is a parsed and reprojected feature set that has not yet been
// handed to a store. Candidates carry both the geometry as received and
// its projection into the viewer's target CRS; a store copies them into
// owned Layers on Add.
type Candidate struct {
	Name        string
	Metadata    Metadata
	SourceCRS   string
	Unprojected Feature
	Projected   Feature
}

// Layer is one ingested feature set owned by a store. The ID, geometries
// and bounding rectangles are immutable after creation; color, visibility
// and stacking order change only through store operations.
type Layer struct {
	ID          LayerID
	Name        string
	Metadata    Metadata
	SourceCRS   string
	Unprojected Feature
	Projected   Feature
	Color       Color
	Visible     bool
}
