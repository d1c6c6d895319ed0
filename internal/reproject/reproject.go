// Package reproject transforms geometries between the coordinate
// reference systems the viewer understands: WGS84 (EPSG:4326) and web
// mercator (EPSG:3857).
package reproject

import (
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
	"github.com/pkg/errors"
)

// ErrUnknownCRS reports a source or target CRS with no supported
// transform.
var ErrUnknownCRS = errors.New("unknown coordinate reference system")

const (
	// WGS84 is the CRS of most interchange data, in degrees.
	WGS84 = "EPSG:4326"
	// WebMercator is the viewer's rendering CRS, in meters.
	WebMercator = "EPSG:3857"
)

// Transform reprojects g from sourceCRS to targetCRS. It is deterministic
// for a fixed CRS pair and input and never mutates its argument.
func Transform(g orb.Geometry, sourceCRS, targetCRS string) (orb.Geometry, error) {
	if g == nil {
		return nil, errors.New("no geometry to transform")
	}

	src, ok := normalize(sourceCRS)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownCRS, "source CRS %q", sourceCRS)
	}

	dst, ok := normalize(targetCRS)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownCRS, "target CRS %q", targetCRS)
	}

	// orb's projection functions convert coordinates in place.
	cloned := orb.Clone(g)

	switch {
	case src == dst:
		return cloned, nil
	case src == WGS84 && dst == WebMercator:
		return project.Geometry(cloned, project.WGS84.ToMercator), nil
	case src == WebMercator && dst == WGS84:
		return project.Geometry(cloned, project.Mercator.ToWGS84), nil
	}

	return nil, errors.Wrapf(ErrUnknownCRS, "no transform from %q to %q", src, dst)
}

// Supported reports whether crs names a CRS this package can transform
// from or to.
func Supported(crs string) bool {
	_, ok := normalize(crs)
	return ok
}

func normalize(crs string) (string, bool) {
	switch strings.ToUpper(strings.TrimSpace(crs)) {
	case "EPSG:4326", "WGS84", "CRS84", "URN:OGC:DEF:CRS:OGC:1.3:CRS84":
		return WGS84, true
	case "EPSG:3857", "EPSG:900913", "WEB MERCATOR", "WEBMERCATOR":
		return WebMercator, true
	}

	return "", false
}
