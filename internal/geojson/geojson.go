// Package geojson decodes GeoJSON sources into candidate layers. Decoding
// and reprojection run inside an ingestion task, off the consumer
// goroutine and never under the store lock.
package geojson

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	orbjson "github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"

	"github.com/RustWorks/rgis-map/internal/metrics"
	"github.com/RustWorks/rgis-map/internal/reproject"
	"github.com/RustWorks/rgis-map/pkg/geodata"
)

// Source is one ingestible GeoJSON input: a file path or an in-memory
// buffer with a display name.
type Source struct {
	Path  string
	Name  string
	Bytes []byte
}

func FromPath(path string) Source {
	return Source{Path: path, Name: filepath.Base(path)}
}

func FromBytes(name string, raw []byte) Source {
	return Source{Name: name, Bytes: raw}
}

func (s Source) displayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Path
}

// LoadTask reads one GeoJSON source, decodes it and reprojects its
// features into candidate layers, one candidate per feature. Any failure
// fails the whole task; there is no partial success.
type LoadTask struct {
	Source    Source
	SourceCRS string
	TargetCRS string
}

func (t LoadTask) Name() string {
	return fmt.Sprintf("load %s", t.Source.displayName())
}

func (t LoadTask) Perform(ctx context.Context) ([]geodata.Candidate, error) {
	start := time.Now()
	defer func() {
		metrics.LoadDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	raw := t.Source.Bytes
	if t.Source.Path != "" {
		var err error
		raw, err = os.ReadFile(t.Source.Path)
		if err != nil {
			return nil, errors.Wrapf(err, "fail to read %s", t.Source.Path)
		}
	}

	features, err := decode(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "fail to decode %s", t.Source.displayName())
	}

	candidates := make([]geodata.Candidate, 0, len(features))
	for i, f := range features {
		c, err := t.candidate(f, i, len(features))
		if err != nil {
			return nil, errors.Wrapf(err, "fail to build layer from feature %d of %s", i+1, t.Source.displayName())
		}
		candidates = append(candidates, c)
	}

	return candidates, nil
}

func decode(raw []byte) ([]*orbjson.Feature, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, errors.Wrap(err, "fail to parse JSON")
	}

	switch probe.Type {
	case "FeatureCollection":
		fc, err := orbjson.UnmarshalFeatureCollection(raw)
		if err != nil {
			return nil, errors.Wrap(err, "fail to parse feature collection")
		}
		return fc.Features, nil
	case "Feature":
		f, err := orbjson.UnmarshalFeature(raw)
		if err != nil {
			return nil, errors.Wrap(err, "fail to parse feature")
		}
		return []*orbjson.Feature{f}, nil
	default:
		g, err := orbjson.UnmarshalGeometry(raw)
		if err != nil {
			return nil, errors.Wrap(err, "fail to parse geometry")
		}
		return []*orbjson.Feature{orbjson.NewFeature(g.Geometry())}, nil
	}
}

func (t LoadTask) candidate(f *orbjson.Feature, index, total int) (geodata.Candidate, error) {
	if f.Geometry == nil {
		return geodata.Candidate{}, errors.Wrap(geodata.ErrNoBoundingRect, "feature has no geometry")
	}

	unprojected, err := geodata.NewFeature(f.Geometry)
	if err != nil {
		return geodata.Candidate{}, errors.Wrap(err, "fail to build unprojected feature")
	}

	projectedGeometry, err := reproject.Transform(f.Geometry, t.SourceCRS, t.TargetCRS)
	if err != nil {
		return geodata.Candidate{}, errors.Wrap(err, "fail to reproject feature")
	}

	projected, err := geodata.NewFeature(projectedGeometry)
	if err != nil {
		return geodata.Candidate{}, errors.Wrap(err, "fail to build projected feature")
	}

	return geodata.Candidate{
		Name:        featureName(f, t.Source.displayName(), index, total),
		Metadata:    geodata.Metadata(f.Properties),
		SourceCRS:   t.SourceCRS,
		Unprojected: unprojected,
		Projected:   projected,
	}, nil
}

func featureName(f *orbjson.Feature, source string, index, total int) string {
	for _, key := range []string{"name", "NAME", "title"} {
		if v, ok := f.Properties[key].(string); ok && v != "" {
			return v
		}
	}
	if total == 1 {
		return source
	}
	return fmt.Sprintf("%s (feature %d)", source, index+1)
}
