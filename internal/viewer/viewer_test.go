package viewer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RustWorks/rgis-map/internal/events"
	"github.com/RustWorks/rgis-map/internal/layers"
	"github.com/RustWorks/rgis-map/internal/rgconfig"
	"github.com/RustWorks/rgis-map/internal/tasks"
	"github.com/RustWorks/rgis-map/pkg/geodata"
)

const twoFeatures = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"properties": {"name": "land"},
			"geometry": {
				"type": "Polygon",
				"coordinates": [[[-10, -10], [10, -10], [10, 10], [-10, 10], [-10, -10]]]
			}
		},
		{
			"type": "Feature",
			"properties": {"name": "city"},
			"geometry": {"type": "Point", "coordinates": [0, 0]}
		}
	]
}`

func newTestViewer(t *testing.T) (*Viewer, *tasks.Runner, <-chan events.Event) {
	t.Helper()

	bus := events.NewBus(nil)
	sub := bus.Subscribe(64)
	store := layers.NewStore(nil, bus)
	runner := tasks.NewRunner(nil)

	return New(nil, rgconfig.Default(), store, runner), runner, sub
}

// settle waits for in-flight tasks and ticks until ingestion is idle.
func settle(t *testing.T, v *Viewer, runner *tasks.Runner) {
	t.Helper()

	for i := 0; i < 10; i++ {
		runner.Wait()
		v.Tick(context.Background())
		if v.Idle() {
			return
		}
	}
	t.Fatal("ingestion did not settle")
}

func TestIngestBytesAddsLayers(t *testing.T) {
	v, runner, sub := newTestViewer(t)

	v.IngestBytes(context.Background(), "inline.geojson", []byte(twoFeatures), "")
	assert.False(t, v.Idle())

	settle(t, v, runner)

	assert.Equal(t, 2, v.Store().Count())

	var created int
	for len(sub) > 0 {
		if _, ok := (<-sub).(events.LayerCreated); ok {
			created++
		}
	}
	assert.Equal(t, 2, created)
}

func TestIngestPathAddsLayers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.geojson")
	require.NoError(t, os.WriteFile(path, []byte(twoFeatures), 0o644))

	v, runner, _ := newTestViewer(t)

	v.IngestPath(context.Background(), path, "EPSG:4326")
	settle(t, v, runner)

	assert.Equal(t, 2, v.Store().Count())

	names := make(map[string]bool)
	v.Store().EachBottomToTop(func(l geodata.Layer) {
		names[l.Name] = true
	})
	assert.True(t, names["land"])
	assert.True(t, names["city"])
}

func TestIngestFailureIsDropped(t *testing.T) {
	v, runner, sub := newTestViewer(t)

	v.IngestPath(context.Background(), filepath.Join(t.TempDir(), "missing.geojson"), "")
	v.IngestBytes(context.Background(), "broken.geojson", []byte("{not json"), "")
	settle(t, v, runner)

	assert.Equal(t, 0, v.Store().Count())
	assert.Empty(t, sub)
}

func TestIngestURLFetchesThenLoads(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(twoFeatures))
	}))
	defer server.Close()

	v, runner, _ := newTestViewer(t)

	v.IngestURL(context.Background(), server.URL+"/remote.geojson", "", "")
	settle(t, v, runner)

	assert.Equal(t, 2, v.Store().Count())
}

func TestIngestURLFailureIsDropped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	v, runner, _ := newTestViewer(t)

	v.IngestURL(context.Background(), server.URL, "", "")
	settle(t, v, runner)

	assert.Equal(t, 0, v.Store().Count())
}

func TestIdleOnFreshViewer(t *testing.T) {
	v, _, _ := newTestViewer(t)
	assert.True(t, v.Idle())
}
