// Package viewer is the single logical consumer of the ingestion
// pipeline. It spawns loading tasks, drains their completion mailboxes
// once per tick and performs every store mutation on one goroutine.
package viewer

import (
	"context"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/RustWorks/rgis-map/internal/fetch"
	"github.com/RustWorks/rgis-map/internal/geojson"
	"github.com/RustWorks/rgis-map/internal/layers"
	"github.com/RustWorks/rgis-map/internal/metrics"
	"github.com/RustWorks/rgis-map/internal/rgconfig"
	"github.com/RustWorks/rgis-map/internal/tasks"
	"github.com/RustWorks/rgis-map/pkg/geodata"
)

type Viewer struct {
	logger  hclog.Logger
	cfg     rgconfig.Config
	store   *layers.Store
	runner  *tasks.Runner
	loads   *tasks.Mailbox[[]geodata.Candidate]
	fetches *tasks.Mailbox[fetch.Result]
}

func New(logger hclog.Logger, cfg rgconfig.Config, store *layers.Store, runner *tasks.Runner) *Viewer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	logger = logger.Named("viewer")

	return &Viewer{
		logger:  logger,
		cfg:     cfg,
		store:   store,
		runner:  runner,
		loads:   tasks.NewMailbox[[]geodata.Candidate](),
		fetches: tasks.NewMailbox[fetch.Result](),
	}
}

func (v *Viewer) Store() *layers.Store {
	return v.store
}

// IngestPath schedules a GeoJSON file load. Ingestion is fire and forget:
// failures are observable only through logs, metrics and the absence of a
// LayerCreated event.
func (v *Viewer) IngestPath(ctx context.Context, filePath, sourceCRS string) {
	v.spawnLoad(ctx, geojson.FromPath(filePath), sourceCRS)
}

// IngestBytes schedules a load of an in-memory GeoJSON document.
func (v *Viewer) IngestBytes(ctx context.Context, name string, raw []byte, sourceCRS string) {
	v.spawnLoad(ctx, geojson.FromBytes(name, raw), sourceCRS)
}

// IngestURL schedules a network fetch whose result feeds a load task on a
// later tick.
func (v *Viewer) IngestURL(ctx context.Context, url, name, sourceCRS string) {
	tasks.Spawn(ctx, v.runner, v.fetches, fetch.Task{
		URL:       url,
		LayerName: name,
		CRS:       v.crsOrDefault(sourceCRS),
	})
}

func (v *Viewer) spawnLoad(ctx context.Context, src geojson.Source, sourceCRS string) {
	tasks.Spawn(ctx, v.runner, v.loads, geojson.LoadTask{
		Source:    src,
		SourceCRS: v.crsOrDefault(sourceCRS),
		TargetCRS: v.cfg.TargetCRS,
	})
}

func (v *Viewer) crsOrDefault(crs string) string {
	if crs == "" {
		return v.cfg.DefaultSourceCRS
	}
	return crs
}

// Tick drains both completion mailboxes once and applies every outcome.
// Failed outcomes are logged and dropped; there is no retry. All parsing
// and reprojection already happened off-thread, so the store lock is only
// held for the mutations themselves.
func (v *Viewer) Tick(ctx context.Context) {
	for _, o := range v.fetches.Drain() {
		if o.Err != nil {
			v.logger.Error("could not fetch file", "task", o.Name, "error", o.Err)
			metrics.FetchFailuresTotal.Inc()
			continue
		}
		v.IngestBytes(ctx, o.Value.Name, o.Value.Bytes, o.Value.CRS)
	}

	for _, o := range v.loads.Drain() {
		if o.Err != nil {
			v.logger.Error("could not load layers", "task", o.Name, "error", o.Err)
			metrics.LoadFailuresTotal.Inc()
			continue
		}
		for _, c := range o.Value {
			v.store.Add(c)
			metrics.LayersCreatedTotal.Inc()
		}
	}

	metrics.LayerCount.Set(float64(v.store.Count()))
}

// Idle reports whether ingestion has settled: no task in flight and
// nothing waiting to be drained.
func (v *Viewer) Idle() bool {
	return v.runner.InFlight() == 0 && !v.loads.Pending() && !v.fetches.Pending()
}

// Run ticks at the configured interval until ctx is cancelled.
func (v *Viewer) Run(ctx context.Context) {
	ticker := time.NewTicker(v.cfg.Tick())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			v.Tick(ctx)
		}
	}
}
