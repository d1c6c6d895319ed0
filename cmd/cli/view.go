package cli

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/RustWorks/rgis-map/internal/events"
	"github.com/RustWorks/rgis-map/internal/layers"
	"github.com/RustWorks/rgis-map/internal/metrics"
	"github.com/RustWorks/rgis-map/internal/rgconfig"
	"github.com/RustWorks/rgis-map/internal/tasks"
	"github.com/RustWorks/rgis-map/internal/viewer"
	"github.com/RustWorks/rgis-map/pkg/geodata"
)

func init() {
	viewCmd.Flags().String("crs", "", "source CRS of the inputs (defaults to the configured default source CRS)")
	viewCmd.Flags().String("config", "", "path to the rgis config file")
	viewCmd.Flags().String("metrics-addr", "", "address to expose prometheus metrics on")
	rootCmd.AddCommand(viewCmd)
}

var viewCmd = &cobra.Command{
	Use:   "view [source...]",
	Short: "Load GeoJSON sources into the layer collection",
	Long: "Load one or more GeoJSON sources into the layer collection and print the resulting layers. " +
		"A source is a file path, an http(s) URL, or - for standard input.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := hclog.Default()
		logLevel := hclog.LevelFromString(os.Getenv("RGIS_LOG"))
		if logLevel != hclog.NoLevel {
			logger.SetLevel(logLevel)
		}
		ctx := hclog.WithContext(cmd.Context(), logger)

		configPath, err := cmd.Flags().GetString("config")
		if err != nil {
			return errors.Wrap(err, "fail to get --config flag, this is a bug in rgis")
		}

		sourceCRS, err := cmd.Flags().GetString("crs")
		if err != nil {
			return errors.Wrap(err, "fail to get --crs flag, this is a bug in rgis")
		}

		metricsAddr, err := cmd.Flags().GetString("metrics-addr")
		if err != nil {
			return errors.Wrap(err, "fail to get --metrics-addr flag, this is a bug in rgis")
		}

		cfg, err := rgconfig.Load(configPath)
		if err != nil {
			return errors.Wrap(err, "fail to load config")
		}
		if metricsAddr != "" {
			cfg.MetricsAddr = metricsAddr
		}

		bus := events.NewBus(logger)
		store := layers.NewStore(logger, bus)
		runner := tasks.NewRunner(logger)
		v := viewer.New(logger, cfg, store, runner)

		sub := bus.Subscribe(256)
		go func() {
			for e := range sub {
				logger.Debug("change event", "event", fmt.Sprintf("%#v", e))
			}
		}()

		if cfg.MetricsAddr != "" {
			go func() {
				logger.Info("serving metrics", "addr", cfg.MetricsAddr)
				err := http.ListenAndServe(cfg.MetricsAddr, metrics.Handler())
				if err != nil {
					logger.Error("fail to serve metrics", "error", err)
				}
			}()
		}

		for _, arg := range args {
			switch {
			case arg == "-":
				raw, err := io.ReadAll(os.Stdin)
				if err != nil {
					return errors.Wrap(err, "fail to read standard input")
				}
				v.IngestBytes(ctx, "Standard input", raw, sourceCRS)
			case strings.HasPrefix(arg, "http://"), strings.HasPrefix(arg, "https://"):
				v.IngestURL(ctx, arg, "", sourceCRS)
			default:
				v.IngestPath(ctx, arg, sourceCRS)
			}
		}

		ticker := time.NewTicker(cfg.Tick())
		defer ticker.Stop()
		for {
			<-ticker.C
			v.Tick(ctx)
			if v.Idle() {
				break
			}
		}

		printLayers(store)

		return nil
	},
}

func printLayers(store *layers.Store) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSOURCE CRS\tCOLOR\tVISIBLE")
	store.EachBottomToTop(func(l geodata.Layer) {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", l.ID, l.Name, l.SourceCRS, l.Color.Hex(), l.Visible)
	})
	w.Flush()
}
