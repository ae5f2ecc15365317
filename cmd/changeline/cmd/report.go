package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/changeline/changeline/internal/config"
	"github.com/changeline/changeline/internal/export"
	"github.com/changeline/changeline/internal/sources"
	"github.com/changeline/changeline/internal/sources/messagecenter"
	"github.com/changeline/changeline/internal/sources/roadmap"
	"github.com/changeline/changeline/internal/sources/webfeed"
	"github.com/changeline/changeline/internal/transport"
	"github.com/changeline/changeline/pkg/enrich"
	"github.com/changeline/changeline/pkg/feeds"
	"github.com/changeline/changeline/pkg/logging"
	"github.com/changeline/changeline/pkg/pipeline"
)

// DefaultMirrorURL is the public message-center mirror used for narrative
// enrichment; the Graph feed itself does not serve a browsable page.
const DefaultMirrorURL = "https://mc.merill.net/mc/"

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Fetch all sources, reconcile, and write a change report",
	Long: `Report fetches the roadmap catalog, the admin message feed, and the
public web feed, reconciles them into one entity per real-world change,
and writes the result in the requested format.

The admin message feed needs a Graph bearer token in ` + config.GraphTokenEnv + `;
without one the feed is skipped and the report is built from the public
sources alone.`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	flags := reportCmd.Flags()
	flags.String("products", "", "comma-separated product name filters (substring match)")
	flags.String("clouds", "", "comma-separated cloud environments to include")
	flags.Int("months", 3, "lookback window in months")
	flags.String("since", "", "window start date (YYYY-MM-DD, overrides --months with --until)")
	flags.String("until", "", "window end date (YYYY-MM-DD)")
	flags.Bool("keep-undated", false, "include records with no usable date")
	flags.String("forced-ids", "", "comma-separated entity ids to move to the front of the report")
	flags.Int("workers", enrich.DefaultWorkers, "enrichment worker count")
	flags.String("format", "json", "output format (json, csv, markdown, yaml)")
	flags.StringP("out", "o", "report.json", "output file path")
	flags.String("roadmap-url", roadmap.DefaultURL, "roadmap catalog endpoint")
	flags.String("messagecenter-url", messagecenter.DefaultURL, "admin message feed endpoint")
	flags.String("webfeed-url", webfeed.DefaultURL, "web feed endpoint")
	flags.String("mirror-url", DefaultMirrorURL, "message-center mirror base for enrichment")
	flags.Bool("skip-messagecenter", false, "skip the admin message feed")
	flags.Bool("skip-webfeed", false, "skip the web feed")
	flags.Bool("skip-enrich", false, "skip narrative enrichment")

	if err := viper.BindPFlags(flags); err != nil {
		panic(fmt.Sprintf("Failed to bind report flags: %v", err))
	}
}

func runReport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := logging.Default()
	ctx = logging.WithLogger(ctx, log)

	settings := config.Load()

	format, err := export.ParseFormat(settings.Format)
	if err != nil {
		return err
	}
	win, err := settings.Window()
	if err != nil {
		return err
	}

	client := transport.New()

	in := pipeline.Inputs{}
	if in.Roadmap, err = fetchSource(ctx, roadmap.New(client, settings.RoadmapURL)); err != nil {
		return err
	}

	if settings.SkipMessageCenter {
		log.Info().Msg("Skipping admin message feed")
	} else if token := config.GraphToken(); token == "" {
		log.Warn().Str("env", config.GraphTokenEnv).Msg("No Graph token configured, skipping admin message feed")
	} else {
		authed := transport.New(transport.WithAuthenticator(transport.BearerAuth{Token: token}))
		in.MessageCenter, err = fetchSource(ctx, messagecenter.New(authed, settings.MessageCenterURL))
		if err != nil {
			return err
		}
	}

	if settings.SkipWebFeed {
		log.Info().Msg("Skipping web feed")
	} else if in.Web, err = fetchSource(ctx, webfeed.New(client, settings.WebFeedURL)); err != nil {
		// Web hits are advisory; a dead feed degrades the report rather
		// than failing the run.
		log.Warn().Err(err).Msg("Web feed unavailable, continuing without web hits")
		in.Web = nil
	}

	opts := pipeline.Options{
		Window:     win,
		Clouds:     settings.Clouds,
		Products:   settings.Products,
		OrderFirst: settings.ForcedIDs,
	}
	if !settings.SkipEnrich {
		mirror := settings.MirrorURL
		if mirror == "" {
			mirror = DefaultMirrorURL
		}
		opts.Enricher = enrich.NewEnricher(client,
			enrich.MessageCenterMirrorURL(mirror),
			enrich.Pool{Size: settings.Workers})
	}

	outcome, err := pipeline.Run(ctx, in, opts)
	if err != nil {
		return err
	}

	for kind, n := range outcome.Dropped {
		log.Debug().Str("source", string(kind)).Int("dropped", n).Msg("Unusable records dropped")
	}
	for kind, n := range outcome.Filtered {
		log.Debug().Str("source", string(kind)).Int("filtered", n).Msg("Records outside window or clouds")
	}

	if err := export.WriteFile(settings.Out, format, outcome.Result); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Wrote %d entities to %s (%s)\n",
		len(outcome.Result.Entities), settings.Out, format)
	return nil
}

// fetchSource fetches one feed with its name attached to the log context.
func fetchSource(ctx context.Context, src sources.Source) ([]feeds.RawRecord, error) {
	return src.Fetch(logging.WithSource(ctx, src.Name()))
}
