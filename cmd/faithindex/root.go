package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/faithindex/internal/app"
	"github.com/hyperifyio/faithindex/internal/render"
)

// NewRootCmd creates the faithindex command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "faithindex [output.html]",
		Short: "Archive the BBC religions pages into one interactive HTML page",
		Long: `faithindex fetches the BBC religions index, visits every religion's
detail page in order and writes a single static HTML page: a table of
contents, one section per religion with its summary, and collapsible link
groups that open in an in-page viewer.

The page goes to bbc_religions.html unless a path is given. A Markdown
outline, an HTML digest of that outline, a PDF and a JSON manifest can be
written alongside it.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       app.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRoot,
	}

	f := cmd.Flags()
	f.StringP("config", "c", "", "Path to a YAML or JSON config file")
	f.BoolP("verbose", "v", false, "Enable debug logging")
	f.StringSlice("env-file", nil, "Dotenv files to load before reading the environment (none by default)")
	f.String("index-url", "", "Index page to start from (default "+app.DefaultIndexURL+")")
	f.String("user-agent", "", "User-Agent header for every request")
	f.Duration("timeout", 0, "Per-request timeout (default 20s)")
	f.String("markdown", "", "Also write the Markdown outline to this path")
	f.String("digest", "", "Also write the outline converted to HTML to this path")
	f.String("renderer", "", "Digest renderer: goldmark or pre (default "+render.RendererGoldmark+")")
	f.String("pdf", "", "Also write the outline as PDF to this path")
	f.String("manifest", "", "Also write a JSON manifest of fetched pages to this path")
	f.String("cache-dir", "", "Keep fetched pages here and revalidate them on later runs")
	f.Duration("cache-max-age", 0, "Drop cached pages older than this before the run (0 keeps all)")
	f.Bool("cache-clear", false, "Empty the cache directory before the run")
	f.Bool("skip-failed", false, "Keep going when a religion page fails, leaving its section empty")

	return cmd
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	a, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	if err := a.Run(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Finished. Open '%s'.\n", a.Config().OutputPath)
	return nil
}

// loadConfig layers settings: defaults < config file < environment < flags.
// Defaults themselves are filled in by app.New.
func loadConfig(cmd *cobra.Command, args []string) (app.Config, error) {
	var cfg app.Config
	f := cmd.Flags()

	envFiles, _ := f.GetStringSlice("env-file")
	if err := app.LoadEnvFiles(envFiles...); err != nil {
		return cfg, fmt.Errorf("load env files: %w", err)
	}

	if path, _ := f.GetString("config"); path != "" {
		fc, err := app.LoadConfigFile(path)
		if err != nil {
			return cfg, err
		}
		app.ApplyFileConfig(&cfg, fc)
	}

	app.ApplyEnvOverrides(&cfg)

	if len(args) == 1 {
		cfg.OutputPath = args[0]
	}
	strFlags := map[string]*string{
		"index-url":  &cfg.IndexURL,
		"user-agent": &cfg.UserAgent,
		"markdown":   &cfg.MarkdownPath,
		"digest":     &cfg.DigestPath,
		"renderer":   &cfg.DigestRenderer,
		"pdf":        &cfg.PDFPath,
		"manifest":   &cfg.ManifestPath,
		"cache-dir":  &cfg.CacheDir,
	}
	for name, dst := range strFlags {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	if f.Changed("timeout") {
		d, _ := f.GetDuration("timeout")
		cfg.Timeout = d
	}
	if f.Changed("cache-max-age") {
		cfg.CacheMaxAge, _ = f.GetDuration("cache-max-age")
	}
	if f.Changed("cache-clear") {
		cfg.CacheClear, _ = f.GetBool("cache-clear")
	}
	if f.Changed("verbose") {
		cfg.Verbose, _ = f.GetBool("verbose")
	}
	if f.Changed("skip-failed") {
		cfg.SkipFailedCategories, _ = f.GetBool("skip-failed")
	}
	return cfg, nil
}
