// Package main provides the CLI entrypoint for h2o.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/h2o/internal/clock"
	"github.com/verte-zerg/h2o/internal/config"
	"github.com/verte-zerg/h2o/internal/intake"
	"github.com/verte-zerg/h2o/internal/model"
	"github.com/verte-zerg/h2o/internal/publicip"
	"github.com/verte-zerg/h2o/internal/report"
	"github.com/verte-zerg/h2o/internal/tui"
)

var (
	trackerUnits  int
	trackerUnitMl int
	trackerGoal   float64

	footerIPSource    string
	footerProviders   []string
	footerIPTimeout   time.Duration
	footerInstance    string
	footerGeoIPDB     string
	footerClock       bool
	footerClockLayout string

	runLogFile string
	runDebug   bool

	statusCups int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "h2o",
		Short:         "Track daily water intake toward a 2 liter goal",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runTrackerCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.IntVar(&trackerUnits, "units", intake.DefaultUnits, "number of cups")
	flags.IntVar(&trackerUnitMl, "unit-ml", intake.DefaultUnitVolumeMl, "volume of one cup in ml")
	flags.Float64Var(&trackerGoal, "goal-liters", intake.DefaultGoalLiters, "daily goal in liters")
	flags.StringVar(&footerIPSource, "ip-source", model.IPSourceProviders, "where the footer IP comes from (providers, instance, none)")
	flags.StringArrayVar(&footerProviders, "provider", nil, "IP provider as name=url, tried in order (repeatable)")
	flags.DurationVar(&footerIPTimeout, "ip-timeout", 0, "per-provider timeout (0 waits indefinitely)")
	flags.StringVar(&footerInstance, "instance", publicip.DefaultInstanceLocation, "instance metadata URL or file")
	flags.StringVar(&footerGeoIPDB, "geoip-db", "", "GeoLite2 ASN or Country database for IP details")
	flags.BoolVar(&footerClock, "clock", true, "show the local date/time")
	flags.StringVar(&footerClockLayout, "clock-layout", clock.DefaultLayout, "Go time layout for the clock")

	rootCmd.Flags().StringVar(&runLogFile, "log-file", "", "write diagnostics to this file")
	rootCmd.Flags().BoolVar(&runDebug, "debug", false, "write diagnostics to the default log file")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newIPCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newTableCmd())

	return rootCmd
}

func runTrackerCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	tracker, err := intake.New(trackerConfig(cfg))
	if err != nil {
		return err
	}

	closeLog, err := setupLogging()
	if err != nil {
		return err
	}
	defer closeLog()

	source, err := buildSource(cfg, log.Printf)
	if err != nil {
		return err
	}
	annotator := openAnnotator(cfg, log.Printf)
	defer func() {
		if cerr := annotator.Close(); cerr != nil {
			log.Printf("failed to close geoip database: %v", cerr)
		}
	}()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var ann tui.Annotator
	if annotator != nil {
		ann = annotator
	}
	m := tui.NewModel(ctx, cfg, tracker, source, ann)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func setupLogging() (func(), error) {
	path := runLogFile
	if path == "" && runDebug {
		path = config.DefaultLogPath()
	}
	if path == "" {
		log.SetOutput(io.Discard)
		return func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := tea.LogToFile(path, "h2o "+uuid.NewString()[:8])
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return func() {
		if cerr := f.Close(); cerr != nil {
			logErrf("failed to close log file: %v\n", cerr)
		}
	}, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newIPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ip",
		Short: "Resolve and print the footer IP line",
		Args:  cobra.NoArgs,
		RunE:  runIPCmd,
	}
}

func runIPCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cfg.ShowsIP() {
		return fmt.Errorf("no IP source configured (--ip-source %s)", cfg.IPSource)
	}
	logf := func(format string, args ...any) {
		logErrf(format+"\n", args...)
	}
	source, err := buildSource(cfg, logf)
	if err != nil {
		return err
	}
	out := source.Lookup(cmd.Context())
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), out.Line); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if !out.OK() {
		return nil
	}
	annotator := openAnnotator(cfg, logf)
	defer func() {
		_ = annotator.Close()
	}()
	if note := annotator.Annotate(out.IP); note != "" {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), note); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the display for a number of filled cups",
		Args:  cobra.NoArgs,
		RunE:  runStatusCmd,
	}
	cmd.Flags().IntVar(&statusCups, "cups", 0, "number of filled cups")
	return cmd
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	tracker, err := intake.New(trackerConfig(cfg))
	if err != nil {
		return err
	}
	if statusCups < 0 || statusCups > tracker.Units() {
		return fmt.Errorf("--cups must be between 0 and %d", tracker.Units())
	}
	state := tracker.Display()
	for i := 0; i < statusCups; i++ {
		if state, err = tracker.Select(i); err != nil {
			return fmt.Errorf("failed to fill cup %d: %w", i, err)
		}
	}
	out := cmd.OutOrStdout()
	if err := report.RenderStatus(out, state, report.ShouldUseColor(out)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newTableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "table",
		Short: "Print the display for every number of filled cups",
		Args:  cobra.NoArgs,
		RunE:  runTableCmd,
	}
}

func runTableCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := report.RenderTable(cmd.OutOrStdout(), trackerConfig(cfg)); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}

// loadConfig merges the config file under the flags and validates the result.
func loadConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return mergeConfig(cmd, fileCfg)
}

func mergeConfig(cmd *cobra.Command, fileCfg config.FileConfig) (model.Config, error) {
	applyIntConfig(cmd, "units", &trackerUnits, fileCfg.Tracker.Units)
	applyIntConfig(cmd, "unit-ml", &trackerUnitMl, fileCfg.Tracker.UnitVolumeMl)
	applyFloatConfig(cmd, "goal-liters", &trackerGoal, fileCfg.Tracker.GoalLiters)
	applyStringConfig(cmd, "ip-source", &footerIPSource, fileCfg.Footer.IPSource)
	applyStringSliceConfig(cmd, "provider", &footerProviders, fileCfg.Footer.Providers)
	if err := applyDurationConfig(cmd, "ip-timeout", &footerIPTimeout, fileCfg.Footer.IPTimeout); err != nil {
		return model.Config{}, err
	}
	applyStringConfig(cmd, "instance", &footerInstance, fileCfg.Footer.Instance)
	applyStringConfig(cmd, "geoip-db", &footerGeoIPDB, fileCfg.Footer.GeoIPDB)
	applyBoolConfig(cmd, "clock", &footerClock, fileCfg.Footer.Clock)
	applyStringConfig(cmd, "clock-layout", &footerClockLayout, fileCfg.Footer.ClockLayout)

	cfg := model.Config{
		Units:        trackerUnits,
		UnitVolumeMl: trackerUnitMl,
		GoalLiters:   trackerGoal,
		IPSource:     strings.ToLower(strings.TrimSpace(footerIPSource)),
		Providers:    append([]string(nil), footerProviders...),
		IPTimeout:    footerIPTimeout,
		Instance:     strings.TrimSpace(footerInstance),
		GeoIPDB:      strings.TrimSpace(footerGeoIPDB),
		Clock:        footerClock,
		ClockLayout:  footerClockLayout,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func trackerConfig(cfg model.Config) intake.Config {
	return intake.Config{
		Units:        cfg.Units,
		UnitVolumeMl: cfg.UnitVolumeMl,
		GoalLiters:   cfg.GoalLiters,
	}
}

func buildSource(cfg model.Config, logf publicip.Logf) (publicip.Source, error) {
	switch cfg.IPSource {
	case model.IPSourceProviders:
		providers, err := parseProviders(cfg.Providers)
		if err != nil {
			return nil, err
		}
		return publicip.NewChain(nil, providers, cfg.IPTimeout, logf), nil
	case model.IPSourceInstance:
		return publicip.NewInstance(nil, cfg.Instance, logf), nil
	case model.IPSourceNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown ip source %q", cfg.IPSource)
	}
}

func parseProviders(specs []string) ([]publicip.Provider, error) {
	if len(specs) == 0 {
		return publicip.DefaultProviders(), nil
	}
	providers := make([]publicip.Provider, 0, len(specs))
	for _, spec := range specs {
		p, err := publicip.ParseProvider(spec)
		if err != nil {
			return nil, fmt.Errorf("invalid --provider: %w", err)
		}
		providers = append(providers, p)
	}
	return providers, nil
}

// openAnnotator returns nil when no database is configured or it cannot be
// opened; the footer then simply omits IP details.
func openAnnotator(cfg model.Config, logf publicip.Logf) *publicip.Annotator {
	if cfg.GeoIPDB == "" {
		return nil
	}
	annotator, err := publicip.OpenAnnotator(cfg.GeoIPDB)
	if err != nil {
		logf("%v", err)
		return nil
	}
	return annotator
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyStringSliceConfig(cmd *cobra.Command, name string, target, value *[]string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = append([]string(nil), (*value)...)
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *string) error {
	if value == nil {
		return nil
	}
	if cmd.Flags().Changed(name) {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(*value))
	if err != nil {
		return fmt.Errorf("invalid %s in config: %w", name, err)
	}
	*target = d
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# h2o configuration
# Uncomment a value to enable it. CLI flags override config values.

[tracker]
# units = %d              # Number of cups
# unit-ml = %d           # Volume of one cup in ml
# goal-liters = %.1f      # Daily goal in liters

[footer]
# ip-source = %q  # providers | instance | none
# providers = ["ipify=https://api.ipify.org?format=json", "ipapi=https://ipapi.co/json/", "ipinfo=https://ipinfo.io/json"]
# ip-timeout = "0s"        # Per-provider timeout; 0s waits indefinitely
# instance = %q
# geoip-db = ""            # GeoLite2 ASN or Country .mmdb
# clock = true
# clock-layout = %q
`,
		intake.DefaultUnits,
		intake.DefaultUnitVolumeMl,
		intake.DefaultGoalLiters,
		model.IPSourceProviders,
		publicip.DefaultInstanceLocation,
		clock.DefaultLayout,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Units <= 0 {
		return fmt.Errorf("--units must be > 0")
	}
	if cfg.UnitVolumeMl <= 0 {
		return fmt.Errorf("--unit-ml must be > 0")
	}
	if cfg.GoalLiters <= 0 {
		return fmt.Errorf("--goal-liters must be > 0")
	}
	switch cfg.IPSource {
	case model.IPSourceProviders:
		if _, err := parseProviders(cfg.Providers); err != nil {
			return err
		}
	case model.IPSourceInstance:
		if cfg.Instance == "" {
			return fmt.Errorf("--instance must not be empty")
		}
	case model.IPSourceNone:
	default:
		return fmt.Errorf("--ip-source must be one of %s, %s, %s", model.IPSourceProviders, model.IPSourceInstance, model.IPSourceNone)
	}
	if cfg.IPTimeout < 0 {
		return fmt.Errorf("--ip-timeout must be >= 0")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
