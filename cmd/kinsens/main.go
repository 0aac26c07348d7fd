package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/san-kum/kinsens/internal/config"
	"github.com/san-kum/kinsens/internal/kinetics"
	"github.com/san-kum/kinsens/internal/logging"
	"github.com/san-kum/kinsens/internal/mechanism"
	"github.com/san-kum/kinsens/internal/reactor"
	"github.com/san-kum/kinsens/internal/sensitivity"
	"github.com/san-kum/kinsens/internal/species"
	"github.com/san-kum/kinsens/internal/viz"
)

var (
	logLevel  string
	logFormat string
	syncLog   func() error

	// one variable per subcommand: pflag stores defaults at registration
	inspectInert    string
	inspectFoldCase bool
	sensInert       string
	sensFoldCase    bool
	profileInert    string
	profileFoldCase bool

	configFile  string
	preset      string
	mechFile    string
	reaction    int
	dk          float64
	observable  string
	sensSpecies string
	fraction    float64

	temperature float64
	pressure    float64
	duration    float64
	composition map[string]string
	integrator  string
	tolerance   float64

	profileSpecies string
	width          int
	height         int
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "kinsens",
		Short:        "chemical kinetics sensitivity toolkit",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			syncLog = logging.Init(logLevel, logFormat, os.Stderr)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if syncLog != nil {
				_ = syncLog()
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")

	inspectCmd := &cobra.Command{
		Use:   "inspect [mechanism]",
		Short: "count species and reactions before and after removing inert species",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}
	inspectCmd.Flags().StringVar(&inspectInert, "inert", "O,O2", "comma-separated inert species")
	inspectCmd.Flags().BoolVar(&inspectFoldCase, "fold-case", false, "match inert species case-insensitively")

	sensCmd := &cobra.Command{
		Use:   "sensitivity",
		Short: "normalized sensitivity of an observable to one reaction rate",
		Args:  cobra.NoArgs,
		RunE:  runSensitivity,
	}
	sensCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	sensCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration (mechanism/name)")
	sensCmd.Flags().StringVar(&mechFile, "mechanism", config.DefaultMechanism, "mechanism file or bundled name")
	sensCmd.Flags().StringVar(&sensInert, "inert", "", "comma-separated inert species")
	sensCmd.Flags().BoolVar(&sensFoldCase, "fold-case", false, "match inert species case-insensitively")
	sensCmd.Flags().IntVar(&reaction, "reaction", config.DefaultReaction, "reaction index")
	sensCmd.Flags().Float64Var(&dk, "dk", sensitivity.DefaultPerturbation, "relative perturbation of A")
	sensCmd.Flags().StringVar(&observable, "observable", config.DefaultObservable, "observable kind (final, peak, consumption)")
	sensCmd.Flags().StringVar(&sensSpecies, "species", config.DefaultSpecies, "observed species")
	sensCmd.Flags().Float64Var(&fraction, "fraction", config.DefaultFraction, "remaining fraction for consumption")
	addReactorFlags(sensCmd)

	profileCmd := &cobra.Command{
		Use:   "profile [mechanism]",
		Short: "plot a species mole fraction over the reactor run",
		Args:  cobra.ExactArgs(1),
		RunE:  runProfile,
	}
	profileCmd.Flags().StringVar(&profileSpecies, "species", "H2", "species to plot")
	profileCmd.Flags().StringVar(&profileInert, "inert", "", "comma-separated inert species")
	profileCmd.Flags().BoolVar(&profileFoldCase, "fold-case", false, "match inert species case-insensitively")
	profileCmd.Flags().IntVar(&width, "width", 72, "plot width")
	profileCmd.Flags().IntVar(&height, "height", 12, "plot height")
	addReactorFlags(profileCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list bundled mechanisms and run presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(viz.Title.Render("bundled mechanisms"))
			for _, name := range mechanism.Library() {
				fmt.Printf("  %s\n", name)
			}
			fmt.Println(viz.Separator(40))
			fmt.Println(viz.Title.Render("presets"))
			for _, mech := range config.Mechanisms() {
				for _, name := range config.ListPresets(mech) {
					cfg := config.GetPreset(mech, name)
					fmt.Printf("  %-24s %s\n", mech+"/"+name,
						viz.Subtle.Render(fmt.Sprintf("reaction %d, %s", cfg.Reaction, cfg.Observable.Describe())))
				}
			}
			return nil
		},
	}

	rootCmd.AddCommand(inspectCmd, sensCmd, profileCmd, presetsCmd)
	return rootCmd
}

func addReactorFlags(cmd *cobra.Command) {
	def := config.DefaultConfig().Reactor
	cmd.Flags().Float64Var(&temperature, "temperature", def.Temperature, "temperature (K)")
	cmd.Flags().Float64Var(&pressure, "pressure", def.Pressure, "pressure (Pa)")
	cmd.Flags().Float64Var(&duration, "time", def.Duration, "duration (s)")
	cmd.Flags().StringToStringVar(&composition, "composition", nil, "initial mole fractions, e.g. H2=2,O2=1,N2=3.76")
	cmd.Flags().StringVar(&integrator, "integrator", def.Integrator, "integrator (euler, rk4, rk45)")
	cmd.Flags().Float64Var(&tolerance, "tol", def.Tolerance, "relative tolerance, 0 for fixed steps")
}

// applyReactorFlags copies explicitly set reactor flags over cfg.
func applyReactorFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("temperature") {
		cfg.Reactor.Temperature = temperature
	}
	if flags.Changed("pressure") {
		cfg.Reactor.Pressure = pressure
	}
	if flags.Changed("time") {
		cfg.Reactor.Duration = duration
	}
	if flags.Changed("integrator") {
		cfg.Reactor.Integrator = integrator
	}
	if flags.Changed("tol") {
		cfg.Reactor.Tolerance = tolerance
	}
	if flags.Changed("composition") {
		comp, err := parseComposition(composition)
		if err != nil {
			return err
		}
		cfg.Reactor.Composition = comp
	}
	return nil
}

func parseComposition(raw map[string]string) (map[string]float64, error) {
	comp := make(map[string]float64, len(raw))
	for name, v := range raw {
		x, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("composition %s: %w", name, err)
		}
		comp[strings.TrimSpace(name)] = x
	}
	return comp, nil
}

func buildOptions(foldCase bool) []kinetics.BuildOption {
	if foldCase {
		return []kinetics.BuildOption{kinetics.WithCaseFold()}
	}
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	mech := args[0]
	names := species.Parse(inspectInert)

	m, err := mechanism.Load(mech)
	if err != nil {
		return err
	}
	sol, err := kinetics.SolutionWithInerts(mech, names, buildOptions(inspectFoldCase)...)
	if err != nil {
		return err
	}

	removed := len(m.Reactions) - sol.NReactions()
	fmt.Println(viz.Box(mech,
		viz.Row("inert", inertLabel(names)),
		viz.Row("species", humanize.Comma(int64(len(m.Species)))),
		viz.Row("reactions", humanize.Comma(int64(len(m.Reactions)))),
		viz.Row("kept", humanize.Comma(int64(sol.NReactions()))),
		viz.Row("removed", humanize.Comma(int64(removed))),
	))

	if removed > 0 {
		kept := make(map[string]int, sol.NReactions())
		for _, r := range sol.Reactions() {
			kept[r.Equation]++
		}
		fmt.Println(viz.Subtle.Render("removed reactions:"))
		for i, r := range m.Reactions {
			if kept[r.Equation] > 0 {
				kept[r.Equation]--
				continue
			}
			fmt.Println(viz.Subtle.Render(fmt.Sprintf("  %3d  %s", i, r.Equation)))
		}
	}
	return nil
}

func inertLabel(names species.Spec) string {
	if names.Len() == 0 {
		return "none"
	}
	return strings.Join(names.Normalize(), ", ")
}

func loadRunConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		mech, name, ok := strings.Cut(preset, "/")
		if !ok {
			mech, name = "h2o2", preset
		}
		p := config.GetPreset(mech, name)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available for %s: %v)", preset, mech, config.ListPresets(mech))
		}
		cfg = p
	}

	// config file overrides preset
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		logging.L().Infow("loaded config", "path", configFile)
	}

	// CLI flags override both
	flags := cmd.Flags()
	if flags.Changed("mechanism") {
		cfg.Mechanism = mechFile
	}
	if flags.Changed("inert") {
		cfg.Inert = species.Parse(sensInert).Normalize()
	}
	if flags.Changed("fold-case") {
		cfg.FoldCase = sensFoldCase
	}
	if flags.Changed("reaction") {
		cfg.Reaction = reaction
	}
	if flags.Changed("dk") {
		cfg.Perturbation = dk
	}
	if flags.Changed("observable") {
		cfg.Observable.Kind = observable
	}
	if flags.Changed("species") {
		cfg.Observable.Species = sensSpecies
	}
	if flags.Changed("fraction") {
		cfg.Observable.Fraction = fraction
	}
	if err := applyReactorFlags(cmd, cfg); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

func runSensitivity(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}

	sol, err := cfg.Solution()
	if err != nil {
		return err
	}
	f, err := cfg.BuildObservable()
	if err != nil {
		return err
	}

	fmt.Printf("perturbing reaction %d of %s...\n", cfg.Reaction, cfg.Mechanism)
	start := time.Now()

	res, err := sensitivity.Compute(sol, cfg.Reaction, f, sensitivity.WithPerturbation(cfg.Perturbation))
	if err != nil {
		return err
	}

	elapsed := time.Since(start)
	logging.L().Infow("sensitivity computed",
		"mechanism", cfg.Mechanism,
		"reaction", res.Index,
		"coefficient", res.Coefficient,
		"elapsed", elapsed,
	)

	format := func(v float64) string { return fmt.Sprintf("%.6g", v) }
	if cfg.Observable.Kind == config.ObservableConsumption {
		format = func(v float64) string { return humanize.SIWithDigits(v, 6, "s") }
	}
	coeff := fmt.Sprintf("%+.6f", res.Coefficient)
	fmt.Println(viz.Box(fmt.Sprintf("reaction %d: %s", res.Index, res.Equation),
		viz.Row("observable", cfg.Observable.Describe()),
		viz.Row("A", fmt.Sprintf("%.6g", res.K0)),
		viz.Row("dk", fmt.Sprintf("%g", res.Dk)),
		viz.Row("baseline", format(res.F0)),
		viz.Row("perturbed", format(res.F1)),
		viz.MetricLabel.Render("sensitivity")+" "+viz.Signed(res.Coefficient, coeff),
	))
	fmt.Println(viz.Subtle.Render(fmt.Sprintf("completed in %v", elapsed.Round(time.Millisecond))))
	return nil
}

func runProfile(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	cfg.Mechanism = args[0]
	cfg.Inert = species.Parse(profileInert).Normalize()
	cfg.FoldCase = profileFoldCase
	if err := applyReactorFlags(cmd, cfg); err != nil {
		return err
	}
	cond := cfg.Conditions()
	if err := cond.Validate(); err != nil {
		return err
	}

	sol, err := cfg.Solution()
	if err != nil {
		return err
	}

	tr, err := reactor.Profile(context.Background(), sol, cond, profileSpecies)
	if err != nil {
		return err
	}

	peak, final := 0.0, tr.Fractions[len(tr.Fractions)-1]
	for _, x := range tr.Fractions {
		peak = max(peak, x)
	}

	caption := fmt.Sprintf("X(%s) over %s at %.0f K", profileSpecies, humanize.SIWithDigits(cond.Duration, 3, "s"), cond.Temperature)
	fmt.Println(viz.Profile(tr.Times, tr.Fractions, width, height, caption))
	fmt.Println(viz.Separator(width))
	fmt.Println(viz.Row("steps", humanize.Comma(int64(tr.Steps))))
	fmt.Println(viz.Row("peak", fmt.Sprintf("%.6g", peak)))
	fmt.Println(viz.Row("final", fmt.Sprintf("%.6g", final)))
	for _, el := range sortedKeys(tr.Drift) {
		fmt.Println(viz.Row("drift "+el, fmt.Sprintf("%.2e", tr.Drift[el])))
	}
	fmt.Println(viz.Subtle.Render(viz.Sparkline(viz.Resample(tr.Times, tr.Fractions, width), width)))
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
