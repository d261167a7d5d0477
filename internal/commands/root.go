package commands

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/aggregate"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/buildinfo"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/config"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/logger"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/money"
	"github.com/Gaurav-mali12/Universal-Finance-Tracker/internal/pipeline"
)

// runtime is the state shared by every subcommand once flags are parsed.
type runtime struct {
	configPath string
	logLevel   string
	dayFirst   bool

	cfg *config.Config
	log zerolog.Logger
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rt := &runtime{}

	rootCmd := &cobra.Command{
		Use:     "uft",
		Short:   "Turn bank statements into a clean spending ledger",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.load(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rt.configPath, "config", "", "path to uft.yaml")
	flags.StringVar(&rt.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&rt.dayFirst, "day-first", false, "read ambiguous dates like 03/04/2024 as 3 April")

	rootCmd.AddCommand(
		newLedgerCommand(rt),
		newSummaryCommand(rt),
		newReportCommand(rt),
		newServeCommand(rt),
		newConfigCommand(rt),
	)

	return rootCmd
}

func (rt *runtime) load(cmd *cobra.Command) error {
	cfg, err := config.Load(rt.configPath)
	if err != nil {
		return err
	}
	if rt.logLevel != "" {
		cfg.Log.Level = rt.logLevel
	}
	if cmd.Flags().Changed("day-first") {
		cfg.Parsing.DayFirst = rt.dayFirst
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	rt.cfg = cfg
	rt.log = logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Out:    cmd.ErrOrStderr(),
	})
	return nil
}

func (rt *runtime) pipeline() *pipeline.Pipeline {
	return pipeline.New(pipeline.Options{DayFirst: rt.cfg.Parsing.DayFirst})
}

func (rt *runtime) money() money.Formatter {
	return money.NewFormatter(rt.cfg.Dashboard.CurrencyCode, rt.cfg.Dashboard.CurrencySymbol)
}

// viewFlags are the dashboard parameters shared by summary and report.
type viewFlags struct {
	year   int
	budget string
	search string
	top    int
}

func (v *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&v.year, "year", 0, "year to analyse (default: most recent)")
	cmd.Flags().StringVar(&v.budget, "budget", "", "monthly budget limit (default from config)")
	cmd.Flags().StringVar(&v.search, "search", "", "only include descriptions containing this text in the yearly view")
	cmd.Flags().IntVar(&v.top, "top", 0, "breakdown size (default from config)")
}

func (v *viewFlags) query(cfg *config.Config) (aggregate.Query, error) {
	q := aggregate.Query{
		Year:   v.year,
		Budget: cfg.Dashboard.Budget(),
		Search: strings.TrimSpace(v.search),
		TopN:   cfg.Dashboard.TopN,
	}
	if v.year < 0 {
		return q, fmt.Errorf("invalid --year %d", v.year)
	}
	if v.top > 0 {
		q.TopN = v.top
	}
	if v.budget != "" {
		b, err := parseBudget(v.budget)
		if err != nil {
			return q, err
		}
		q.Budget = b
	}
	return q, nil
}
