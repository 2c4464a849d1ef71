package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zen-systems/orbit/pkg/adapter"
	"github.com/zen-systems/orbit/pkg/config"
	"github.com/zen-systems/orbit/pkg/logging"
	"github.com/zen-systems/orbit/pkg/profile"
	"github.com/zen-systems/orbit/pkg/query"
	"github.com/zen-systems/orbit/pkg/router"
)

type globalFlags struct {
	configFile string
	envFile    string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "orbit",
		Short: "Classify chat requests and route them to brand profiles",
		Long: `Orbit classifies a chat request, scores its complexity and picks the
brand profile, engine and cost tier it should run with.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.configFile, "config", "", "path to config file (default ~/.orbit/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override the configured log level")

	rootCmd.AddCommand(profilesCmd(flags))
	rootCmd.AddCommand(classifyCmd(flags))
	rootCmd.AddCommand(routeCmd(flags))
	rootCmd.AddCommand(enginesCmd(flags))

	return rootCmd
}

// app is the per-invocation runtime built from flags and configuration.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

func loadApp(flags *globalFlags) (*app, error) {
	if flags.envFile != "" {
		if err := godotenv.Load(flags.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", flags.envFile, err)
		}
	}

	var cfg *config.Config
	var err error
	if flags.configFile != "" {
		cfg, err = config.LoadFile(flags.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	if invalid := cfg.Normalize(); invalid != "" {
		logger.Warn("invalid cost tier in config; using premium", zap.String("cost_tier", invalid))
	}
	return &app{cfg: cfg, logger: logger}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}

// newRouter builds the router, attaching the remote classifier when enabled.
// A classifier that cannot be built is logged and skipped.
func (a *app) newRouter(ctx context.Context, forceRemote bool) *router.Router {
	opts := []router.RouterOption{
		router.WithLogger(a.logger),
		router.WithTimeout(a.cfg.Classifier.Timeout),
		router.WithRemoteMinLength(a.cfg.Classifier.MinQueryLength),
	}

	cc := a.cfg.Classifier
	if cc.Enabled || forceRemote {
		impl, err := adapter.New(ctx, cc.Adapter, a.cfg.APIKey(cc.Adapter))
		if err != nil {
			a.logger.Warn("remote classifier unavailable", zap.String("adapter", cc.Adapter), zap.Error(err))
		} else {
			opts = append(opts, router.WithRemoteClassifier(router.NewLLMClassifier(impl, a.cfg.ClassifierModel(), a.logger)))
		}
	}
	return router.NewRouter(a.cfg, opts...)
}

func profilesCmd(flags *globalFlags) *cobra.Command {
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List brand profiles and their engines",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			defer a.close()

			reg := profile.NewRegistry(a.cfg)
			profiles := reg.Profiles()

			if jsonFlag {
				ordered := make([]profile.PipelineProfile, 0, len(profiles))
				for _, alias := range reg.Aliases() {
					ordered = append(ordered, profiles[alias])
				}
				return writeJSON(cmd.OutOrStdout(), ordered)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ALIAS\tENGINE\tTIER\tA2A\tTHINKING\tLOOP\tCONTEXT\tBUDGET\tTOOLS")
			for _, alias := range reg.Aliases() {
				p := profiles[alias]
				tier := "-"
				if t, ok := profile.ProfileCostTier(alias); ok {
					tier = t.String()
				}
				budget := "unlimited"
				if p.TimeBudgetSeconds > 0 {
					budget = fmt.Sprintf("%ds", p.TimeBudgetSeconds)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d/%s\t%s\t%s\t%s\n",
					p.ID, p.Engine, tier, p.A2A, p.Thinking,
					p.AgentLoopMax, p.LoopStrategy, p.ContextStrategy, budget,
					formatList(p.RequiredTools))
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&jsonFlag, "json", false, "print profiles as JSON")
	return cmd
}

func classifyCmd(flags *globalFlags) *cobra.Command {
	var (
		imagesFlag    bool
		documentsFlag bool
		historyFlag   int
	)

	cmd := &cobra.Command{
		Use:   "classify [text]",
		Short: "Classify a query locally and score its complexity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			defer a.close()

			cls := query.NewClassifier(query.WithLogger(a.logger)).Classify(args[0])
			assessment := query.Assess(query.AssessContext{
				Query:          args[0],
				Classification: cls,
				HasImages:      imagesFlag,
				HasDocuments:   documentsFlag,
				HistoryLength:  historyFlag,
			})

			return writeJSON(cmd.OutOrStdout(), struct {
				Classification query.Classification `json:"classification"`
				Domain         query.Domain         `json:"domain"`
				Assessment     query.Assessment     `json:"assessment"`
			}{cls, query.DomainFor(cls.Type), assessment})
		},
	}

	cmd.Flags().BoolVar(&imagesFlag, "images", false, "request carries images")
	cmd.Flags().BoolVar(&documentsFlag, "documents", false, "request carries documents")
	cmd.Flags().IntVar(&historyFlag, "history", 0, "number of prior conversation turns")
	return cmd
}

func routeCmd(flags *globalFlags) *cobra.Command {
	var (
		modelFlag     string
		tierFlag      string
		imagesFlag    bool
		documentsFlag bool
		historyFlag   int
		remoteFlag    bool
	)

	cmd := &cobra.Command{
		Use:   "route [text]",
		Short: "Route a query and print the execution plan",
		Long: `Routes the query as a request for --model and prints the routing decision,
including the execution plan.

Use --remote to classify with the configured remote classifier even when it
is disabled in the config file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			r := a.newRouter(ctx, remoteFlag)
			d, err := r.Plan(ctx, router.Request{
				Model:         modelFlag,
				Query:         args[0],
				HasImages:     imagesFlag,
				HasDocuments:  documentsFlag,
				HistoryLength: historyFlag,
				MaxTier:       tierFlag,
			})
			if err != nil {
				return fmt.Errorf("route failed: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), d)
		},
	}

	cmd.Flags().StringVar(&modelFlag, "model", profile.AliasAuto, "requested model or brand alias")
	cmd.Flags().StringVar(&tierFlag, "tier", "", "cost tier ceiling (economy, standard, premium)")
	cmd.Flags().BoolVar(&imagesFlag, "images", false, "request carries images")
	cmd.Flags().BoolVar(&documentsFlag, "documents", false, "request carries documents")
	cmd.Flags().IntVar(&historyFlag, "history", 0, "number of prior conversation turns")
	cmd.Flags().BoolVar(&remoteFlag, "remote", false, "use the remote classifier for long queries")
	return cmd
}

func enginesCmd(flags *globalFlags) *cobra.Command {
	var (
		validateFlag bool
		catalogFlag  string
	)

	cmd := &cobra.Command{
		Use:   "engines",
		Short: "List engine short names, providers and key status",
		Long: `Lists the engine catalog: short names and the providers serving them.

Use --validate to check that every profile and domain engine is served by a
known provider. Use --catalog to merge an extra catalog file first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			defer a.close()

			if catalogFlag != "" {
				extra, err := config.LoadCatalog(catalogFlag)
				if err != nil {
					return fmt.Errorf("failed to load catalog: %w", err)
				}
				a.cfg.Catalog.Merge(extra)
			}

			if validateFlag {
				return validateEngines(cmd.OutOrStdout(), cmd.ErrOrStderr(), a.cfg)
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tMODELS\tSTATUS")
			for _, provider := range a.cfg.Catalog.ProviderNames() {
				status := "no key"
				if a.cfg.HasAdapter(provider) {
					status = "ready"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", provider, formatList(a.cfg.Catalog.Providers[provider]), status)
			}
			fmt.Fprintln(w)

			fmt.Fprintln(w, "SHORT NAME\tMODEL\tPROVIDER")
			names := a.cfg.Catalog.ShortNames()
			keys := make([]string, 0, len(names))
			for name := range names {
				keys = append(keys, name)
			}
			sort.Strings(keys)
			for _, name := range keys {
				model := names[name]
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, model, a.cfg.Catalog.ProviderFor(model))
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&validateFlag, "validate", false, "check that every configured engine is served by a provider")
	cmd.Flags().StringVar(&catalogFlag, "catalog", "", "extra catalog file merged over the configured catalog")
	return cmd
}

func validateEngines(out, errOut io.Writer, cfg *config.Config) error {
	errs := cfg.ValidateEngines()
	if len(errs) == 0 {
		fmt.Fprintln(out, "All engines are served by a known provider.")
		return nil
	}

	fmt.Fprintf(errOut, "Found %d validation errors:\n", len(errs))
	for _, err := range errs {
		fmt.Fprintf(errOut, "  - %s\n", err)
	}
	return fmt.Errorf("validation failed")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
