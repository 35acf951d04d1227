package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ortelius/griffon/config"
	"github.com/ortelius/griffon/service"
	"github.com/ortelius/griffon/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// queryFlag is a query parameter exposed as a command line flag. Flag names use dashes,
// parameter names use underscores.
type queryFlag struct {
	name    string
	usage   string
	boolean bool
}

// queryCommand describes the subcommand for one aggregation query
type queryCommand struct {
	short string
	// arg names the parameter filled by the optional positional argument
	arg   string
	flags []queryFlag
}

var affectFlags = []queryFlag{
	{name: "affect-affectedness", usage: "Only affects with this affectedness"},
	{name: "affect-resolution", usage: "Only affects with this resolution"},
	{name: "affect-impact", usage: "Only affects with this impact"},
	{name: "flaw-state", usage: "Only flaws in this state"},
	{name: "flaw-resolution", usage: "Only flaws with this resolution"},
	{name: "flaw-impact", usage: "Only flaws with this impact"},
}

var queryCommands = map[string]queryCommand{
	"component-cves": {
		short: "List the CVEs affecting a component",
		arg:   "component_name",
		flags: append([]queryFlag{
			{name: "purl", usage: "Component purl or UUID"},
			{name: "component-name", usage: "Component name"},
		}, affectFlags...),
	},
	"cve-components": {
		short: "List the components named by a CVE",
		arg:   "cve_id",
		flags: []queryFlag{
			{name: "cve-id", usage: "CVE id or flaw UUID"},
			{name: "include-inactive-product-streams", usage: "Include inactive product streams", boolean: true},
		},
	},
	"cve-product-versions": {
		short: "List the product versions affected by a CVE",
		arg:   "cve_id",
		flags: []queryFlag{{name: "cve-id", usage: "CVE id or flaw UUID"}},
	},
	"component-products": {
		short: "List the products, versions, streams, variants and channels containing a component",
		arg:   "purl",
		flags: []queryFlag{
			{name: "purl", usage: "Component purl"},
			{name: "uuid", usage: "Component UUID"},
		},
	},
	"component-dependents": {
		short: "Find the products and components containing a component",
		arg:   "component_name",
		flags: []queryFlag{
			{name: "component-name", usage: "Component name"},
			{name: "purl", usage: "Component purl"},
			{name: "namespace", usage: "Restrict to a component namespace (REDHAT, UPSTREAM)"},
			{name: "strict-name-search", usage: "Match the name exactly instead of as a pattern", boolean: true},
			{name: "search-latest", usage: "Search latest root components in each product stream (default)", boolean: true},
			{name: "search-related-url", usage: "Search components whose related url mentions the name", boolean: true},
			{name: "search-all", usage: "Search all components", boolean: true},
			{name: "search-all-roots", usage: "Search all root components", boolean: true},
			{name: "search-upstreams", usage: "Search upstream components", boolean: true},
			{name: "search-community", usage: "Also search the community registry", boolean: true},
			{name: "no-community", usage: "Never search the community registry", boolean: true},
			{name: "filter-rh-naming", usage: "Keep only names following known packaging conventions", boolean: true},
			{name: "dedupe", usage: "Drop repeated purls across search modes", boolean: true},
			{name: "include-inactive-product-streams", usage: "Keep inactive product streams", boolean: true},
			{name: "include-product-streams-excluded-components", usage: "Keep product streams that exclude the component", boolean: true},
		},
	},
	"product-summary": {
		short: "Show a product stream",
		arg:   "name",
		flags: []queryFlag{
			{name: "ofuri", usage: "Product stream ofuri"},
			{name: "name", usage: "Product stream name"},
		},
	},
	"product-manifest": {
		short: "List the root components shipped in a product stream",
		arg:   "ofuri",
		flags: []queryFlag{{name: "ofuri", usage: "Product stream ofuri"}},
	},
}

// serviceCmd groups the aggregation queries
var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Run a query against the component registry and incident database",
}

func init() {
	rootCmd.AddCommand(serviceCmd)

	for _, name := range service.Names() {
		serviceCmd.AddCommand(newQueryCommand(name, queryCommands[name]))
	}
}

func newQueryCommand(name string, qc queryCommand) *cobra.Command {
	use := name
	if qc.arg != "" {
		use += " [" + strings.ReplaceAll(qc.arg, "_", "-") + "]"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: qc.short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, name, qc, args)
		},
	}
	for _, f := range qc.flags {
		if f.boolean {
			cmd.Flags().Bool(f.name, false, f.usage)
		} else {
			cmd.Flags().String(f.name, "", f.usage)
		}
	}
	return cmd
}

// paramsFromFlags builds a fresh parameter set from the flags given on this invocation
func paramsFromFlags(cmd *cobra.Command, qc queryCommand, args []string) (service.Params, error) {
	params := service.Params{}
	for _, f := range qc.flags {
		if !cmd.Flags().Changed(f.name) {
			continue
		}
		key := strings.ReplaceAll(f.name, "-", "_")
		if f.boolean {
			v, err := cmd.Flags().GetBool(f.name)
			if err != nil {
				return nil, err
			}
			params[key] = v
			continue
		}
		v, err := cmd.Flags().GetString(f.name)
		if err != nil {
			return nil, err
		}
		params[key] = v
	}

	if len(args) == 1 && qc.arg != "" {
		if _, ok := params[qc.arg]; ok {
			return nil, fmt.Errorf("%s given both as argument and flag: %w", qc.arg, service.ErrInvalidParams)
		}
		params[qc.arg] = args[0]
	}
	return params, nil
}

// openSessions connects to every configured service. Unconfigured services stay nil and are reported
// by the queries that need them.
func openSessions(cfg *config.Config, logger *zap.Logger) (service.Deps, error) {
	deps := service.Deps{Logger: logger, Workers: cfg.Workers}

	c, err := session.NewRegistrySession(cfg, logger)
	switch {
	case err == nil:
		deps.Registry = session.NewRegistry(c)
	case !errors.Is(err, session.ErrNotConfigured):
		return deps, err
	}

	c, err = session.NewCommunitySession(cfg, logger)
	switch {
	case err == nil:
		deps.Community = session.NewRegistry(c)
	case !errors.Is(err, session.ErrNotConfigured):
		return deps, err
	}

	c, err = session.NewIncidentSession(cfg, logger)
	switch {
	case err == nil:
		deps.Incidents = session.NewIncidents(c)
	case !errors.Is(err, session.ErrNotConfigured):
		return deps, err
	}
	return deps, nil
}

func runQuery(cmd *cobra.Command, name string, qc queryCommand, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := session.InitLogger(cfg.LogLevel)
	defer logger.Sync()

	params, err := paramsFromFlags(cmd, qc, args)
	if err != nil {
		return err
	}
	deps, err := openSessions(cfg, logger)
	if err != nil {
		return err
	}
	q, err := service.Registry[name](deps, params)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd.Context(), cfg.Timeout)
	defer cancel()

	logger.Debug("running query", zap.String("query", name), zap.Any("params", params))
	stop := startProgress("running " + name)
	result, err := q.Execute(ctx)
	stop()
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return writeResult(cmd, cfg, result)
}
