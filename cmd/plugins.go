package cmd

import (
	"fmt"

	"github.com/ortelius/griffon/plugins"
	"github.com/ortelius/griffon/util"
	"github.com/spf13/cobra"
)

// pluginInfo is one row of the plugins list
type pluginInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
}

// pluginsCmd groups the plugin commands
var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "List and run built-in plugins",
}

// pluginsListCmd represents the plugins list command
var pluginsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the built-in plugins and whether they are enabled",
	Args:  cobra.NoArgs,
	RunE:  runPluginsList,
}

// pluginsRunCmd represents the plugins run command
var pluginsRunCmd = &cobra.Command{
	Use:   "run [name] [args...]",
	Short: "Run an enabled plugin",
	Long: `Runs a built-in plugin. Plugins must be enabled through the plugins
setting in the config file or GRIFFON_PLUGINS.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlugin,
}

func init() {
	rootCmd.AddCommand(pluginsCmd)
	pluginsCmd.AddCommand(pluginsListCmd)
	pluginsCmd.AddCommand(pluginsRunCmd)
}

func runPluginsList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	registry := plugins.Builtins(cfg.IncidentURL)
	if _, err := registry.Enabled(cfg.Plugins); err != nil {
		return err
	}

	infos := make([]pluginInfo, 0, len(registry.Names()))
	for _, name := range registry.Names() {
		p, err := registry.Get(name)
		if err != nil {
			return err
		}
		infos = append(infos, pluginInfo{
			Name:        p.Name(),
			Description: p.Description(),
			Enabled:     util.Contains(cfg.Plugins, name),
		})
	}
	return writeResult(cmd, cfg, infos)
}

func runPlugin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	p, err := plugins.Builtins(cfg.IncidentURL).Lookup(args[0], cfg.Plugins)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd.Context(), cfg.Timeout)
	defer cancel()

	result, err := p.Run(ctx, args[1:])
	if err != nil {
		return fmt.Errorf("%s: %w", p.Name(), err)
	}
	return writeResult(cmd, cfg, result)
}
