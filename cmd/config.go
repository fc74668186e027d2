package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/remindly/internal/config"
	"github.com/manav03panchal/remindly/internal/output"
)

// configCmd represents the config command.
var configCmd = &cobra.Command{
	Use:     "config",
	Aliases: []string{"cfg", "settings"},
	Short:   "Show application configuration",
	Long: `Show the effective configuration and where each value came from.

Settings are read from $XDG_CONFIG_HOME/remindly/config.toml, then from
REMINDLY_* environment variables. --file overrides the reminder file.

Example config.toml:
  data_file = "~/notes/reminders.json"

  [scheduler]
  window_start = 8
  window_end = 20

  [notify]
  backend = "notify-send"
  timeout = "15s"

Examples:
  remindly config show
  remindly config get scheduler.window_start
  remindly config path`,
	RunE: runConfigShow,
}

// configShowCmd shows every configuration value.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show all configuration values",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

// configGetCmd gets configuration values.
var configGetCmd = &cobra.Command{
	Use:       "get KEY",
	Short:     "Get a configuration value",
	Args:      cobra.ExactArgs(1),
	ValidArgs: config.Keys(),
	RunE:      runConfigGet,
}

// configPathCmd prints the config file location.
var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx.Formatter.Println(configFilePath())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func configFilePath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.DefaultPath()
}

// runConfigShow handles the config show command.
func runConfigShow(cmd *cobra.Command, args []string) error {
	keys := config.Keys()

	if ctx.IsJSON() {
		values := make(map[string]map[string]string, len(keys))
		for _, key := range keys {
			values[key] = map[string]string{
				"value":  ctx.Config.Value(key),
				"source": string(ctx.Config.SourceOf(key)),
			}
		}
		return ctx.Formatter.JSON(map[string]interface{}{
			"path":   configFilePath(),
			"values": values,
		})
	}

	cli := ctx.CLIFormatter()
	cli.Title("Configuration")
	cli.Muted(configFilePath())
	cli.Println()

	items := make([]output.KeyValue, len(keys))
	for i, key := range keys {
		items[i] = output.KeyValue{
			Key:   key,
			Value: ctx.Config.Value(key),
			Note:  string(ctx.Config.SourceOf(key)),
		}
	}
	cli.PrintKeyValues(items)
	return nil
}

// runConfigGet handles the config get command.
func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	for _, k := range config.Keys() {
		if k != key {
			continue
		}
		if ctx.IsJSON() {
			return ctx.Formatter.JSON(map[string]string{
				"key":    key,
				"value":  ctx.Config.Value(key),
				"source": string(ctx.Config.SourceOf(key)),
			})
		}
		ctx.Formatter.Println(ctx.Config.Value(key))
		return nil
	}
	return fmt.Errorf("unknown config key: %s (see 'remindly config show')", key)
}
