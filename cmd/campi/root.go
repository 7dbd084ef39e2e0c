package main

import (
	"fmt"
	"strings"

	"github.com/jzelinskie/cobrautil/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "campi"

func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "campi",
		Short:         "Serve camera stills over TCP from a fixed pool of workers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "path to a yaml, json or toml config file")

	root.AddCommand(NewRunCommand())
	root.AddCommand(NewVersionCommand())

	return root
}

// configFilePreRunE fills every flag the user did not set on the command line
// from the config file. Keys may be flat ("server-address") or nested
// ("server: {address: ...}").
func configFilePreRunE(cmd *cobra.Command, _ []string) error {
	path, err := cmd.Flags().GetString("config")
	if err != nil || path == "" {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var setErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed || setErr != nil {
			return
		}
		for _, key := range []string{f.Name, strings.Replace(f.Name, "-", ".", 1)} {
			if !v.IsSet(key) {
				continue
			}
			if err := cmd.Flags().Set(f.Name, flagValue(v.Get(key))); err != nil {
				setErr = fmt.Errorf("invalid value for %s in %s: %w", key, path, err)
			}
			return
		}
	})
	return setErr
}

func flagValue(v any) string {
	if list, ok := v.([]any); ok {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(v)
}

// preRunE resolves flag values: command line, then CAMPI_* environment
// variables, then the config file.
func preRunE() cobrautil.CobraRunFunc {
	return cobrautil.CommandStack(
		cobrautil.SyncViperPreRunE(envPrefix),
		configFilePreRunE,
	)
}
