// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the bibrename CLI.
// bibrename renames the files attached to bibliography entries after a
// naming pattern and keeps the entries' attachment links in step.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/bibrename/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// app carries state shared by the subcommands of one invocation.
type app struct {
	v *viper.Viper
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	return a.rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bibrename",
		Short: "Rename attached files after bibliography metadata",
		Long: `bibrename renames the files attached to bibliography entries according to
a file name pattern such as "[auth:lower][year]" and rewrites the entries'
attachment links to match.

Files are never overwritten. Every run that changes links is journaled so
the link text can be restored with "bibrename undo"; undo does not move
files back.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./bibrename.yaml or ~/.config/bibrename/bibrename.yaml)")
	pf.String("library", "", "path of the YAML library file")
	pf.String("history", "", "path of the change journal (default: <library dir>/.bibrename/history.db)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: auto, text, json")

	a.bindFlags(pf, map[string]string{
		"library":    "library",
		"history":    "history",
		"log.level":  "log-level",
		"log.format": "log-format",
	})

	rootCmd.AddCommand(
		newRenameCmd(a),
		newHistoryCmd(a),
		newUndoCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// bindFlags binds viper keys to flag names so flags override env and file.
func (a *app) bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := a.v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", name, err))
		}
	}
}

func (a *app) initConfig(cmd *cobra.Command) error {
	v := a.v
	v.SetDefault("pattern", types.DefaultPattern)
	v.SetDefault("use_library_dir", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", string(types.LogFormatAuto))

	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("bibrename")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "bibrename"))
		}
	}

	v.SetEnvPrefix("BIBRENAME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

// config decodes the merged flag, env, and file settings.
func (a *app) config() (types.Config, error) {
	var cfg types.Config
	if err := a.v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
