package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/appstore/internal/config"
	"github.com/vango-dev/appstore/internal/errors"
	"github.com/vango-dev/appstore/pkg/record"
)

func initCmd() *cobra.Command {
	var (
		format string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a starter configuration file",
		Long: `Write an appstore configuration with one "users" model served by
the built-in record server and a couple of seed records.

The file is appstore.json, or appstore.yaml with --format yaml.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			var name string
			switch format {
			case "json":
				name = config.JSONFileName
			case "yaml", "yml":
				name = config.YAMLFileName
			default:
				return errors.New(errors.CodeInvalidArgument).
					WithDetailf("unknown format %q (use json or yaml)", format)
			}

			if config.Exists(dir) && !force {
				return errors.New(errors.CodeConfig).
					WithDetail("a configuration file already exists in " + dir + " (use --force to overwrite)")
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}

			path := filepath.Join(dir, name)
			if err := starterConfig().SaveTo(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "File format: json or yaml")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration")

	return cmd
}

// starterConfig is the configuration written by init.
func starterConfig() *config.Config {
	cfg := config.New()
	cfg.Name = "appstore"
	cfg.Models = []config.ModelConfig{
		{Name: "users", Endpoint: "/records/users", IDAttribute: record.DefaultIDAttribute},
	}
	cfg.Backend.Seed = map[string][]record.Record{
		"users": {
			{"id": "1", "name": "Ada"},
			{"id": "2", "name": "Grace"},
		},
	}
	return cfg
}
