package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vango-dev/appstore/internal/config"
	"github.com/vango-dev/appstore/pkg/record"
	"github.com/vango-dev/appstore/pkg/store"
)

// clientFlags are shared by the commands that talk to a record server.
type clientFlags struct {
	endpoint string
}

func (f *clientFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.endpoint, "endpoint", "e", "", "Base URL for the model, overriding the config")
}

// clientConfig loads the config, or starts from defaults when --endpoint
// is given and no config exists. The model is added when missing and its
// endpoint overridden when --endpoint is set.
func clientConfig(flags *globalFlags, cf *clientFlags, model string) (*config.Config, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		if cf.endpoint == "" || flags.configPath != "" {
			return nil, err
		}
		cfg = config.New()
	}

	for i := range cfg.Models {
		if cfg.Models[i].Name == model {
			if cf.endpoint != "" {
				cfg.Models[i].Endpoint = cf.endpoint
			}
			return cfg, nil
		}
	}
	if cf.endpoint == "" {
		return nil, fmt.Errorf("model %q is not configured; pass --endpoint", model)
	}
	cfg.Models = append(cfg.Models, config.ModelConfig{
		Name:        model,
		Endpoint:    cf.endpoint,
		IDAttribute: record.DefaultIDAttribute,
	})
	return cfg, nil
}

func fetchCmd(flags *globalFlags) *cobra.Command {
	cf := &clientFlags{}

	cmd := &cobra.Command{
		Use:   "fetch <model> <id>...",
		Short: "Fetch records and print them as JSON",
		Long: `Fetch records through a store and print the cached records as
a JSON array. Duplicate ids are requested once. Records that could
not be fetched are reported on stderr and the command fails after
printing the rest.

Examples:
  appstore fetch users 1 2 3
  appstore fetch users 1 --endpoint http://localhost:8080/records/users`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, flags, cf, args[0], args[1:])
		},
	}
	cf.register(cmd)

	return cmd
}

func runFetch(cmd *cobra.Command, flags *globalFlags, cf *clientFlags, model string, ids []string) error {
	cfg, err := clientConfig(flags, cf, model)
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), logLevel(flags, cfg))

	st, err := newStore(cfg, logger, nil, nil)
	if err != nil {
		return err
	}
	defer st.Close()

	fetchErr := st.Fetch(cmd.Context(), model, ids)
	var fe *store.FetchError
	if fetchErr != nil && !errors.As(fetchErr, &fe) {
		return fetchErr
	}

	records, err := st.GetAll(model)
	if err != nil {
		return err
	}
	if err := writeJSON(cmd.OutOrStdout(), records); err != nil {
		return err
	}
	return fetchErr
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

