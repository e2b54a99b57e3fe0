package main

import (
	"github.com/spf13/cobra"

	"github.com/vango-dev/appstore/pkg/render"
	"github.com/vango-dev/appstore/pkg/view"
)

func getCmd(flags *globalFlags) *cobra.Command {
	var (
		cf     = &clientFlags{}
		pretty bool
	)

	cmd := &cobra.Command{
		Use:   "get <model> <id>",
		Short: "Fetch one record and render it as HTML",
		Long: `Fetch one record through a store, mount a view of it and print
the rendered HTML.

Examples:
  appstore get users 1
  appstore get users 1 --pretty=false`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, flags, cf, args[0], args[1], pretty)
		},
	}
	cf.register(cmd)
	cmd.Flags().BoolVar(&pretty, "pretty", true, "Indent the rendered HTML")

	return cmd
}

func runGet(cmd *cobra.Command, flags *globalFlags, cf *clientFlags, model, id string, pretty bool) error {
	cfg, err := clientConfig(flags, cf, model)
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), logLevel(flags, cfg))
	renderer := render.NewRenderer(render.RendererConfig{Pretty: pretty, Indent: "  "})

	st, err := newStore(cfg, logger, nil, renderer)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	if err := st.Fetch(ctx, model, []string{id}); err != nil {
		return err
	}

	mc, _ := cfg.Model(model)
	return st.ResetData(ctx, nil, recordView(model, id, mc.IDAttribute), view.NewWriterTarget(cmd.OutOrStdout()))
}
