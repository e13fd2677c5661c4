package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benithors/regbridge/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve host operations over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := a.cfg.Listen
			if cmd.Flags().Changed("listen") {
				addr = listen
			}

			h := server.New(server.Options{
				Dispatcher: a.dispatcher,
				Logger:     a.logger,
				Gatherer:   a.registry,
			})
			if err := server.Serve(cmd.Context(), addr, h.Router(), a.logger); err != nil {
				return runtimeErr(cmd, fmt.Errorf("serve: %w", err))
			}
			return nil
		},
	}

	cmd.SetFlagErrorFunc(usageErr)
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (default from config, 127.0.0.1:8089)")
	return cmd
}
