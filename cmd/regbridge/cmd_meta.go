package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/benithors/regbridge/internal/host"
)

func newMetaCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meta",
		Short: "Print module metadata and configuration fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.outFormat == formatPlain {
				for _, f := range host.ConfigFields() {
					fmt.Fprintf(os.Stdout, "%s\t%s\t%s\n", f.Key, f.Type, f.FriendlyName)
				}
				return nil
			}
			enc := json.NewEncoder(os.Stdout)
			if a.outFormat == formatTable {
				enc.SetIndent("", "  ")
			}
			if err := enc.Encode(map[string]any{
				"metadata": host.MetaData(),
				"config":   host.ConfigArray(),
			}); err != nil {
				return runtimeErr(cmd, fmt.Errorf("failed to write output: %w", err))
			}
			return nil
		},
	}
	cmd.SetFlagErrorFunc(usageErr)
	return cmd
}
