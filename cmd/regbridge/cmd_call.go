package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benithors/regbridge/internal/host"
)

func newCallCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call <operation> [key=value...]",
		Short: "Run one host operation and print its result as JSON",
		Long: "Run one host operation (e.g. GetNameservers sld=example tld=com).\n" +
			"Parameters may also be piped in as a JSON object; key=value arguments win.\n" +
			"Exits 1 when the result carries an error.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return &cliError{Code: 2, ShowUsage: true, Cmd: cmd}
			}
			op := host.Operation(args[0])
			if !op.Known() {
				return usageErr(cmd, fmt.Errorf("unknown operation %q (use one of: %s)", args[0], operationList()))
			}

			params, err := readParams(args[1:], os.Stdin)
			if err != nil {
				return usageErr(cmd, err)
			}

			out := a.dispatcher.Call(cmd.Context(), op, params)
			if err := writeCallResult(os.Stdout, a.outFormat, out); err != nil {
				return runtimeErr(cmd, fmt.Errorf("failed to write output: %w", err))
			}
			if resultFailed(out) {
				return &cliError{Code: 1}
			}
			return nil
		},
	}
	cmd.SetFlagErrorFunc(usageErr)
	return cmd
}

func resultFailed(out any) bool {
	m, ok := out.(map[string]any)
	if !ok {
		return false
	}
	_, failed := m["error"]
	return failed
}

func operationList() string {
	ops := host.Operations()
	names := make([]string, 0, len(ops))
	for _, op := range ops {
		names = append(names, string(op))
	}
	return strings.Join(names, ", ")
}
