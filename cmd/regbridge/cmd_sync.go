package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/benithors/regbridge/internal/domain"
	"github.com/benithors/regbridge/internal/host"
)

func newSyncCmd(a *app) *cobra.Command {
	var concurrency int
	var strict bool

	cmd := &cobra.Command{
		Use:   "sync [domain...]",
		Short: "Report expiry and status for domains (args and/or stdin)",
		Long: "Report expiry and status for domains given as args and/or stdin.\n" +
			"Each input must be a registered name (example.com, example.co.uk);\n" +
			"subdomains such as www.example.com are reported as errors.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputDomains, err := readDomainsFromArgsAndStdin(args, os.Stdin)
			if err != nil {
				return runtimeErr(cmd, fmt.Errorf("failed to read domains: %w", err))
			}
			if len(inputDomains) == 0 {
				return &cliError{Code: 2, ShowUsage: true, Cmd: cmd}
			}

			rows := syncDomains(cmd.Context(), a.dispatcher, max(1, concurrency), inputDomains)

			if err := writeSyncRows(os.Stdout, a.outFormat, rows); err != nil {
				return runtimeErr(cmd, fmt.Errorf("failed to write output: %w", err))
			}
			if strict {
				for _, r := range rows {
					if r.Error != "" {
						return &cliError{Code: 1}
					}
				}
			}
			return nil
		},
	}

	cmd.SetFlagErrorFunc(usageErr)
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Max concurrent registrar lookups")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero if any domain failed")

	return cmd
}

// syncDomains runs Sync for every input and returns rows in input order.
func syncDomains(ctx context.Context, d *host.Dispatcher, workers int, inputs []string) []syncRow {
	rows := make([]syncRow, len(inputs))

	jobs := make(chan int)
	var wg sync.WaitGroup

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				rows[idx] = syncOne(ctx, d, inputs[idx])
			}
		}()
	}

	for i := range inputs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return rows
}

func syncOne(ctx context.Context, d *host.Dispatcher, input string) syncRow {
	sld, tld, err := domain.Split(input)
	if err != nil {
		return syncRow{Domain: input, Error: err.Error()}
	}
	row := syncRow{Domain: sld + "." + tld}

	out, _ := d.Call(ctx, host.OpSync, host.Params{"sld": sld, "tld": tld}).(map[string]any)
	if msg, ok := out["error"].(string); ok {
		row.Error = msg
		return row
	}
	row.ExpiryDate, _ = out["expirydate"].(string)
	row.Active = boolField(out, "active")
	row.Expired = boolField(out, "expired")
	row.TransferredAway = boolField(out, "transferredAway")
	return row
}

func boolField(m map[string]any, key string) *bool {
	b, ok := m[key].(bool)
	if !ok {
		return nil
	}
	return &b
}
