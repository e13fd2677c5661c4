package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/benithors/regbridge/internal/domain"
)

type outputFormat int

const (
	formatTable outputFormat = iota
	formatNDJSON
	formatJSON
	formatPlain
)

func resolveFormat(flagVal string, stdout *os.File) outputFormat {
	switch strings.ToLower(strings.TrimSpace(flagVal)) {
	case "table":
		return formatTable
	case "ndjson":
		return formatNDJSON
	case "json":
		return formatJSON
	case "plain":
		return formatPlain
	case "auto", "":
	default:
		// Unknown format: fall back to auto.
	}

	if term.IsTerminal(int(stdout.Fd())) {
		return formatTable
	}
	return formatNDJSON
}

// syncRow is one domain's Sync outcome as printed by the sync command.
type syncRow struct {
	Domain          string `json:"domain"`
	ExpiryDate      string `json:"expirydate,omitempty"`
	Active          *bool  `json:"active,omitempty"`
	Expired         *bool  `json:"expired,omitempty"`
	TransferredAway *bool  `json:"transferredAway,omitempty"`
	Error           string `json:"error,omitempty"`
}

func writeSyncRows(w io.Writer, format outputFormat, rows []syncRow) error {
	switch format {
	case formatNDJSON:
		enc := json.NewEncoder(w)
		for _, r := range rows {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	case formatJSON:
		return json.NewEncoder(w).Encode(rows)
	case formatPlain:
		for _, r := range rows {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				r.Domain, r.ExpiryDate, yesNo(r.Active), yesNo(r.Expired), yesNo(r.TransferredAway), r.Error); err != nil {
				return err
			}
		}
		return nil
	case formatTable:
		fallthrough
	default:
		tw := domain.NewTabWriter(w)
		fmt.Fprintln(tw, "DOMAIN\tEXPIRES\tACTIVE\tEXPIRED\tTRANSFERRED\tERROR")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				r.Domain, r.ExpiryDate, yesNo(r.Active), yesNo(r.Expired), yesNo(r.TransferredAway), r.Error)
		}
		return tw.Flush()
	}
}

// writeCallResult prints a host result. Table output is indented JSON since
// results are free-form maps.
func writeCallResult(w io.Writer, format outputFormat, v any) error {
	enc := json.NewEncoder(w)
	if format == formatTable {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func yesNo(b *bool) string {
	if b == nil {
		return ""
	}
	if *b {
		return "yes"
	}
	return "no"
}
