package main

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/benithors/regbridge/internal/domain"
	"github.com/benithors/regbridge/internal/host"
)

func readDomainsFromArgsAndStdin(args []string, stdin *os.File) ([]string, error) {
	var out []string

	for _, a := range args {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		out = append(out, a)
	}

	if term.IsTerminal(int(stdin.Fd())) {
		// Nothing piped in.
		return out, nil
	}

	stdinDomains, err := domain.ReadLines(stdin)
	if err != nil {
		return nil, err
	}
	out = append(out, stdinDomains...)
	return out, nil
}

// readParams builds call parameters from a JSON object on stdin (when piped)
// overlaid with key=value arguments.
func readParams(args []string, stdin *os.File) (host.Params, error) {
	p := host.Params{}

	if !term.IsTerminal(int(stdin.Fd())) {
		fromStdin, err := decodeParams(stdin)
		if err != nil {
			return nil, err
		}
		p = p.Merge(fromStdin)
	}

	fromArgs, err := host.ParseAssignments(args)
	if err != nil {
		return nil, err
	}
	return p.Merge(fromArgs), nil
}

func decodeParams(r io.Reader) (host.Params, error) {
	data, err := io.ReadAll(io.LimitReader(r, 1<<20))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read stdin")
	}
	if strings.TrimSpace(string(data)) == "" {
		return host.Params{}, nil
	}
	var p host.Params
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(err, "stdin must hold a JSON object of parameters")
	}
	return p, nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
