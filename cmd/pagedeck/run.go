package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/pagedeck/internal/plugin"
	"github.com/dshills/pagedeck/internal/session"
)

func newRunCommand(cfgPath *string) *cobra.Command {
	var (
		paramFlags  []string
		paramsJSON  string
		timeout     time.Duration
		showScripts bool
	)

	cmd := &cobra.Command{
		Use:   "run <plugin-id>",
		Short: "Dry-run a plugin against a recording session",
		Long: `Run executes a plugin inside its sandbox against a recording session:
page operations are captured instead of hitting a live browser page.
The pagedeck shell runs the same plugins against real sessions.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(*cfgPath)
			if err != nil {
				return err
			}
			mgr, err := newManager(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			id := args[0]
			p, ok := mgr.Get(id)
			if !ok {
				return fmt.Errorf("plugin not found: %s", id)
			}

			params, err := collectParameters(p.Descriptor, paramFlags, paramsJSON)
			if err != nil {
				return err
			}

			if timeout <= 0 {
				timeout = cfg.Plugins.ExecutionTimeout
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			rec := session.NewRecorder()
			res := mgr.Execute(ctx, id, plugin.ExecutionContext{
				Session:    rec,
				Parameters: params,
			})

			out, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			if showScripts {
				for _, script := range rec.Evaluated() {
					fmt.Fprintf(cmd.OutOrStdout(), "-- evaluated --\n%s\n", script)
				}
			}
			if !res.Success {
				return fmt.Errorf("execution failed: %s", res.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&paramFlags, "param", nil,
		"parameter as key=value (repeatable, string-typed)")
	cmd.Flags().StringVar(&paramsJSON, "params", "",
		"parameters as a JSON object (typed, merged over --param)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0,
		"execution deadline (default from config)")
	cmd.Flags().BoolVar(&showScripts, "show-scripts", false,
		"print the scripts the plugin evaluated against the session")
	return cmd
}

// collectParameters merges declared defaults, --param pairs and --params
// JSON, then applies the descriptor's advisory parameter validation.
func collectParameters(d *plugin.Descriptor, pairs []string, raw string) (map[string]any, error) {
	params := d.ParameterDefaults()

	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --param %q, expected key=value", pair)
		}
		params[key] = value
	}

	if raw != "" {
		var typed map[string]any
		if err := json.Unmarshal([]byte(raw), &typed); err != nil {
			return nil, fmt.Errorf("invalid --params JSON: %w", err)
		}
		for k, v := range typed {
			params[k] = v
		}
	}

	if err := d.ValidateParameters(params); err != nil {
		return nil, err
	}
	return params, nil
}
