package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/mosaic/internal/core/config"
	"github.com/colonyops/mosaic/pkg/iojson"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "mosaic config validate [options]",
				Description: "Validates the configuration file, checking the server url, the player template, key bindings and file paths.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

type validationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type validationReport struct {
	Valid    bool                       `json:"valid"`
	Errors   []validationError          `json:"errors,omitempty"`
	Warnings []config.ValidationWarning `json:"warnings,omitempty"`
}

func (cmd *ConfigValidateCmd) run(_ context.Context, c *cli.Command) error {
	cfg := cmd.flags.config()

	report := validationReport{
		Errors:   validationErrors(cfg.ValidateDeep(cmd.flags.ConfigPath)),
		Warnings: cfg.Warnings(),
	}
	report.Valid = len(report.Errors) == 0

	out := c.Root().Writer
	if cmd.format == "json" {
		if err := iojson.Write(out, report); err != nil {
			return err
		}
	} else {
		for _, w := range report.Warnings {
			_, _ = fmt.Fprintf(out, "warning  %s: %s\n", w.Category, w.Message)
			if w.Item != "" {
				_, _ = fmt.Fprintf(out, "  Item: %s\n", w.Item)
			}
		}
		for _, e := range report.Errors {
			if e.Field != "" {
				_, _ = fmt.Fprintf(out, "error    %s: %s\n", e.Field, e.Message)
				continue
			}
			_, _ = fmt.Fprintf(out, "error    %s\n", e.Message)
		}
		if report.Valid {
			_, _ = fmt.Fprintln(out, "Configuration is valid")
		}
	}

	if !report.Valid {
		return cli.Exit(fmt.Sprintf("%d error(s) found", len(report.Errors)), 1)
	}
	return nil
}

// validationErrors flattens criterio field errors into report rows.
func validationErrors(err error) []validationError {
	if err == nil {
		return nil
	}

	var fields criterio.FieldErrors
	if !errors.As(err, &fields) {
		return []validationError{{Message: err.Error()}}
	}

	out := make([]validationError, 0, len(fields))
	for _, fe := range fields {
		out = append(out, validationError{Field: fe.Field, Message: fe.Err.Error()})
	}
	return out
}
