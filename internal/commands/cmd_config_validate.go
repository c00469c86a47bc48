package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/remindbot/internal/core/styles"
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
				UsageText:   "remindbot config validate [options]",
				Description: "Validates the configuration file, checking message templates, the proxy URL, and file paths.",
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

// ValidationIssue is one problem reported by config validate.
type ValidationIssue struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (cmd *ConfigValidateCmd) run(ctx context.Context, c *cli.Command) error {
	issues := validationIssues(cmd.flags.Config.ValidateDeep(cmd.flags.ConfigPath))

	var err error
	if cmd.format == "json" {
		err = outputValidationJSON(c.Root().Writer, issues)
	} else {
		err = outputValidationText(c.Root().Writer, cmd.flags.ConfigPath, issues)
	}
	if err != nil {
		return err
	}

	if len(issues) > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

// validationIssues flattens a validation error into per-field issues.
func validationIssues(err error) []ValidationIssue {
	if err == nil {
		return nil
	}

	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationIssue{{Message: err.Error()}}
	}

	issues := make([]ValidationIssue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, ValidationIssue{Field: fe.Field, Message: fe.Err.Error()})
	}
	return issues
}

func outputValidationJSON(w io.Writer, issues []ValidationIssue) error {
	out := struct {
		Valid  bool              `json:"valid"`
		Errors []ValidationIssue `json:"errors,omitempty"`
	}{
		Valid:  len(issues) == 0,
		Errors: issues,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func outputValidationText(w io.Writer, configPath string, issues []ValidationIssue) error {
	if len(issues) == 0 {
		_, err := fmt.Fprintf(w, "%s %s\n", styles.SuccessStyle.Render("✓"), configPath)
		return err
	}

	if _, err := fmt.Fprintf(w, "%s %s: %d error(s)\n", styles.ErrorStyle.Render("✗"), configPath, len(issues)); err != nil {
		return err
	}
	for _, is := range issues {
		field := is.Field
		if field == "" {
			field = "config"
		}
		if _, err := fmt.Fprintf(w, "  %s: %s\n", field, is.Message); err != nil {
			return err
		}
	}
	return nil
}
