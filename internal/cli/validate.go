package cli

import (
	"errors"
	"fmt"
	"io"

	"cuelang.org/go/cue/token"
	"github.com/spf13/cobra"

	"github.com/roach88/menukit/internal/config"
	"github.com/roach88/menukit/internal/demo"
	"github.com/roach88/menukit/internal/menu"
)

// ValidationIssue is one problem found in a config file.
type ValidationIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool              `json:"valid"`
	File        string            `json:"file"`
	MaxIDLength int               `json:"max_id_length,omitempty"`
	Overrides   int               `json:"overrides,omitempty"`
	Errors      []ValidationIssue `json:"errors,omitempty"`
}

// Text prints a verdict line followed by any issues.
func (r ValidationResult) Text(w io.Writer, verbose bool) {
	if r.Valid {
		fmt.Fprintf(w, "✓ %s is valid\n", r.File)
		if verbose {
			fmt.Fprintf(w, "  identifier limit: %d\n", r.MaxIDLength)
			fmt.Fprintf(w, "  menu overrides:   %d\n", r.Overrides)
		}
		return
	}
	fmt.Fprintf(w, "✗ %s has %d error(s)\n", r.File, len(r.Errors))
	for _, e := range r.Errors {
		if e.Line > 0 {
			fmt.Fprintf(w, "  line %d:%d [%s] %s\n", e.Line, e.Column, e.Code, e.Message)
			continue
		}
		fmt.Fprintf(w, "  [%s] %s\n", e.Code, e.Message)
	}
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a config file",
		Long: `Validate a CUE config file against the menukit schema, then check
that its menu overrides apply to the registered menus.

Examples:
  menukit validate ./menukit.cue
  menukit validate ./menukit.cue --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	result := ValidationResult{File: path}

	cfg, err := config.Load(path)
	if err != nil {
		result.Errors = append(result.Errors, loadIssue(err))
		return outputValidation(formatter, result)
	}
	formatter.VerboseLog("loaded %s", path)

	if _, err := menu.NewRegistry(demo.Menus(), cfg.RegistryOptions()...); err != nil {
		result.Errors = append(result.Errors, ValidationIssue{Code: ErrCodeInvalidConf, Message: err.Error()})
		return outputValidation(formatter, result)
	}

	result.Valid = true
	result.MaxIDLength = cfg.MaxIDLength
	result.Overrides = len(cfg.Menus)
	return outputValidation(formatter, result)
}

// loadIssue converts a config load error, keeping its CUE position.
func loadIssue(err error) ValidationIssue {
	issue := ValidationIssue{Code: ErrCodeInvalidConf, Message: err.Error()}
	var le *config.LoadError
	if errors.As(err, &le) {
		issue.Message = le.Message
		issue.Line, issue.Column = position(le.Pos)
	}
	return issue
}

func position(pos token.Pos) (line, column int) {
	if !pos.IsValid() {
		return 0, 0
	}
	return pos.Line(), pos.Column()
}

func outputValidation(formatter *OutputFormatter, result ValidationResult) error {
	if result.Valid {
		return formatter.Success(result)
	}
	message := fmt.Sprintf("%s is invalid", result.File)
	if err := formatter.Partial(result, ErrCodeInvalidConf, message); err != nil {
		return err
	}
	return NewExitError(ExitFailure, message)
}
