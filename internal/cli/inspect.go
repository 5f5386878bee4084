package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/menukit/internal/codec"
	"github.com/roach88/menukit/internal/ir"
	"github.com/roach88/menukit/internal/menu"
)

// InspectResult is the state decoded from a message's identifiers.
type InspectResult struct {
	Menu   string     `json:"menu"`
	Schema string     `json:"schema"`
	Blob   string     `json:"blob"`
	Digest string     `json:"digest"`
	Types  []string   `json:"types"`
	Values []ir.Value `json:"values"`

	ValuesDigest string `json:"values_digest"`
}

// Text prints the menu, its layout and each slot.
func (r InspectResult) Text(w io.Writer, verbose bool) {
	fmt.Fprintf(w, "menu:   %s\n", r.Menu)
	fmt.Fprintf(w, "schema: %s\n", r.Schema)
	if verbose {
		fmt.Fprintf(w, "blob:   %s\n", r.Blob)
		fmt.Fprintf(w, "digest: %s\n", r.Digest)
		fmt.Fprintf(w, "values: %s\n", r.ValuesDigest)
	}
	for i, v := range r.Values {
		fmt.Fprintf(w, "  [%d] %s = %s\n", i, r.Types[i], ir.Format(v))
	}
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <id>...",
		Short: "Decode the state carried by a message's identifiers",
		Long: `Decode the state a rendered message carries.

Pass every custom ID of the message in display order; identifiers of
other menus (or link buttons) are skipped.

Examples:
  menukit inspect "counter:dec:AAUC" "counter:inc:" "counter:reset:"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runInspect(opts *RootOptions, ids []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	reg, err := opts.Registry()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidConf, "failed to register menus", err)
	}
	d := menu.NewDispatcher(reg, menu.WithLogger(opts.Logger(cmd.ErrOrStderr())))

	insp, err := d.Inspect(ids)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeDecodeFailed, "identifiers do not decode", err)
	}

	vd, err := ir.ValuesDigest(insp.Values)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeDecodeFailed, "identifiers do not decode", err)
	}
	return formatter.Success(InspectResult{
		Menu:         insp.Menu,
		Schema:       insp.Schema.Describe(),
		Blob:         insp.Blob,
		Digest:       ir.BlobDigest(insp.Blob),
		Types:        codec.TypeNames(insp.Schema.Types()),
		Values:       insp.Values,
		ValuesDigest: vd,
	})
}

// MenuInfo describes one registered menu.
type MenuInfo struct {
	Path        string `json:"path"`
	Description string `json:"description"`
}

// MenusResult lists the registered menus.
type MenusResult struct {
	MaxIDLength int        `json:"max_id_length"`
	Menus       []MenuInfo `json:"menus"`
}

// Text prints one menu per line.
func (r MenusResult) Text(w io.Writer, verbose bool) {
	for _, m := range r.Menus {
		fmt.Fprintln(w, m.Description)
	}
	if verbose {
		fmt.Fprintf(w, "identifier limit: %d\n", r.MaxIDLength)
	}
}

// NewMenusCommand creates the menus command.
func NewMenusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "menus",
		Short: "List the registered menus and their state layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			reg, err := rootOpts.Registry()
			if err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeInvalidConf, "failed to register menus", err)
			}

			result := MenusResult{MaxIDLength: reg.MaxIDLength(), Menus: []MenuInfo{}}
			for _, path := range reg.Paths() {
				desc, err := reg.Describe(path)
				if err != nil {
					return formatter.Fail(ExitFailure, ErrCodeGeneric, "failed to describe "+path, err)
				}
				result.Menus = append(result.Menus, MenuInfo{Path: path, Description: desc})
			}
			return formatter.Success(result)
		},
	}
}
