package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/menukit/internal/codec"
	"github.com/roach88/menukit/internal/ir"
	"github.com/roach88/menukit/internal/state"
)

// BlobOptions holds flags shared by encode and decode.
type BlobOptions struct {
	*RootOptions
	Version uint64
}

// BlobResult describes an encoded state blob.
type BlobResult struct {
	Types  []string   `json:"types"`
	Values []ir.Value `json:"values"`
	Blob   string     `json:"blob"`
	Length int        `json:"length"`
	Digest string     `json:"digest"`

	// ValuesDigest covers the decoded values only, so the same state under
	// another schema version keeps it.
	ValuesDigest string `json:"values_digest"`
}

func newBlobResult(types []codec.Type, values []ir.Value, blob string) (BlobResult, error) {
	vd, err := ir.ValuesDigest(values)
	if err != nil {
		return BlobResult{}, err
	}
	return BlobResult{
		Types:        codec.TypeNames(types),
		Values:       values,
		Blob:         blob,
		Length:       len(blob),
		Digest:       ir.BlobDigest(blob),
		ValuesDigest: vd,
	}, nil
}

// Text prints the blob, then each slot when verbose.
func (r BlobResult) Text(w io.Writer, verbose bool) {
	fmt.Fprintln(w, r.Blob)
	if !verbose {
		return
	}
	fmt.Fprintf(w, "  length: %d\n", r.Length)
	fmt.Fprintf(w, "  digest: %s\n", r.Digest)
	fmt.Fprintf(w, "  values: %s\n", r.ValuesDigest)
	for i, v := range r.Values {
		fmt.Fprintf(w, "  [%d] %s = %s\n", i, r.Types[i], ir.Format(v))
	}
}

// NewEncodeCommand creates the encode command.
func NewEncodeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BlobOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "encode <types> <values>",
		Short: "Encode state values into a blob",
		Long: `Encode a JSON array of values as the state blob a menu with the
given slot types would carry in its identifiers.

Examples:
  menukit encode "int" "[1]"
  menukit encode "int, nullable<string>, enum<light|dark>" '[3, null, "dark"]'
  menukit encode "list<int>" "[[1,2,3]]" --version 2`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().Uint64Var(&opts.Version, "version", 0, "schema version written into the blob header")

	return cmd
}

func runEncode(opts *BlobOptions, typeList, valuesJSON string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	types, err := codec.ParseTypeList(typeList)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeBadArgument, "invalid types", err)
	}
	raw, err := ir.UnmarshalValue([]byte(valuesJSON))
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeBadArgument, "values must be a JSON array", err)
	}
	values, ok := raw.(ir.Array)
	if !ok {
		return formatter.Fail(ExitCommandError, ErrCodeBadArgument, "values must be a JSON array", nil)
	}
	if len(values) != len(types) {
		return formatter.Fail(ExitCommandError, ErrCodeBadArgument,
			fmt.Sprintf("%d values for %d types", len(values), len(types)), nil)
	}

	schema := state.Schema{Version: opts.Version}
	for i, t := range types {
		if _, err := schema.Push(state.Slot{Type: t, Initial: values[i]}); err != nil {
			return formatter.Fail(ExitFailure, ErrCodeEncodeFailed, fmt.Sprintf("value %d does not fit %s", i, t), err)
		}
	}
	vec, err := state.NewVector(schema)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeEncodeFailed, "encoding failed", err)
	}
	blob, err := vec.Encode()
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeEncodeFailed, "encoding failed", err)
	}

	result, err := newBlobResult(types, values, blob)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeEncodeFailed, "encoding failed", err)
	}
	return formatter.Success(result)
}

// NewDecodeCommand creates the decode command.
func NewDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BlobOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "decode <types> <blob>",
		Short: "Decode a state blob",
		Long: `Decode a state blob against the given slot types.

A blob written under another schema version or slot layout is rejected.

Examples:
  menukit decode "int" AAUC
  menukit decode "int" AAUC --format json -v`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().Uint64Var(&opts.Version, "version", 0, "schema version the blob must carry")

	return cmd
}

func runDecode(opts *BlobOptions, typeList, blob string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	types, err := codec.ParseTypeList(typeList)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeBadArgument, "invalid types", err)
	}

	// Decoding never reads initial values, so the slots carry types only.
	schema := state.Schema{Version: opts.Version}
	for _, t := range types {
		schema.Slots = append(schema.Slots, state.Slot{Type: t})
	}
	vec, err := state.DecodeVector(schema, blob)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeDecodeFailed, "blob does not decode", err)
	}
	values, err := vec.Values()
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeDecodeFailed, "blob does not decode", err)
	}

	result, err := newBlobResult(types, values, blob)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeDecodeFailed, "blob does not decode", err)
	}
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	w := cmd.OutOrStdout()
	for i, v := range values {
		fmt.Fprintf(w, "[%d] %s = %s\n", i, result.Types[i], ir.Format(v))
	}
	if opts.Verbose {
		fmt.Fprintf(w, "digest: %s\n", result.Digest)
		fmt.Fprintf(w, "values: %s\n", result.ValuesDigest)
	}
	return nil
}
