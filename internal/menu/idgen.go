package menu

import (
	"strings"

	"github.com/roach88/menukit/internal/codec"
)

// DefaultMaxIDLength is the platform's component identifier limit.
const DefaultMaxIDLength = 100

// IDGenerator hands out component identifiers for one render, each carrying
// the next slice of the state blob.
//
// Identifiers look like <menuID>:<element>:<slice>. Concatenating the slices
// of every identifier a render produced, in emission order, gives back the
// blob.
type IDGenerator struct {
	blob   string
	cursor int
	maxLen int
}

// NewIDGenerator returns a generator over blob with a per-identifier limit.
func NewIDGenerator(blob string, maxLen int) *IDGenerator {
	return &IDGenerator{blob: blob, maxLen: maxLen}
}

// Prefix returns the fixed part of an element's identifier.
func Prefix(menuID, element string) string {
	return menuID + codec.Separator + element + codec.Separator
}

// Next returns prefix followed by as much of the remaining blob as fits.
// An identifier with no slice is valid and carries no state.
func (g *IDGenerator) Next(prefix string) (string, error) {
	available := g.maxLen - len(prefix)
	if available < 0 {
		return "", &Error{
			Code:    ErrCodeIDTooLong,
			Message: "identifier prefix " + prefix + " exceeds the identifier limit",
		}
	}
	n := min(available, g.Remaining())
	slice := g.blob[g.cursor : g.cursor+n]
	g.cursor += n
	return prefix + slice, nil
}

// Remaining returns the number of blob characters not yet handed out.
func (g *IDGenerator) Remaining() int {
	return len(g.blob) - g.cursor
}

// Finish fails when part of the blob was never handed out.
func (g *IDGenerator) Finish() error {
	if r := g.Remaining(); r > 0 {
		return newError(ErrCodeCapacityExhausted, "", "", nil,
			"%d of %d state characters did not fit in the rendered components", r, len(g.blob))
	}
	return nil
}

// ParseID splits an identifier into its menu id, element name and slice.
func ParseID(id string) (menuID, element, slice string, err error) {
	parts := strings.SplitN(id, codec.Separator, 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return "", "", "", newError(ErrCodeMalformedID, "", "", nil, "identifier %q is not <menu>:<element>:<state>", id)
	}
	if strings.Contains(parts[2], codec.Separator) {
		return "", "", "", newError(ErrCodeMalformedID, "", "", nil, "identifier %q has extra separators", id)
	}
	return parts[0], parts[1], parts[2], nil
}

// JoinSlices rebuilds the blob from a message's identifiers, keeping those
// that belong to menuID, in order.
func JoinSlices(menuID string, ids []string) (string, error) {
	var b strings.Builder
	for _, id := range ids {
		m, _, slice, err := ParseID(id)
		if err != nil {
			return "", err
		}
		if m == menuID {
			b.WriteString(slice)
		}
	}
	return b.String(), nil
}
