package menu

// Message is a rendered message menu: content plus rows of components.
type Message struct {
	Content string
	Embeds  []Embed
	Rows    []Row
}

// Embed is a block of rich content. Formatting is the caller's business.
type Embed struct {
	Title       string
	Description string
	Color       int
	Footer      string
}

// Row is one line of components.
type Row struct {
	Components []Component
}

// ComponentKind distinguishes the interactive components a menu can emit.
type ComponentKind int

const (
	KindButton ComponentKind = iota
	KindSelect
	KindLink
)

func (k ComponentKind) String() string {
	switch k {
	case KindButton:
		return "button"
	case KindSelect:
		return "select"
	case KindLink:
		return "link"
	default:
		return "unknown"
	}
}

// ButtonStyle is the visual weight of a button.
type ButtonStyle int

const (
	StylePrimary ButtonStyle = iota + 1
	StyleSecondary
	StyleSuccess
	StyleDanger
)

// Component is one button, select or link. Links carry a URL and no ID;
// everything else carries an identifier produced by IDGenerator.
type Component struct {
	Kind ComponentKind

	// Name is the element name the identifier routes to.
	Name string

	ID       string
	Label    string
	Style    ButtonStyle
	URL      string
	Disabled bool

	Placeholder string
	Options     []SelectOption
	MinValues   int
	MaxValues   int
}

// SelectOption is one entry of a select component.
type SelectOption struct {
	Label       string
	Value       string
	Description string
	Default     bool
}

// ComponentOption adjusts a button or select as it is declared.
type ComponentOption func(*Component)

// WithStyle sets a button's style.
func WithStyle(style ButtonStyle) ComponentOption {
	return func(c *Component) { c.Style = style }
}

// Disabled greys out a component when disabled is true.
func Disabled(disabled bool) ComponentOption {
	return func(c *Component) { c.Disabled = disabled }
}

// Placeholder sets the hint shown on an empty select.
func Placeholder(text string) ComponentOption {
	return func(c *Component) { c.Placeholder = text }
}

// Choose bounds how many select options may be picked.
func Choose(minValues, maxValues int) ComponentOption {
	return func(c *Component) {
		c.MinValues = minValues
		c.MaxValues = maxValues
	}
}

// Modal is a rendered modal menu.
type Modal struct {
	// ID routes the submission back to the modal's submit handler.
	ID     string
	Title  string
	Inputs []Input
}

// InputStyle is the size of a modal text input.
type InputStyle int

const (
	InputShort InputStyle = iota + 1
	InputParagraph
)

// Input is one text field of a modal.
type Input struct {
	Name        string
	ID          string
	Label       string
	Style       InputStyle
	Value       string
	Placeholder string
	Required    bool
	MinLength   int
	MaxLength   int
}

// InputOption adjusts a text input as it is declared.
type InputOption func(*Input)

// Paragraph makes the input multi-line.
func Paragraph() InputOption {
	return func(in *Input) { in.Style = InputParagraph }
}

// Optional lets the modal be submitted with the input empty.
func Optional() InputOption {
	return func(in *Input) { in.Required = false }
}

// Prefill sets the input's initial text.
func Prefill(value string) InputOption {
	return func(in *Input) { in.Value = value }
}

// Hint sets the placeholder shown on an empty input.
func Hint(text string) InputOption {
	return func(in *Input) { in.Placeholder = text }
}

// Length bounds the input's length.
func Length(minLength, maxLength int) InputOption {
	return func(in *Input) {
		in.MinLength = minLength
		in.MaxLength = maxLength
	}
}

// IDs lists the identifiers of a message in emission order.
func (m *Message) IDs() []string {
	var ids []string
	for _, row := range m.Rows {
		for _, c := range row.Components {
			if c.ID != "" {
				ids = append(ids, c.ID)
			}
		}
	}
	return ids
}

// Find returns the component with the given element name.
func (m *Message) Find(name string) (Component, bool) {
	for _, row := range m.Rows {
		for _, c := range row.Components {
			if c.Name == name {
				return c, true
			}
		}
	}
	return Component{}, false
}

// IDs lists the identifiers of a modal in emission order: the modal's own
// identifier first, then each input's.
func (m *Modal) IDs() []string {
	ids := []string{m.ID}
	for _, in := range m.Inputs {
		ids = append(ids, in.ID)
	}
	return ids
}
