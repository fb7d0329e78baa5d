package shell

// Node is one step of a script document.
type Node interface {
	render(r *renderer)
}

// Color is an ANSI SGR sequence used to highlight echoed text.
type Color string

const (
	NoColor Color = ""
	Red     Color = `\033[31;1m`
	Green   Color = `\033[32;1m`
	Yellow  Color = `\033[33;1m`
	Reset   Color = `\033[0m`
)

// Cmd runs a command. Command is inserted verbatim, so callers escape their
// own arguments.
type Cmd struct {
	Command      string
	Echo         bool
	Retry        bool
	AllowFailure bool // a failing command does not stop the build
}

// Export assigns an environment variable. Value is escaped on render.
type Export struct {
	Name  string
	Value string
	Echo  bool
}

// Echo prints a line of text. Text is printed as given; only Color is
// interpreted by printf.
type Echo struct {
	Text  string
	Color Color
}

// Condition is the predicate of an if or elif branch.
type Condition struct {
	Expr string
	// Raw conditions are inserted as-is instead of inside [[ ]].
	Raw bool
}

// Branch is one guarded body of an If.
type Branch struct {
	Cond Condition
	Body []Node
}

// If is an if/elif/else chain. At most one body runs.
type If struct {
	Branches []*Branch
	Else     []Node
	HasElse  bool
}

// Fold groups steps under a collapsible log section.
type Fold struct {
	Name string
	Body []Node
}

// Line is emitted verbatim. Used for preludes and collaborator snippets.
type Line struct {
	Text string
}
