package shell

import (
	"fmt"
	"strings"
)

const indentUnit = "  "

// retryFunc is the prelude function behind WithRetry. It evaluates $1 up to
// $_BS_RETRY_ATTEMPTS times, stops at the first success and returns the
// status of the last attempt. Failure messages name the command by $2 when
// given, so hidden commands never reach the log.
const retryFunc = `_bs_retry() {
  local label="${2:-$1}"
  local result=0
  local count=1
  while [ "$count" -le "$_BS_RETRY_ATTEMPTS" ]; do
    if [ "$result" -ne 0 ]; then
      printf '%s\n' "The command \"$label\" failed. Retrying, $count of $_BS_RETRY_ATTEMPTS." >&2
      sleep "$_BS_RETRY_SLEEP"
    fi
    if eval "$1"; then
      return 0
    else
      result=$?
    fi
    count=$((count + 1))
  done
  printf '%s\n' "The command \"$label\" failed $_BS_RETRY_ATTEMPTS times." >&2
  return "$result"
}`

type renderer struct {
	b     strings.Builder
	depth int
	opts  Options
}

// Render serializes the document. A script renders once; afterwards it
// accepts no more steps.
func (s *Script) Render() (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.rendered {
		return "", &UsageError{Op: "render", Msg: "script has already been rendered"}
	}
	if s.Depth() != 0 {
		return "", &UsageError{Op: "render", Msg: "render called inside an open block"}
	}
	s.rendered = true

	r := &renderer{opts: s.opts}
	r.prelude()
	r.nodes(s.root)
	return r.b.String(), nil
}

// RenderBody serializes nodes without the prelude. Intended for tests and
// for embedding fragments.
func RenderBody(opts Options, nodes []Node) string {
	r := &renderer{opts: opts.withDefaults()}
	r.nodes(nodes)
	return r.b.String()
}

func (r *renderer) prelude() {
	r.line(r.opts.Shebang)
	r.line("set -e")
	r.line(fmt.Sprintf("_BS_RETRY_ATTEMPTS=%d", r.opts.Retry.Attempts))
	r.line(fmt.Sprintf("_BS_RETRY_SLEEP=%d", int(r.opts.Retry.Sleep.Seconds())))
	r.line(retryFunc)
	r.line("")
}

// line writes text at the current indentation. Only the first line of a
// multi-line text is indented so heredocs and quoted strings keep their
// content.
func (r *renderer) line(text string) {
	if text != "" {
		r.b.WriteString(strings.Repeat(indentUnit, r.depth))
	}
	r.b.WriteString(text)
	r.b.WriteByte('\n')
}

func (r *renderer) nodes(nodes []Node) {
	for _, n := range nodes {
		n.render(r)
	}
}

// body renders a block body; an empty body becomes ':' so the block stays
// valid syntax.
func (r *renderer) body(nodes []Node) {
	r.depth++
	defer func() { r.depth-- }()
	if len(nodes) == 0 {
		r.line(":")
		return
	}
	r.nodes(nodes)
}

func (r *renderer) printLine(text string) {
	r.line("printf '%s\\n' " + Escape(text))
}

// hiddenLabel stands in for a NoEcho command in retry messages.
const hiddenLabel = "[secure]"

func (c *Cmd) render(r *renderer) {
	if c.Echo {
		r.printLine("$ " + c.Command)
	}
	line := c.Command
	if c.Retry {
		line = "_bs_retry " + Escape(c.Command)
		if !c.Echo {
			line += " " + Escape(hiddenLabel)
		}
	}
	if c.AllowFailure {
		line += " || true"
	}
	r.line(line)
}

func (e *Export) render(r *renderer) {
	assignment := fmt.Sprintf("export %s=%s", e.Name, Escape(e.Value))
	if e.Echo {
		r.printLine("$ " + assignment)
	}
	r.line(assignment)
}

// Only the color codes live in the printf format; the text is a %s argument
// and is printed as given.
func (e *Echo) render(r *renderer) {
	if e.Color == NoColor {
		r.printLine(e.Text)
		return
	}
	format := string(e.Color) + "%s" + string(Reset) + "\\n"
	r.line("printf " + Escape(format) + " " + Escape(e.Text))
}

func (c Condition) String() string {
	if c.Raw {
		return c.Expr
	}
	return "[[ " + c.Expr + " ]]"
}

func (i *If) render(r *renderer) {
	for n, b := range i.Branches {
		keyword := "if"
		if n > 0 {
			keyword = "elif"
		}
		r.line(fmt.Sprintf("%s %s; then", keyword, b.Cond))
		r.body(b.Body)
	}
	if i.HasElse {
		r.line("else")
		r.body(i.Else)
	}
	r.line("fi")
}

func (f *Fold) render(r *renderer) {
	r.printLine(fmt.Sprintf("%s:start:%s", r.opts.FoldPrefix, f.Name))
	r.depth++
	r.nodes(f.Body)
	r.depth--
	r.printLine(fmt.Sprintf("%s:end:%s", r.opts.FoldPrefix, f.Name))
}

func (l *Line) render(r *renderer) {
	r.line(l.Text)
}
