// Package shell assembles build steps into a bash script.
//
// A Script is an append-only document. Plugins call Cmd, Export, Echo, If,
// Elif, Else and Fold in the order the steps should run; nested calls made
// inside an If or Fold body are recorded as children of that block. Render
// serializes the document once.
//
//	sh := shell.New(shell.DefaultOptions())
//	sh.Fold("install.cocoapods", func() {
//	    sh.If("-f Podfile", func() {
//	        sh.Cmd("pod install", shell.WithRetry())
//	    })
//	})
//	text, err := sh.Render()
package shell

import (
	"fmt"
	"regexp"
)

var (
	identPattern    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	foldNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
)

// Script accumulates the steps of one build.
//
// A Script is not safe for concurrent use. Independent builds each get their
// own Script.
type Script struct {
	opts     Options
	root     []Node
	stack    []*[]Node
	err      error
	rendered bool
}

// New creates an empty script.
func New(opts Options) *Script {
	s := &Script{opts: opts.withDefaults()}
	s.stack = []*[]Node{&s.root}
	return s
}

// Options returns the effective options.
func (s *Script) Options() Options {
	return s.opts
}

// Err returns the first usage error recorded, if any.
func (s *Script) Err() error {
	return s.err
}

// Nodes returns the top-level steps appended so far.
func (s *Script) Nodes() []Node {
	return s.root
}

// Depth returns the number of open If/Fold bodies.
func (s *Script) Depth() int {
	return len(s.stack) - 1
}

// Cmd appends a command.
func (s *Script) Cmd(command string, opts ...Option) {
	o := applyOptions(opts)
	s.append(&Cmd{Command: command, Echo: o.echo, Retry: o.retry, AllowFailure: o.allowFailure})
}

// Export appends an environment variable assignment. The value is always
// escaped; NoEcho only hides the printed assignment.
func (s *Script) Export(name, value string, opts ...Option) {
	if !identPattern.MatchString(name) {
		s.fail("export", fmt.Sprintf("invalid variable name %q", name))
		return
	}
	o := applyOptions(opts)
	s.append(&Export{Name: name, Value: value, Echo: o.echo})
}

// Echo appends a line of output, optionally colored.
func (s *Script) Echo(text string, opts ...Option) {
	o := applyOptions(opts)
	s.append(&Echo{Text: text, Color: o.color})
}

// Raw appends a line verbatim.
func (s *Script) Raw(line string) {
	s.append(&Line{Text: line})
}

// Newline appends an empty line.
func (s *Script) Newline() {
	s.append(&Line{})
}

// If opens a conditional block and records body's steps in its first branch.
func (s *Script) If(cond string, body func(), opts ...Option) {
	if s.err != nil {
		return
	}
	o := applyOptions(opts)
	b := &Branch{Cond: Condition{Expr: cond, Raw: o.raw}}
	s.append(&If{Branches: []*Branch{b}})
	s.within(&b.Body, body)
}

// Elif adds a branch to the If appended immediately before it at the current
// depth.
func (s *Script) Elif(cond string, body func(), opts ...Option) {
	if s.err != nil {
		return
	}
	node, ok := s.openIf("elif")
	if !ok {
		return
	}
	o := applyOptions(opts)
	b := &Branch{Cond: Condition{Expr: cond, Raw: o.raw}}
	node.Branches = append(node.Branches, b)
	s.within(&b.Body, body)
}

// Else adds the final branch to the preceding If.
func (s *Script) Else(body func()) {
	if s.err != nil {
		return
	}
	node, ok := s.openIf("else")
	if !ok {
		return
	}
	node.HasElse = true
	s.within(&node.Else, body)
}

// Fold records body's steps inside a named log section. Folds are cosmetic:
// they never change execution order or exit status.
func (s *Script) Fold(name string, body func()) {
	if s.err != nil {
		return
	}
	if !foldNamePattern.MatchString(name) {
		s.fail("fold", fmt.Sprintf("invalid fold name %q", name))
		return
	}
	f := &Fold{Name: name}
	s.append(f)
	s.within(&f.Body, body)
}

func (s *Script) current() *[]Node {
	return s.stack[len(s.stack)-1]
}

func (s *Script) append(n Node) {
	if s.err != nil {
		return
	}
	if s.rendered {
		s.fail("append", "script has already been rendered")
		return
	}
	cur := s.current()
	*cur = append(*cur, n)
}

func (s *Script) within(body *[]Node, fn func()) {
	if fn == nil {
		return
	}
	s.stack = append(s.stack, body)
	defer func() { s.stack = s.stack[:len(s.stack)-1] }()
	fn()
}

// openIf returns the If that an elif/else call continues.
func (s *Script) openIf(op string) (*If, bool) {
	cur := *s.current()
	if len(cur) == 0 {
		s.fail(op, "no preceding if")
		return nil, false
	}
	node, ok := cur[len(cur)-1].(*If)
	if !ok {
		s.fail(op, "no preceding if")
		return nil, false
	}
	if node.HasElse {
		s.fail(op, "preceding if already has an else branch")
		return nil, false
	}
	return node, true
}

func (s *Script) fail(op, msg string) {
	if s.err == nil {
		s.err = &UsageError{Op: op, Msg: msg}
	}
}
