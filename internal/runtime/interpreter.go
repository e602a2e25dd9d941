// internal/runtime/interpreter.go
package runtime

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"pseudo/internal/env"
	"pseudo/internal/linter"
	"pseudo/internal/parser"
	"pseudo/internal/value"
)

// State is the interpreter-level execution state machine.
type State int

const (
	StateContinue   State = iota // more statements to execute
	StateDone                    // program finished
	StateNeedsInput              // suspended at citeste, waiting for input
	StateError                   // runtime or load error recorded
)

func (s State) String() string {
	switch s {
	case StateContinue:
		return "continue"
	case StateDone:
		return "done"
	case StateNeedsInput:
		return "needs_input"
	case StateError:
		return "error"
	}
	return "unknown"
}

// errNeedsInput unwinds a suspended citeste up to Step without touching the
// statement cursor.
var errNeedsInput = errors.New("needs input")

// Runtime executes one loaded program against an environment and an I/O
// backend. It is single-threaded and not reentrant: one Step or Run at a
// time.
type Runtime struct {
	parser *parser.Parser
	io     IO
	env    *env.Env

	state  State
	errMsg string

	program  *parser.Node
	nextStmt int

	stopRequested bool
	curPos        parser.Point

	// Identifiers of the suspended citeste already filled, so resumption
	// does not consume their tokens again.
	readDone int
}

func New(io IO) *Runtime {
	return &Runtime{
		io:    io,
		env:   env.New(),
		state: StateDone,
	}
}

// Load normalizes and parses source, then resets the execution state. On a
// parse error the runtime lands in StateError with the diagnostic recorded
// and Load reports false.
func (rt *Runtime) Load(source string) bool {
	rt.parser = parser.NewParser(linter.Lint(source))
	rt.program = rt.parser.Parse()
	rt.env.Clear()
	rt.nextStmt = 0
	rt.stopRequested = false
	rt.readDone = 0
	rt.errMsg = ""
	rt.curPos = parser.Point{}

	if rt.parser.HasError() {
		rt.errMsg = rt.parser.ErrorMessage()
		rt.state = StateError
		return false
	}
	rt.state = StateContinue
	return true
}

// Step executes the next top-level statement and returns the new state. A
// citeste that finds no input leaves the cursor in place so the statement is
// retried after Resume.
func (rt *Runtime) Step() State {
	if rt.state != StateContinue {
		return rt.state
	}

	for rt.nextStmt < rt.program.ChildCount() &&
		rt.program.Child(rt.nextStmt).Type != "stmt" {
		rt.nextStmt++
	}
	if rt.nextStmt >= rt.program.ChildCount() {
		rt.state = StateDone
		return rt.state
	}

	stmt := rt.program.Child(rt.nextStmt)
	rt.curPos = stmt.StartPoint

	err := rt.execStmt(stmt)
	switch {
	case errors.Is(err, errNeedsInput):
		rt.state = StateNeedsInput
	case err != nil:
		rt.errMsg = err.Error()
		rt.state = StateError
	default:
		rt.nextStmt++
		rt.readDone = 0
		if rt.stopRequested {
			rt.state = StateDone
		}
	}
	return rt.state
}

// Run steps until the program leaves StateContinue.
func (rt *Runtime) Run() State {
	for rt.state == StateContinue {
		rt.Step()
	}
	return rt.state
}

// Resume leaves StateNeedsInput without re-executing anything; the next Step
// re-enters the suspended citeste.
func (rt *Runtime) Resume() {
	if rt.state == StateNeedsInput {
		rt.state = StateContinue
	}
}

// RequestStop asks the runtime to wind down. The flag is observed at loop
// heads and at the top-level statement boundary, not inside straight-line
// code.
func (rt *Runtime) RequestStop() {
	rt.stopRequested = true
}

func (rt *Runtime) State() State {
	return rt.state
}

// Error returns the recorded diagnostic, or "" when none.
func (rt *Runtime) Error() string {
	return rt.errMsg
}

// CurrentLine is the 1-based line of the most recently started top-level
// statement.
func (rt *Runtime) CurrentLine() uint32 {
	return rt.curPos.Row + 1
}

// CurrentColumn is the 1-based column of the most recently started top-level
// statement.
func (rt *Runtime) CurrentColumn() uint32 {
	return rt.curPos.Column + 1
}

// Env exposes the variable bindings, for the REPL and tests.
func (rt *Runtime) Env() *env.Env {
	return rt.env
}

// EvalInteractive executes one source fragment against the current
// environment without resetting it. Bindings accumulate across calls, which
// is what a REPL session wants.
func (rt *Runtime) EvalInteractive(source string) error {
	p := parser.NewParser(linter.Lint(source))
	program := p.Parse()
	if p.HasError() {
		return errors.New(p.ErrorMessage())
	}

	rt.parser = p
	rt.program = program
	rt.nextStmt = 0
	rt.stopRequested = false
	rt.readDone = 0
	rt.errMsg = ""
	rt.state = StateContinue

	if state := rt.Run(); state == StateError {
		return errors.New(rt.errMsg)
	}
	return nil
}

// Statement execution

func (rt *Runtime) execStmt(n *parser.Node) error {
	switch n.Type {
	case "stmt":
		return rt.execStmt(n.Child(0))
	case "assign":
		return rt.execAssign(n)
	case "swap":
		return rt.execSwap(n)
	case "read":
		return rt.execRead(n)
	case "write":
		return rt.execWrite(n)
	case "if":
		return rt.execIf(n)
	case "for":
		return rt.execFor(n)
	case "while":
		return rt.execWhile(n)
	case "do_while":
		return rt.execDoWhile(n)
	case "repeat":
		return rt.execRepeat(n)
	case "multi_stmt":
		return rt.execMultiStmt(n)
	}
	return fmt.Errorf("instructiune necunoscuta: %s", n.Type)
}

func (rt *Runtime) execAssign(n *parser.Node) error {
	v, err := rt.eval(n.ChildByField("value"))
	if err != nil {
		return err
	}
	name := rt.parser.NodeText(n.ChildByField("name"))
	rt.env.Set(name, v)
	return nil
}

func (rt *Runtime) execSwap(n *parser.Node) error {
	left := rt.parser.NodeText(n.ChildByField("left"))
	right := rt.parser.NodeText(n.ChildByField("right"))

	a := rt.lookup(left)
	b := rt.lookup(right)
	rt.env.Set(left, b)
	rt.env.Set(right, a)
	return nil
}

// parseInputToken types one citeste token: whole-token integer first, then
// whole-token real, otherwise text.
func parseInputToken(tok string) value.Value {
	if i, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return value.NewInt(i)
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return value.NewReal(f)
	}
	return value.NewText(tok)
}

func (rt *Runtime) execRead(n *parser.Node) error {
	names := n.ChildByField("names")
	filled := 0
	for _, child := range names.Children {
		if child.Type != "identifier" {
			continue
		}
		if filled < rt.readDone {
			filled++
			continue
		}
		tok, ok := rt.io.Read()
		if !ok {
			if rt.io.Blocking() {
				return errors.New("Sfarsit de fisier la citire")
			}
			return errNeedsInput
		}
		rt.env.Set(rt.parser.NodeText(child), parseInputToken(tok))
		filled++
		rt.readDone = filled
	}
	// This citeste is complete; the next one executed starts with no names
	// filled.
	rt.readDone = 0
	return nil
}

func (rt *Runtime) execWrite(n *parser.Node) error {
	values := n.ChildByField("values")
	var sb strings.Builder
	for _, child := range values.Children {
		if !child.Named {
			continue // comma
		}
		v, err := rt.eval(child)
		if err != nil {
			return err
		}
		sb.WriteString(v.ToString())
	}
	rt.io.Write(sb.String())
	return nil
}

func (rt *Runtime) execIf(n *parser.Node) error {
	cond, err := rt.eval(n.ChildByField("condition"))
	if err != nil {
		return err
	}

	altfelIdx := -1
	for i, child := range n.Children {
		if child.Type == "altfel" {
			altfelIdx = i
			break
		}
	}

	lo, hi := 0, len(n.Children)
	if cond.Truthy() {
		if altfelIdx >= 0 {
			hi = altfelIdx
		}
	} else {
		if altfelIdx < 0 {
			return nil
		}
		lo = altfelIdx + 1
	}

	for i := lo; i < hi; i++ {
		child := n.Children[i]
		if child.Type != "stmt" {
			continue
		}
		if err := rt.execStmt(child); err != nil {
			return err
		}
	}
	return nil
}

func (rt *Runtime) execBody(n *parser.Node) error {
	for _, child := range n.Children {
		if child.Type != "stmt" {
			continue
		}
		if err := rt.execStmt(child); err != nil {
			return err
		}
	}
	return nil
}

func (rt *Runtime) evalLoopBound(n *parser.Node) (int64, error) {
	v, err := rt.eval(n)
	if err != nil {
		return 0, err
	}
	if !v.IsNumeric() {
		return 0, value.TypeMismatch
	}
	return v.ToInt(), nil
}

func (rt *Runtime) execFor(n *parser.Node) error {
	start, err := rt.evalLoopBound(n.ChildByField("start"))
	if err != nil {
		return err
	}
	end, err := rt.evalLoopBound(n.ChildByField("end"))
	if err != nil {
		return err
	}
	step := int64(1)
	if stepNode := n.ChildByField("step"); stepNode != nil {
		step, err = rt.evalLoopBound(stepNode)
		if err != nil {
			return err
		}
	}
	if step == 0 {
		return errors.New("Pas nul in pentru")
	}

	name := rt.parser.NodeText(n.ChildByField("var"))
	for v := start; (step > 0 && v <= end) || (step < 0 && v >= end); v += step {
		if rt.stopRequested {
			break
		}
		rt.env.Set(name, value.NewInt(v))
		if err := rt.execBody(n); err != nil {
			return err
		}
	}
	return nil
}

func (rt *Runtime) execWhile(n *parser.Node) error {
	for {
		if rt.stopRequested {
			return nil
		}
		cond, err := rt.eval(n.ChildByField("condition"))
		if err != nil {
			return err
		}
		if !cond.Truthy() {
			return nil
		}
		if err := rt.execBody(n); err != nil {
			return err
		}
	}
}

func (rt *Runtime) execDoWhile(n *parser.Node) error {
	for {
		if err := rt.execBody(n); err != nil {
			return err
		}
		if rt.stopRequested {
			return nil
		}
		cond, err := rt.eval(n.ChildByField("condition"))
		if err != nil {
			return err
		}
		if !cond.Truthy() {
			return nil
		}
	}
}

// execRepeat loops until the condition becomes true.
func (rt *Runtime) execRepeat(n *parser.Node) error {
	for {
		if err := rt.execBody(n); err != nil {
			return err
		}
		if rt.stopRequested {
			return nil
		}
		cond, err := rt.eval(n.ChildByField("condition"))
		if err != nil {
			return err
		}
		if cond.Truthy() {
			return nil
		}
	}
}

func (rt *Runtime) execMultiStmt(n *parser.Node) error {
	for _, child := range n.Children {
		if !child.Named {
			continue // semicolon
		}
		if err := rt.execStmt(child); err != nil {
			return err
		}
	}
	return nil
}

// Expression evaluation

// lookup reads a variable, auto-initializing undefined names to integer 0.
func (rt *Runtime) lookup(name string) value.Value {
	if v, ok := rt.env.Get(name); ok {
		return v
	}
	zero := value.NewInt(0)
	rt.env.Set(name, zero)
	return zero
}

func (rt *Runtime) eval(n *parser.Node) (value.Value, error) {
	switch n.Type {
	case "expr":
		return rt.eval(n.Child(0))

	case "atom":
		return rt.eval(n.Child(0))

	case "identifier":
		// Bound values stay owned by the environment; evaluation hands out
		// a copy.
		return rt.lookup(rt.parser.NodeText(n)).Copy(), nil

	case "number":
		text := rt.parser.NodeText(n)
		if strings.ContainsRune(text, '.') {
			f, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return value.Value{}, value.TypeMismatch
			}
			return value.NewReal(f), nil
		}
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return value.Value{}, value.TypeMismatch
		}
		return value.NewInt(i), nil

	case "string":
		text := rt.parser.NodeText(n)
		if len(text) >= 2 {
			text = text[1 : len(text)-1]
		}
		return value.NewText(text), nil

	case "paren":
		return rt.eval(n.Child(1))

	case "add_expr", "mul_expr", "compare_expr":
		return rt.evalBinary(n)

	case "or_expr":
		left, err := rt.eval(n.ChildByField("left"))
		if err != nil {
			return value.Value{}, err
		}
		if left.Truthy() {
			return value.NewInt(1), nil
		}
		right, err := rt.eval(n.ChildByField("right"))
		if err != nil {
			return value.Value{}, err
		}
		return value.Or(left, right), nil

	case "and_expr":
		left, err := rt.eval(n.ChildByField("left"))
		if err != nil {
			return value.Value{}, err
		}
		if !left.Truthy() {
			return value.NewInt(0), nil
		}
		right, err := rt.eval(n.ChildByField("right"))
		if err != nil {
			return value.Value{}, err
		}
		return value.And(left, right), nil

	case "not_expr":
		operand, err := rt.eval(n.ChildByField("operand"))
		if err != nil {
			return value.Value{}, err
		}
		return value.Not(operand), nil

	case "neg_expr":
		operand, err := rt.eval(n.ChildByField("operand"))
		if err != nil {
			return value.Value{}, err
		}
		return value.Neg(operand)

	case "sqrt_expr":
		operand, err := rt.eval(n.ChildByField("operand"))
		if err != nil {
			return value.Value{}, err
		}
		return value.Sqrt(operand)

	case "floor":
		operand, err := rt.eval(n.ChildByField("operand"))
		if err != nil {
			return value.Value{}, err
		}
		return value.Floor(operand)
	}

	return value.Value{}, fmt.Errorf("expresie necunoscuta: %s", n.Type)
}

func (rt *Runtime) evalBinary(n *parser.Node) (value.Value, error) {
	left, err := rt.eval(n.ChildByField("left"))
	if err != nil {
		return value.Value{}, err
	}
	right, err := rt.eval(n.ChildByField("right"))
	if err != nil {
		return value.Value{}, err
	}

	switch n.ChildByField("op").Type {
	case "+":
		return value.Add(left, right)
	case "-":
		return value.Sub(left, right)
	case "*":
		return value.Mul(left, right)
	case "/":
		return value.Div(left, right)
	case "%":
		return value.Mod(left, right)
	case "=":
		return value.Eq(left, right)
	case "!=":
		return value.Ne(left, right)
	case "<":
		return value.Lt(left, right)
	case "<=":
		return value.Le(left, right)
	case ">":
		return value.Gt(left, right)
	case ">=":
		return value.Ge(left, right)
	}
	return value.Value{}, fmt.Errorf("operator necunoscut: %s", n.ChildByField("op").Type)
}
