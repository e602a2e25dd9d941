package parser

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func parseClean(t *testing.T, source string) *Parser {
	t.Helper()
	p := NewParser(source)
	p.Parse()
	if p.HasError() {
		t.Fatalf("unexpected parse error:\n%s", p.ErrorMessage())
	}
	return p
}

// ===== Statement coverage =====

func TestParseStatements(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		topTyp string
	}{
		{"assign", "x <- 5\n", "assign"},
		{"assign expr", "x <- 3 * (y + 1)\n", "assign"},
		{"swap", "x <-> y\n", "swap"},
		{"read one", "citeste x\n", "read"},
		{"read many", "citeste a, b, c\n", "read"},
		{"write one", "scrie x\n", "write"},
		{"write many", "scrie x, \" \", y\n", "write"},
		{"if", "daca x > 0 atunci\n\tscrie x\nsf\n", "if"},
		{"if else", "daca x > 0 atunci\n\tscrie 1\naltfel\n\tscrie 2\nsf daca\n", "if"},
		{"for", "pentru i <- 1, 10 executa\n\tscrie i\nsf pentru\n", "for"},
		{"for step", "pentru i <- 10, 1, -1 executa\n\tscrie i\nsf\n", "for"},
		{"while", "cat timp x < 10 executa\n\tx <- x + 1\nsf\n", "while"},
		{"do while", "executa\n\tx <- x + 1\ncat timp x < 10\n", "do_while"},
		{"repeat", "repeta\n\tx <- x + 1\npana cand x >= 3\n", "repeat"},
		{"multi stmt", "x <- 1; y <- 2; scrie x + y\n", "multi_stmt"},
		{"floor", "x <- [7 / 2]\n", "assign"},
		{"sqrt", "x <- sqrt(16)\n", "assign"},
		{"logical", "ok <- x > 0 si nu gata sau y = 2\n", "assign"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := parseClean(t, tt.input)
			root := p.Root()
			if root.Type != "program" || root.ChildCount() != 1 {
				t.Fatalf("program has %d children", root.ChildCount())
			}
			stmt := root.Child(0)
			if stmt.Type != "stmt" {
				t.Fatalf("top child is %q, want stmt", stmt.Type)
			}
			if got := stmt.Child(0).Type; got != tt.topTyp {
				t.Errorf("statement type = %q, want %q", got, tt.topTyp)
			}
		})
	}
}

func TestParseComments(t *testing.T) {
	p := parseClean(t, "// comentariu\nx <- 1 // si aici\n")
	if p.Root().ChildCount() != 1 {
		t.Errorf("comments should not produce statements")
	}
}

func TestNestedBlocks(t *testing.T) {
	source := "pentru i <- 1, 3 executa\n" +
		"\tdaca i % 2 = 0 atunci\n" +
		"\t\tcat timp i > 0 executa\n" +
		"\t\t\ti <- i - 1\n" +
		"\t\tsf\n" +
		"\tsf\n" +
		"sf\n"
	parseClean(t, source)
}

func TestNestedWhileInsideDoWhile(t *testing.T) {
	source := "executa\n" +
		"\tcat timp x > 0 executa\n" +
		"\t\tx <- x - 1\n" +
		"\tsf\n" +
		"\ty <- y + 1\n" +
		"cat timp y < 3\n"
	p := parseClean(t, source)
	if got := p.Root().Child(0).Child(0).Type; got != "do_while" {
		t.Errorf("outer statement = %q, want do_while", got)
	}
}

// ===== Fields =====

func TestAssignFields(t *testing.T) {
	p := parseClean(t, "suma <- 2 + 3\n")
	assign := p.Root().Child(0).Child(0)

	name := assign.ChildByField("name")
	if name == nil || p.NodeText(name) != "suma" {
		t.Fatalf("name field = %v", name)
	}
	val := assign.ChildByField("value")
	if val == nil || val.Type != "expr" {
		t.Fatalf("value field = %v", val)
	}
	if val.Child(0).Type != "add_expr" {
		t.Errorf("value child = %q, want add_expr", val.Child(0).Type)
	}
}

func TestForFields(t *testing.T) {
	p := parseClean(t, "pentru i <- 1, 10, 2 executa\nsf\n")
	forNode := p.Root().Child(0).Child(0)

	for _, field := range []string{"var", "start", "end", "step"} {
		if forNode.ChildByField(field) == nil {
			t.Errorf("for node lacks field %q", field)
		}
	}
	if p.NodeText(forNode.ChildByField("var")) != "i" {
		t.Errorf("var = %q", p.NodeText(forNode.ChildByField("var")))
	}
}

func TestCompareOpField(t *testing.T) {
	p := parseClean(t, "r <- a <= b\n")
	cmpNode := p.Root().Child(0).Child(0).ChildByField("value").Child(0)
	if cmpNode.Type != "compare_expr" {
		t.Fatalf("value = %q", cmpNode.Type)
	}
	op := cmpNode.ChildByField("op")
	if op == nil || op.Type != "<=" {
		t.Errorf("op field = %v", op)
	}
}

func TestPrecedence(t *testing.T) {
	// 1 + 2 * 3 parses as 1 + (2 * 3).
	p := parseClean(t, "x <- 1 + 2 * 3\n")
	add := p.Root().Child(0).Child(0).ChildByField("value").Child(0)
	if add.Type != "add_expr" {
		t.Fatalf("top = %q, want add_expr", add.Type)
	}
	if add.ChildByField("right").Type != "mul_expr" {
		t.Errorf("right = %q, want mul_expr", add.ChildByField("right").Type)
	}
}

func TestPrettyTreeShape(t *testing.T) {
	p := parseClean(t, "x <- 1\n")
	want := strings.Join([]string{
		"(program",
		"  (stmt",
		"    (assign",
		"      (identifier \"x\")",
		"      (expr",
		"        (atom",
		"          (number \"1\")",
		"        )",
		"      )",
		"    )",
		"  )",
		")",
		"",
	}, "\n")
	if diff := cmp.Diff(want, p.PrettyTree()); diff != "" {
		t.Errorf("pretty tree mismatch (-want +got):\n%s", diff)
	}
}

// ===== Error recovery and diagnostics =====

func TestMissingSf(t *testing.T) {
	p := NewParser("daca x > 0 atunci\n\tscrie x\n")
	p.Parse()
	if !p.HasError() {
		t.Fatal("expected a parse error")
	}

	info := FindFirstError(p.Root())
	if info == nil || !info.IsMissing {
		t.Fatalf("expected a missing node, got %+v", info)
	}
	if info.Node.Type != "sf" {
		t.Errorf("missing node type = %q, want sf", info.Node.Type)
	}

	msg := p.ErrorMessage()
	if !strings.Contains(msg, "Lipseste: 'sf' (sfarsit bloc)") {
		t.Errorf("message lacks sf diagnosis:\n%s", msg)
	}
	if !strings.Contains(msg, "^") {
		t.Errorf("message lacks caret:\n%s", msg)
	}
}

func TestMissingAtunci(t *testing.T) {
	p := NewParser("daca x > 0\n\tscrie x\nsf\n")
	p.Parse()
	info := FindFirstError(p.Root())
	if info == nil || !info.IsMissing || info.Node.Type != "atunci" {
		t.Fatalf("expected missing atunci, got %+v", info)
	}
	if !strings.Contains(p.ErrorMessage(), "'atunci'") {
		t.Errorf("message:\n%s", p.ErrorMessage())
	}
}

func TestMissingExpr(t *testing.T) {
	p := NewParser("x <- \n")
	p.Parse()
	info := FindFirstError(p.Root())
	if info == nil || !info.IsMissing || info.Node.Type != "expr" {
		t.Fatalf("expected missing expr, got %+v", info)
	}
	if !strings.Contains(p.ErrorMessage(), "expresie") {
		t.Errorf("message:\n%s", p.ErrorMessage())
	}
}

func TestStrayPana(t *testing.T) {
	p := NewParser("pana cand x > 3\n")
	p.Parse()
	if !p.HasError() {
		t.Fatal("expected a parse error")
	}
}

// "pentr" parses as the start of an assignment, so the first defect reported
// is the missing "<-", not a keyword suggestion.
func TestKeywordTypoIsParseError(t *testing.T) {
	p := NewParser("pentr i <- 1, 3 executa\nscrie i\nsf\n")
	p.Parse()
	if !p.HasError() {
		t.Fatal("expected a parse error")
	}
}

func TestCaretPreservesTabs(t *testing.T) {
	line := "\t\tx <- "
	got := caretLine(line, 7)
	if got != "\t\t     ^" {
		t.Errorf("caretLine = %q", got)
	}
}

func TestDebugTreeMarkers(t *testing.T) {
	p := NewParser("daca x atunci\n")
	p.Parse()
	out := p.DebugTree()
	if !strings.Contains(out, "[MISSING]") {
		t.Errorf("debug tree lacks MISSING marker:\n%s", out)
	}
}

func TestEmptyProgram(t *testing.T) {
	p := NewParser("")
	p.Parse()
	if p.HasError() {
		t.Errorf("empty program should parse clean")
	}
	if p.Root().ChildCount() != 0 {
		t.Errorf("empty program has children")
	}
}
