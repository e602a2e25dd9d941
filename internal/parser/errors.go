// internal/parser/errors.go
package parser

import (
	"fmt"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"pseudo/internal/lexer"
)

// ErrorInfo identifies the first defect in a tree: a missing node when any
// exists (the more precise diagnosis), otherwise the first ERROR node.
type ErrorInfo struct {
	Node      *Node
	Point     Point
	IsMissing bool
}

func findMissingNode(n *Node) *Node {
	if n.IsMissing() {
		return n
	}
	for _, child := range n.Children {
		if found := findMissingNode(child); found != nil {
			return found
		}
	}
	return nil
}

func findErrorNode(n *Node) *Node {
	if n.IsError() {
		return n
	}
	for _, child := range n.Children {
		if found := findErrorNode(child); found != nil {
			return found
		}
	}
	return nil
}

// findMissingSfPosition picks the point inside an ERROR region where an sf
// most plausibly belongs: after the statement following altfel or atunci, or
// right before a stray pana.
func findMissingSfPosition(errNode *Node, source string) Point {
	best := errNode.StartPoint

	for i, child := range errNode.Children {
		if child.Type == "altfel" || child.Type == "atunci" {
			for j := i + 1; j < len(errNode.Children); j++ {
				next := errNode.Children[j]
				if next.Type == "stmt" {
					best = next.EndPoint
					if child.Type == "altfel" {
						return best
					}
					break
				}
			}
		}
	}

	for _, child := range errNode.Children {
		if child.Type == "pana" {
			return child.StartPoint
		}
		if child.Type == "identifier" && child.Text(source) == "pana" {
			return child.StartPoint
		}
	}

	return best
}

// FindFirstError locates the node BuildErrorMessage should report, or nil on
// a clean tree.
func FindFirstError(root *Node) *ErrorInfo {
	if missing := findMissingNode(root); missing != nil {
		return &ErrorInfo{Node: missing, Point: missing.StartPoint, IsMissing: true}
	}
	if errNode := findErrorNode(root); errNode != nil {
		return &ErrorInfo{Node: errNode, Point: errNode.StartPoint}
	}
	return nil
}

// translateNodeType maps a node type to the Romanian phrase shown to learners.
func translateNodeType(typ string) string {
	switch typ {
	case "stmt":
		return "instructiune"
	case "expr":
		return "expresie"
	case "identifier":
		return "nume de variabila"
	case "number":
		return "numar"
	case "string":
		return "sir de caractere"
	case "sf":
		return "'sf' (sfarsit bloc)"
	case "atunci":
		return "'atunci'"
	case "executa":
		return "'executa'"
	case "altfel":
		return "'altfel'"
	case "pana":
		return "'pana cand'"
	case "cat":
		return "'cat timp'"
	case "repeta":
		return "'repeta'"
	case "pentru":
		return "'pentru'"
	case "daca":
		return "'daca'"
	case "assign", "<-":
		return "atribuire (<-)"
	case "read":
		return "'citeste'"
	case "write":
		return "'scrie'"
	}
	return typ
}

func errorContainsKeyword(errNode *Node, source, keyword string) bool {
	for _, child := range errNode.Children {
		if child.Type == keyword {
			return true
		}
		if child.Type == "identifier" && child.Text(source) == keyword {
			return true
		}
	}
	return false
}

// suggestKeyword proposes a canonical keyword for a misspelled identifier
// inside the error region.
func suggestKeyword(errNode *Node, source string) string {
	for _, child := range errNode.Children {
		if child.Type != "identifier" {
			continue
		}
		word := child.Text(source)
		if len(word) < 3 {
			continue
		}
		ranks := fuzzy.RankFindFold(word, lexer.Keywords())
		if len(ranks) > 0 && ranks[0].Distance <= 2 && ranks[0].Target != word {
			return ranks[0].Target
		}
	}
	return ""
}

// analyzeErrorContent derives a suggestion from which keywords appear inside
// an ERROR region.
func analyzeErrorContent(errNode *Node, source string) string {
	hasDaca := errorContainsKeyword(errNode, source, "daca")
	hasAtunci := errorContainsKeyword(errNode, source, "atunci")
	hasAltfel := errorContainsKeyword(errNode, source, "altfel")
	hasRepeta := errorContainsKeyword(errNode, source, "repeta")
	hasPana := errorContainsKeyword(errNode, source, "pana")
	hasPentru := errorContainsKeyword(errNode, source, "pentru")
	hasExecuta := errorContainsKeyword(errNode, source, "executa")
	hasCat := errorContainsKeyword(errNode, source, "cat")

	switch {
	case hasDaca && hasAtunci:
		var sb strings.Builder
		sb.WriteString("Structura 'daca...atunci")
		if hasAltfel {
			sb.WriteString("...altfel")
		}
		sb.WriteString("' incompleta - lipseste 'sf' (sfarsit bloc)")
		return sb.String()
	case hasRepeta && hasPana:
		return "Structura 'repeta...pana cand' incompleta - verificati ca toate blocurile 'daca' au 'sf'"
	case hasRepeta:
		return "Structura 'repeta' incompleta - lipseste 'pana cand' sau 'sf' pentru blocuri interioare"
	case hasPentru && hasExecuta:
		return "Structura 'pentru...executa' incompleta - lipseste 'sf' (sfarsit bloc)"
	case hasCat && hasExecuta:
		return "Structura 'cat timp...executa' incompleta - lipseste 'sf' (sfarsit bloc)"
	case hasPana:
		return "'pana cand' gasit fara 'repeta' corespunzator sau blocuri interioare neinchise"
	}

	if kw := suggestKeyword(errNode, source); kw != "" {
		return fmt.Sprintf("Element neasteptat in cod - ati vrut sa scrieti '%s'?", kw)
	}
	return "Element neasteptat in cod - verificati structura blocurilor"
}

// caretLine builds the pointer line under a source excerpt; tabs from the
// source stay tabs so the caret lands on the right column.
func caretLine(line string, column uint32) string {
	var sb strings.Builder
	for i := 0; i < int(column) && i < len(line); i++ {
		if line[i] == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteByte(' ')
		}
	}
	sb.WriteByte('^')
	return sb.String()
}

func sourceLine(source string, row uint32) string {
	lines := strings.Split(source, "\n")
	if int(row) >= len(lines) {
		return ""
	}
	return lines[row]
}

// BuildErrorMessage renders the full Romanian diagnostic: classification,
// position, suggestion, and a two-line excerpt with a caret.
func BuildErrorMessage(source string, info *ErrorInfo) string {
	var sb strings.Builder

	point := info.Point
	if info.IsMissing {
		sb.WriteString("Lipseste: ")
		sb.WriteString(translateNodeType(info.Node.Type))
	} else {
		point = findMissingSfPosition(info.Node, source)
		sb.WriteString(analyzeErrorContent(info.Node, source))
	}
	sb.WriteString("\n\n")

	line := sourceLine(source, point.Row)
	sb.WriteString(fmt.Sprintf("Linia %d, coloana %d:\n", point.Row+1, point.Column+1))
	sb.WriteString(line)
	sb.WriteByte('\n')
	sb.WriteString(caretLine(line, point.Column))
	sb.WriteByte('\n')

	return sb.String()
}

// ErrorMessage is the load-time entry point: the diagnostic for the last
// parse, or "" when the tree is clean.
func (p *Parser) ErrorMessage() string {
	if p.root == nil {
		return ""
	}
	info := FindFirstError(p.root)
	if info == nil {
		return ""
	}
	return BuildErrorMessage(p.source, info)
}
