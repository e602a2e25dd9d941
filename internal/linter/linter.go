// internal/linter/linter.go
package linter

// Lint rewrites raw pseudocode into the canonical form the grammar expects.
// Learners paste code full of mathematical glyphs, Romanian diacritics, smart
// quotes and box-drawing indentation; the forms listed in the table below fold
// into plain ASCII here, and any other character passes through unchanged.
//
// The rewrite is a single left-to-right scan. At every byte position the
// longest replacement key matching there wins; if nothing matches, the byte is
// copied verbatim. The pass is total - there is no failure mode.

type replacement struct {
	from string
	to   string
}

// Order inside the table does not matter: the scan always picks the longest
// matching key, so "<--->" beats "<-->" beats "<-".
var replacements = []replacement{
	// Comparison symbols
	{"≤", "<="},
	{"≥", ">="},
	{"≠", "!="},

	// Arrows
	{"←", "<-"},
	{"→", "->"},
	{"<-->", "<->"},
	{"<--->", "<->"},

	// Block end glyph
	{"■", "sf"},

	// Indentation bars collapse to one tab each
	{"│ ", "\t"},
	{"│", "\t"},
	{"| ", "\t"},
	{"|", "\t"},

	// Smart quotes
	{"’", "'"},
	{"‘", "'"},
	{"”", "\""},
	{"„", "\""},

	// Box drawing
	{"┌", ""},
	{"└", ""},

	// Romanian diacritics
	{"ă", "a"},
	{"â", "a"},
	{"î", "i"},
	{"ș", "s"},
	{"ş", "s"},
	{"ț", "t"},
	{"ţ", "t"},
}

// matchAt returns the replacement whose key is the longest match at source[pos:],
// or nil if no key matches there.
func matchAt(source string, pos int) *replacement {
	var best *replacement
	bestLen := 0
	for i := range replacements {
		r := &replacements[i]
		n := len(r.from)
		if n <= bestLen || pos+n > len(source) {
			continue
		}
		if source[pos:pos+n] == r.from {
			best = r
			bestLen = n
		}
	}
	return best
}

// Lint normalizes source and guarantees a trailing newline on non-empty output.
func Lint(source string) string {
	out := make([]byte, 0, len(source)+1)

	for i := 0; i < len(source); {
		if r := matchAt(source, i); r != nil {
			out = append(out, r.to...)
			i += len(r.from)
			continue
		}
		out = append(out, source[i])
		i++
	}

	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	return string(out)
}
