// internal/repl/repl.go
package repl

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"pseudo/internal/runtime"
)

// blockStarters open multi-line constructs; the REPL keeps collecting lines
// for them until an empty line closes the entry.
var blockStarters = []string{"daca", "pentru", "cat", "executa", "repeta"}

func startsBlock(line string) bool {
	first := strings.Fields(line)
	if len(first) == 0 {
		return false
	}
	for _, kw := range blockStarters {
		if first[0] == kw {
			return true
		}
	}
	return false
}

func Start() {
	interactive := isatty.IsTerminal(os.Stdin.Fd())
	if interactive {
		fmt.Println("pseudo REPL | scrie 'iesire' pentru a inchide")
	}

	scanner := bufio.NewScanner(os.Stdin)
	rt := runtime.New(runtime.NewStdIO())

	for {
		if interactive {
			fmt.Print(">>> ")
		}
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if trimmed == "iesire" || trimmed == "exit" {
			break
		}

		source := line
		if startsBlock(trimmed) {
			var sb strings.Builder
			sb.WriteString(line)
			for {
				if interactive {
					fmt.Print("... ")
				}
				if !scanner.Scan() {
					break
				}
				more := scanner.Text()
				if strings.TrimSpace(more) == "" {
					break
				}
				sb.WriteByte('\n')
				sb.WriteString(more)
			}
			source = sb.String()
		}

		if err := rt.EvalInteractive(source); err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			continue
		}
		// scrie emits no newline of its own; keep the prompt on a fresh line.
		if interactive {
			fmt.Println()
		}
	}
}
