// cmd/pseudo/main.go
package main

import (
	"fmt"
	"os"

	"pseudo/cmd/pseudo/commands"
	"pseudo/internal/linter"
	"pseudo/internal/parser"
	"pseudo/internal/repl"
	"pseudo/internal/runtime"
)

const VERSION = "1.0.0"

// Command aliases mapping
var commandAliases = map[string]string{
	"r": "run",
	"l": "lint",
	"p": "parse",
	"d": "debug",
	"i": "repl",
	"w": "watch",
	"s": "serve",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		os.Exit(1)
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "help", "--help", "-h":
		showUsage()
		return
	case "version", "--version", "-v":
		fmt.Printf("pseudo %s\n", VERSION)
		return
	case "repl":
		repl.Start()
		return
	case "serve":
		addr := ":8080"
		if len(args) > 1 {
			addr = args[1]
		}
		if err := commands.ServeCommand(addr); err != nil {
			fmt.Fprintf(os.Stderr, "Eroare: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// The remaining commands all take a file argument.
	if len(args) < 2 {
		fmt.Fprintf(os.Stderr, "Eroare: comanda '%s' are nevoie de un fisier\n\n", cmd)
		showUsage()
		os.Exit(1)
	}
	file := args[1]

	switch cmd {
	case "run":
		os.Exit(runFile(file))
	case "lint":
		os.Exit(lintFile(file))
	case "parse":
		os.Exit(parseFile(file, false))
	case "debug":
		os.Exit(parseFile(file, true))
	case "watch":
		if err := commands.WatchCommand(file); err != nil {
			fmt.Fprintf(os.Stderr, "Eroare: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Eroare: comanda necunoscuta '%s'\n\n", args[0])
		showUsage()
		os.Exit(1)
	}
}

func readSource(file string) (string, bool) {
	data, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Eroare: nu pot citi fisierul '%s': %v\n", file, err)
		return "", false
	}
	return string(data), true
}

func runFile(file string) int {
	source, ok := readSource(file)
	if !ok {
		return 1
	}

	io := runtime.NewStdIO()
	defer io.Destroy()

	rt := runtime.New(io)
	if !rt.Load(source) {
		fmt.Fprintf(os.Stderr, "%s\n", rt.Error())
		return 1
	}
	if rt.Run() == runtime.StateError {
		fmt.Fprintf(os.Stderr, "Eroare la linia %d: %s\n", rt.CurrentLine(), rt.Error())
		return 1
	}
	return 0
}

func lintFile(file string) int {
	source, ok := readSource(file)
	if !ok {
		return 1
	}
	fmt.Print(linter.Lint(source))
	return 0
}

// parseFile prints the syntax tree; the debug form shows every node with
// ERROR and MISSING markers.
func parseFile(file string, debug bool) int {
	source, ok := readSource(file)
	if !ok {
		return 1
	}

	p := parser.NewParser(linter.Lint(source))
	p.Parse()

	if debug {
		fmt.Print(p.DebugTree())
		return 0
	}

	fmt.Print(p.PrettyTree())
	if p.HasError() {
		fmt.Fprintf(os.Stderr, "%s\n", p.ErrorMessage())
		return 1
	}
	return 0
}

func showUsage() {
	fmt.Println("pseudo - interpretor de pseudocod")
	fmt.Println()
	fmt.Println("Utilizare: pseudo <comanda> [argumente]")
	fmt.Println()
	fmt.Println("Comenzi:")
	fmt.Println("  run <fisier>     Ruleaza un program                  (alias: r)")
	fmt.Println("  lint <fisier>    Afiseaza forma normalizata          (alias: l)")
	fmt.Println("  parse <fisier>   Afiseaza arborele sintactic         (alias: p)")
	fmt.Println("  debug <fisier>   Afiseaza arborele complet cu erori  (alias: d)")
	fmt.Println("  repl             Sesiune interactiva                 (alias: i)")
	fmt.Println("  watch <fisier>   Ruleaza din nou la fiecare salvare  (alias: w)")
	fmt.Println("  serve [adresa]   Porneste serverul playground        (alias: s)")
	fmt.Println("  help             Afiseaza acest mesaj")
	fmt.Println("  version          Afiseaza versiunea")
	fmt.Println()
	fmt.Println("Exemplu:")
	fmt.Println("  pseudo run program.pseudo")
}
