// cmd/pseudo/commands/watch.go
package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"pseudo/internal/runtime"
)

// WatchCommand re-runs file on every save. Editors replace files on write,
// so the watch sits on the directory and filters for the file name.
func WatchCommand(file string) error {
	if _, err := os.Stat(file); err != nil {
		return fmt.Errorf("nu pot urmari fisierul: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("nu pot porni watcher-ul: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(file)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("nu pot urmari directorul %s: %w", dir, err)
	}

	fmt.Printf("Urmaresc %s (Ctrl+C pentru oprire)\n\n", file)
	runOnce(file)

	var lastRun time.Time
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(file) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			// Editors fire bursts of events per save.
			if time.Since(lastRun) < 100*time.Millisecond {
				continue
			}
			lastRun = time.Now()
			fmt.Printf("\n--- %s ---\n", time.Now().Format("15:04:05"))
			runOnce(file)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch: %v\n", err)
		}
	}
}

func runOnce(file string) {
	source, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Eroare: %v\n", err)
		return
	}

	io := runtime.NewStdIO()
	defer io.Destroy()

	rt := runtime.New(io)
	if !rt.Load(string(source)) {
		fmt.Fprintf(os.Stderr, "%s\n", rt.Error())
		return
	}
	if rt.Run() == runtime.StateError {
		fmt.Fprintf(os.Stderr, "Eroare la linia %d: %s\n", rt.CurrentLine(), rt.Error())
	}
	fmt.Println()
}
