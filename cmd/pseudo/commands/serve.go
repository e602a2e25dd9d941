// cmd/pseudo/commands/serve.go
package commands

import (
	"pseudo/internal/playground"
)

// ServeCommand starts the websocket playground server and blocks.
func ServeCommand(addr string) error {
	return playground.NewServer(addr).ListenAndServe()
}
