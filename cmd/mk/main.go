// Markkeep CLI entry point
//
// Markkeep (mk) is a local-first bookmark manager. Every mutation is
// recorded in a change ledger, and a sync pass ships the accumulated
// changes (or a full snapshot on first run) when the device is online.
package main

import "github.com/jbctechsolutions/markkeep/internal/presentation/cli/commands"

func main() {
	commands.Execute()
}
