// trustwatch is a pre-execution trust engine for agent actions.
package main

import "github.com/moltbot/trustwatch/internal/cli"

func main() {
	cli.Execute()
}
