// The main package for the lyricpass executable.
package main

import (
	"github.com/JakeFAU/lyricpass/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
