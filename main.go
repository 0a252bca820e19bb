// The main package for the mediaharvest executable.
package main

import (
	"github.com/mediaharvest/mediaharvest/cmd"
)

func main() {
	cmd.Execute()
}
