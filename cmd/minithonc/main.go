// Command minithonc compiles minithon source into three-address code.
package main

import (
	"os"

	"github.com/you-not-fish/minithon/cmd/minithonc/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
