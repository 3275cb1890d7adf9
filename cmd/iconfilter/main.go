// Command iconfilter replaces emoticon tokens such as (angel) in HTML with
// inline icon images.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/dedene/iconfilter-cli/internal/cmd"
)

func main() {
	if err := cmd.Execute(os.Args[1:]); err != nil {
		var ee *cmd.ExitError
		if !errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, "iconfilter:", err)
		}

		os.Exit(cmd.ExitCode(err))
	}
}
