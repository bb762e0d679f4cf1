package main

import (
	"flag"
	"fmt"
)

// setCustomUsage configures the flag set with a structured usage function.
func setCustomUsage(fs *flag.FlagSet) {
	fs.Usage = func() {
		out := fs.Output()

		fmt.Fprintf(out, "\nepibench\n")
		fmt.Fprintf(out, "Benchmark driver for the trigonometric monomial algebra.\n\n")
		fmt.Fprintf(out, "Usage:\n  %s [flags]\n\nFlags:\n", fs.Name())

		fs.VisitAll(func(f *flag.Flag) {
			name, usage := flag.UnquoteUsage(f)
			flagSig := fmt.Sprintf("-%s", f.Name)
			if len(name) > 0 {
				flagSig += " " + name
			}

			fmt.Fprintf(out, "  %-25s %s", flagSig, usage)
			if f.DefValue != "" && f.DefValue != "0" && f.DefValue != "false" {
				fmt.Fprintf(out, " (default %s)", f.DefValue)
			}
			fmt.Fprintln(out)
		})
		fmt.Fprintln(out)
	}
}
