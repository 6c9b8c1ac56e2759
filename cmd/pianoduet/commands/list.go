package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cbegin/pianoduet-go/internal/sheets"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the built-in sheets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, name := range sheets.Names() {
			sc, err := sheets.Builtin(name)
			if err != nil {
				return err
			}
			length := time.Duration(sc.Right.TotalBeats() * sc.Tempo.Quarter() * float64(time.Second))
			fmt.Fprintf(out, "%-12s %-24s %4.0f bpm  %v\n", name, sc.Title, float64(sc.Tempo), length.Round(100*time.Millisecond))
		}
		return nil
	},
}
