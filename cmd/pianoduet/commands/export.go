package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cbegin/pianoduet-go"
	"github.com/cbegin/pianoduet-go/internal/sheets"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <sheet|file.yaml>",
	Short: "Render a sheet to a WAV file",
	Long: `Render both hands of a sheet offline into a 16-bit stereo WAV at 44100 Hz.

The output defaults to the sheet name with a .wav extension.

Examples:
  pianoduet --synth export wedding
  pianoduet export song.yaml -o out/song.wav --no-limiter`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := sheets.Load(args[0])
		if err != nil {
			return err
		}
		opts, err := options()
		if err != nil {
			return err
		}
		out := exportOutput
		if out == "" {
			out = defaultOutput(args[0])
		}
		if err := pianoduet.Export(cmd.Context(), sc, loadRepository(), out, opts...); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %s\n", out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output WAV file")
}

func defaultOutput(ref string) string {
	base := filepath.Base(ref)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".wav"
}
