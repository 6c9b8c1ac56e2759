package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cbegin/pianoduet-go"
	"github.com/cbegin/pianoduet-go/internal/score"
	"github.com/cbegin/pianoduet-go/internal/sheets"
)

var playExport string

var playCmd = &cobra.Command{
	Use:   "play <sheet|file.yaml>",
	Short: "Play a sheet live",
	Long: `Play both hands of a sheet through the system audio device.

With --export the sheet is rendered to a WAV file while it plays.
Press Ctrl-C to stop.

Examples:
  pianoduet --synth play wedding
  pianoduet play song.yaml --export song.wav --timing sequential`,
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
		pl, err := pianoduet.NewPlayer(loadRepository(), opts...)
		if err != nil {
			return fmt.Errorf("open audio: %w", err)
		}
		defer pl.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		events := pl.Watch()
		if playExport != "" {
			err = pl.PlayAndExport(ctx, sc, playExport)
		} else {
			err = pl.Play(ctx, sc)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "playing %s (%.0f bpm)\n", sc.Title, float64(sc.Tempo))
		done := make(chan error, 1)
		go func() { done <- pl.Wait() }()
		for {
			select {
			case ev := <-events:
				printEvent(out, ev)
			case err := <-done:
				for len(events) > 0 {
					printEvent(out, <-events)
				}
				if errors.Is(err, context.Canceled) {
					fmt.Fprintln(out, "stopped")
					return nil
				}
				return err
			}
		}
	},
}

func init() {
	playCmd.Flags().StringVar(&playExport, "export", "", "also render the sheet to this WAV file")
}

var pitchNames = score.DefaultPitchTable()

func printEvent(w io.Writer, ev pianoduet.PlaybackEvent) {
	switch ev.Kind {
	case pianoduet.EventNoteTriggered:
		if !verbose {
			return
		}
		names := make([]string, 0, len(ev.Pitches))
		for _, p := range ev.Pitches {
			if name, ok := pitchNames.Name(p); ok {
				names = append(names, name)
			} else {
				names = append(names, fmt.Sprintf("?%d", p))
			}
		}
		fmt.Fprintf(w, "%8.3fs  %-5s #%-3d %s\n", ev.Offset.Seconds(), ev.Hand, ev.Index, strings.Join(names, " "))
	case pianoduet.EventHandFinished:
		fmt.Fprintf(w, "%s hand finished\n", ev.Hand)
	case pianoduet.EventPlaybackEnded:
		if ev.Err == nil {
			fmt.Fprintln(w, "playback completed")
		}
	}
}
