package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cbegin/pianoduet-go"
	"github.com/cbegin/pianoduet-go/internal/samples"
	"github.com/cbegin/pianoduet-go/internal/score"
)

var (
	// Global flags
	verbose     bool
	samplesDir  string
	synth       bool
	timingName  string
	maxDuration time.Duration
	noLimiter   bool
)

var rootCmd = &cobra.Command{
	Use:   "pianoduet",
	Short: "Two-handed piano score player and renderer",
	Long: `pianoduet plays two-handed piano scores from recorded note samples.

Each pitch is read from <samples>/<NoteName>.wav (for example C4.wav, A3.wav).
Missing samples play as silence. Use --synth to generate tones instead.

Examples:
  # List built-in sheets
  pianoduet list

  # Play a built-in sheet with synthesized tones
  pianoduet --synth play wedding

  # Play a YAML sheet and record it at the same time
  pianoduet --samples ./notes play song.yaml --export song.wav

  # Render without playing
  pianoduet export wedding -o wedding.wav`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&samplesDir, "samples", "samples", "directory holding <NoteName>.wav assets")
	rootCmd.PersistentFlags().BoolVar(&synth, "synth", false, "synthesize piano tones instead of loading samples")
	rootCmd.PersistentFlags().StringVar(&timingName, "timing", "absolute", "live timing: absolute|sequential")
	rootCmd.PersistentFlags().DurationVar(&maxDuration, "max-duration", 0, "cap on a live voice's lifetime (0 = one measure + decay)")
	rootCmd.PersistentFlags().BoolVar(&noLimiter, "no-limiter", false, "disable the soft-knee limiter before normalization")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(exportCmd)
}

func parseTiming(name string) (pianoduet.Timing, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "absolute", "":
		return pianoduet.TimingAbsolute, nil
	case "sequential":
		return pianoduet.TimingSequential, nil
	default:
		return 0, fmt.Errorf("invalid --timing %q (expected absolute|sequential)", name)
	}
}

func options() ([]pianoduet.Option, error) {
	timing, err := parseTiming(timingName)
	if err != nil {
		return nil, err
	}
	if maxDuration < 0 {
		return nil, fmt.Errorf("invalid --max-duration %v", maxDuration)
	}
	return []pianoduet.Option{
		pianoduet.WithTiming(timing),
		pianoduet.WithMaxDuration(maxDuration),
		pianoduet.WithLimiter(!noLimiter),
		pianoduet.WithLogger(slog.Default()),
	}, nil
}

func loadRepository() *samples.Repository {
	table := score.DefaultPitchTable()
	if synth {
		slog.Debug("synthesizing piano tones", "notes", len(table))
		return samples.Synthesize(table, samples.WithLogger(slog.Default()))
	}
	repo := samples.Load(os.DirFS(samplesDir), table, samples.WithLogger(slog.Default()))
	if missing := repo.Missing(); len(missing) == len(table) {
		slog.Warn("no samples found, every note will be silent; try --synth", "dir", samplesDir)
	}
	return repo
}
