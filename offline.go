package pianoduet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/cbegin/pianoduet-go/internal/compositor"
	"github.com/cbegin/pianoduet-go/internal/mixer"
	"github.com/cbegin/pianoduet-go/internal/score"
	"github.com/cbegin/pianoduet-go/internal/wavio"
)

// Render composes both hands of sc and mixes them into interleaved 16-bit
// stereo samples. The result depends only on sc, repo and the options.
func Render(sc *score.Score, repo Resolver, opts ...Option) ([]int16, error) {
	cfg := newConfig(opts)
	return render(context.Background(), sc, repo, cfg)
}

func render(ctx context.Context, sc *score.Score, repo Resolver, cfg config) ([]int16, error) {
	if sc == nil {
		return nil, fmt.Errorf("%w: nil score", score.ErrMalformedScore)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if err := checkSampleRate(repo, cfg.params.SampleRate); err != nil {
		return nil, err
	}
	comp := compositor.New(repo, cfg.params.compositorParams())

	var right, left [][2]float64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		right = comp.Render(sc.Right, sc.Tempo)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		left = comp.Render(sc.Left, sc.Tempo)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(right) != len(left) {
		cfg.logger.Debug("hands differ in length, truncating", "right", len(right), "left", len(left))
	}
	return mixer.Mix(right, left, cfg.params.mixerParams()), nil
}

// ErrSampleRateMismatch is returned when the output rate differs from the
// rate of the loaded samples.
var ErrSampleRateMismatch = errors.New("sample rate mismatch")

// checkSampleRate rejects repositories decoded at a rate other than want.
func checkSampleRate(repo Resolver, want int) error {
	if want <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", want)
	}
	r, ok := repo.(interface{ SampleRate() int })
	if !ok {
		return nil
	}
	if got := r.SampleRate(); got != want {
		return fmt.Errorf("%w: samples are %d Hz, output is %d Hz", ErrSampleRateMismatch, got, want)
	}
	return nil
}

// Export renders sc and writes it to filename as a 16-bit stereo WAV. The
// ".wav" extension is appended when missing. On failure no file is left
// behind.
func Export(ctx context.Context, sc *score.Score, repo Resolver, filename string, opts ...Option) error {
	return export(ctx, sc, repo, filename, newConfig(opts))
}

func export(ctx context.Context, sc *score.Score, repo Resolver, filename string, cfg config) error {
	filename = withWAVExt(filename)
	out, err := render(ctx, sc, repo, cfg)
	if err != nil {
		return err
	}
	if err := writeWAVFile(filename, out, cfg.params.SampleRate); err != nil {
		return err
	}
	cfg.logger.Info("score exported", "file", filename, "title", sc.Title, "frames", len(out)/2)
	return nil
}

func withWAVExt(filename string) string {
	if strings.EqualFold(filepath.Ext(filename), ".wav") {
		return filename
	}
	return filename + ".wav"
}

func writeWAVFile(filename string, samples []int16, sampleRate int) (err error) {
	dir, base := filepath.Split(filename)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()
	if err = EncodeWAV16(f, samples, sampleRate); err != nil {
		return fmt.Errorf("encode %s: %w", filename, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	if err = os.Rename(tmp, filename); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}

// EncodeWAV16 writes interleaved stereo samples as a PCM WAV stream.
func EncodeWAV16(w io.WriteSeeker, samples []int16, sampleRate int) error {
	return wavio.Encode16(w, sampleRate, 2, samples)
}
