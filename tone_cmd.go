package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/versoapp/verso/internal/tone"
)

var (
	toneDuration  time.Duration
	toneFrequency float64
	toneOutput    string

	toneCmd = &cobra.Command{
		Use:   "tone",
		Short: "Write a sine tone WAV file",
		Long:  paragraph(fmt.Sprintf("\nWrite the %s played when no audio can be produced, for listening to it ahead of time or for testing audio output.", keyword("placeholder tone"))),
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if toneFrequency <= 0 {
				return fmt.Errorf("frequency must be positive, got %v", toneFrequency)
			}
			clip := tone.Generate(toneDuration, toneFrequency)
			if err := os.WriteFile(toneOutput, clip, 0o644); err != nil { //nolint:gosec
				return fmt.Errorf("unable to write tone file: %w", err)
			}
			fmt.Printf("Wrote %s (%s) to %s.\n", humanize.Bytes(uint64(len(clip))), toneDuration, toneOutput)
			return nil
		},
	}
)

func init() {
	toneCmd.Flags().DurationVarP(&toneDuration, "duration", "d", 2*time.Second, "tone length")
	toneCmd.Flags().Float64VarP(&toneFrequency, "frequency", "f", 440, "tone frequency in Hz")
	toneCmd.Flags().StringVarP(&toneOutput, "output", "o", "tone.wav", "output file")
}
