package cmd

import (
	"fmt"

	"github.com/killallgit/voicenote-api/pkg/audio"
	"github.com/spf13/cobra"
)

var (
	sampleSeconds   float64
	sampleFrequency float64
	sampleRate      int
	sampleOut       string
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Write a test tone WAV file",
	Long: `Write a mono 16-bit PCM sine tone, handy for exercising the upload
and segmentation path without a real recording.

Example:
  voicenote-api sample --seconds 400 --out long.wav`,
	RunE: runSample,
}

func init() {
	rootCmd.AddCommand(sampleCmd)

	defaults := audio.DefaultToneOptions()
	sampleCmd.Flags().Float64Var(&sampleSeconds, "seconds", defaults.Seconds, "length of the tone in seconds")
	sampleCmd.Flags().Float64Var(&sampleFrequency, "freq", defaults.Frequency, "tone frequency in Hz")
	sampleCmd.Flags().IntVar(&sampleRate, "rate", defaults.SampleRate, "sample rate in Hz")
	sampleCmd.Flags().StringVarP(&sampleOut, "out", "o", "sample.wav", "output path")
}

func runSample(cmd *cobra.Command, args []string) error {
	opts := audio.DefaultToneOptions()
	opts.Seconds = sampleSeconds
	opts.Frequency = sampleFrequency
	opts.SampleRate = sampleRate

	if err := audio.WriteToneFile(sampleOut, opts); err != nil {
		return err
	}

	info, err := audio.Inspect(sampleOut)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s, %d Hz, %d-bit, %d channel)\n",
		sampleOut, info.Duration, info.SampleRate, info.BitDepth, info.Channels)
	return nil
}
