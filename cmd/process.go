package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var processCmd = &cobra.Command{
	Use:   "process <recording-id>",
	Short: "Run the transcription pipeline for a stored recording",
	Long: `Run the transcription pipeline for a recording that is already stored.

The run summary is printed as JSON. Recordings that are done or failed are
processed again and receive a new note.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	app, err := newApplication(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	handoff, err := app.pipeline.Process(cmd.Context(), args[0])
	if handoff != nil {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(handoff); encErr != nil && err == nil {
			err = encErr
		}
	}
	return err
}
