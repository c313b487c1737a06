package cmd

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/killallgit/voicenote-api/internal/services/recordings"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	ingestMime      string
	ingestNoProcess bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Store a local audio file and transcribe it",
	Long: `Store a local audio file as a new recording and run the pipeline on it.

Example:
  voicenote-api ingest memo.wav
  voicenote-api ingest memo.bin --mime audio/mpeg
  voicenote-api ingest memo.wav --no-process`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestMime, "mime", "", "content type of the file (guessed from the extension when empty)")
	ingestCmd.Flags().BoolVar(&ingestNoProcess, "no-process", false, "store the recording without transcribing it")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return err
	}

	contentType := ingestMime
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(path))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	app, err := newApplication(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	recording, err := app.recordings.Store(cmd.Context(), recordings.Upload{
		Filename:    filepath.Base(path),
		ContentType: contentType,
		Size:        stat.Size(),
		Body:        f,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Stored recording %s (%s, %d bytes)\n", recording.ID, contentType, stat.Size())
	if ingestNoProcess {
		return nil
	}

	handoff, err := app.pipeline.Process(cmd.Context(), recording.ID)
	if err != nil {
		return err
	}
	log.Debug().EmbedObject(handoff).Msg("ingest finished")
	fmt.Fprintf(out, "Note %s written to %s (%d of %d segments failed)\n",
		handoff.NoteID, handoff.NotePath, handoff.FailedSegments, len(handoff.Segments))
	return nil
}
