package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// execute runs the root command with args, resetting flag state left over
// from earlier runs of the shared command tree.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := NewRootCmd()
	resetFlags(root)

	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

// isolate points the database and media storage at a fresh temp directory
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("VOICENOTE_DATABASE_DRIVER", "sqlite")
	t.Setenv("VOICENOTE_DATABASE_PATH", filepath.Join(dir, "voicenote.db"))
	t.Setenv("VOICENOTE_STORAGE_BACKEND", "filesystem")
	t.Setenv("VOICENOTE_STORAGE_MEDIA_ROOT", filepath.Join(dir, "media"))
	t.Setenv("VOICENOTE_STORAGE_TEMP_DIR", dir)
	return dir
}
