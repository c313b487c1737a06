package cmd

import (
	"fmt"
	"sort"

	"github.com/killallgit/voicenote-api/internal/database"
	"github.com/spf13/cobra"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Manage the database schema for the Voicenote API.

Available subcommands:
  up      - Create or update all tables
  down    - Drop all tables
  status  - Show which tables exist`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Long: `Apply all pending database migrations.

Recordings, notes and processing runs tables are created or altered to match
the current models.`,
	RunE: runMigrateUp,
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Drop all tables",
	Long: `Drop every table owned by the Voicenote API.

Stored audio and note files are left in place. Use --dry-run to see what
would be removed.`,
	RunE: runMigrateDown,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	Long:  `Display the current status of the schema, one line per table.`,
	RunE:  runMigrateStatus,
}

var dryRun bool

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateStatusCmd)

	migrateDownCmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be dropped without dropping anything")
}

func openDatabase() (*database.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return database.Initialize(cfg.Database)
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
	return nil
}

func runMigrateDown(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	out := cmd.OutOrStdout()
	if dryRun {
		for _, table := range sortedTables(db.MigrationStatus()) {
			fmt.Fprintf(out, "would drop %s\n", table)
		}
		return nil
	}
	if err := db.DropAll(); err != nil {
		return err
	}
	fmt.Fprintln(out, "All tables dropped")
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	status := db.MigrationStatus()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-20s %s\n", "TABLE", "STATUS")
	for _, table := range sortedTables(status) {
		state := "pending"
		if status[table] {
			state = "applied"
		}
		fmt.Fprintf(out, "%-20s %s\n", table, state)
	}
	return nil
}

func sortedTables(status map[string]bool) []string {
	tables := make([]string, 0, len(status))
	for table := range status {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	return tables
}
