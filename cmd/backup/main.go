package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sportclub/internal/config"
	"sportclub/internal/database"
	"sportclub/internal/service"
)

// clubTables lists every table holding club data, children before parents
var clubTables = []string{
	"trainer_attendance",
	"attendance_records",
	"training_sessions",
	"received_payments",
	"memberships",
	"children",
	"parents",
	"trainer_groups",
	"attendance_options",
	"training_groups",
	"sports",
	"audit_log",
	"settings",
	"sessions",
	"users",
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "export":
		err = runExport(os.Args[2:])
	case "import":
		err = runImport(os.Args[2:], os.Stdin)
	case "help", "-h", "--help":
		usage(os.Stdout)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage(os.Stderr)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("backup %s: %v", os.Args[1], err)
	}
}

// openDatabase connects with the server's configuration and brings the
// schema up to date so old backups import into the current layout
func openDatabase() (*database.DB, error) {
	db, err := database.InitializeWithConfig(config.Load())
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	output := fs.String("output", "", `output file, "-" for stdout (default: sportclub_backup_YYYYMMDD_HHMMSS.json)`)
	fs.Parse(args)

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()
	backups := service.NewBackupService(db)

	if *output == "-" {
		return backups.ExportTo(os.Stdout)
	}

	path := *output
	if path == "" {
		path = defaultOutputPath(time.Now())
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := backups.Export(path); err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("backup written but not readable: %w", err)
	}
	log.Printf("Backup %s written (%.1f KB)", path, float64(info.Size())/1024)
	return nil
}

func runImport(args []string, stdin io.Reader) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	input := fs.String("input", "", `backup file, "-" for stdin (required)`)
	replace := fs.Bool("clear", false, "delete all club data before importing")
	yes := fs.Bool("yes", false, "do not ask for confirmation with -clear")
	fs.Parse(args)

	if *input == "" {
		fs.Usage()
		return fmt.Errorf("-input is required")
	}
	if *replace && *input == "-" && !*yes {
		return fmt.Errorf("-clear with stdin input needs -yes")
	}

	var source io.Reader = stdin
	if *input != "-" {
		file, err := os.Open(*input)
		if err != nil {
			return err
		}
		defer file.Close()
		source = file
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if *replace {
		if !*yes && !confirm(stdin, os.Stdout, "This deletes every sport, group, child and staff account. Type 'yes' to continue: ") {
			log.Println("Import cancelled")
			return nil
		}
		if err := db.InTx(clearClubData); err != nil {
			return err
		}
		log.Printf("Cleared %d tables", len(clubTables))
	}

	return service.NewBackupService(db).ImportFromReader(source)
}

func clearClubData(tx *database.Tx) error {
	for _, table := range clubTables {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

func defaultOutputPath(now time.Time) string {
	return "sportclub_backup_" + now.Format("20060102_150405") + ".json"
}

// confirm asks on out and accepts only an explicit "yes"
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(answer), "yes")
}

func usage(w io.Writer) {
	fmt.Fprint(w, `Sport club backup tool

Usage:
  backup export [-output file|-]
  backup import -input file|- [-clear] [-yes]

The database is selected like the server's: DATABASE_TYPE (sqlite, postgres,
mysql), DB_PATH for SQLite and DATABASE_URL otherwise. Imports merge into
existing data unless -clear is given.
`)
}
