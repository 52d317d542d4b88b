package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/budget-report/internal/categorize"
	"github.com/dvloznov/budget-report/internal/config"
	"github.com/dvloznov/budget-report/internal/gcs"
	infraBQ "github.com/dvloznov/budget-report/internal/infra/bigquery"
	"github.com/dvloznov/budget-report/internal/ledger"
	"github.com/dvloznov/budget-report/internal/logger"
	"github.com/dvloznov/budget-report/internal/pipeline"
	"github.com/dvloznov/budget-report/internal/render"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Logs go to stderr so that report output can be piped.
	log, err := logger.Configure(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log = logger.New()
		log.Fatal().Err(err).Msg("Invalid log settings")
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "report":
		runReport(cfg, log)
	case "categorize":
		runCategorize()
	case "rules":
		runRules(log)
	case "upload":
		runUpload(cfg, log)
	case "import":
		runImport(cfg, log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Budget Report CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  report      Categorize a ledger and print the expense report")
	fmt.Println("  categorize  Print the category of each description argument")
	fmt.Println("  rules       Print the categorization rules in evaluation order")
	fmt.Println("  upload      Upload a ledger CSV to GCS")
	fmt.Println("  import      Append a ledger CSV to a BigQuery table (-create to set it up)")
	fmt.Println("  help        Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
	fmt.Println("\nLedger sources are local paths, gs://bucket/object or bq://project.dataset.table.")
}

func runReport(cfg config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	source := fs.String("source", "", "Ledger path, gs:// URI or bq:// URI")
	format := fs.String("format", "table", "Output format: table or json")
	fs.Parse(os.Args[2:])

	if *source == "" {
		log.Fatal().Msg("Usage: cli report -source PATH|gs://...|bq://... [-format table|json]")
	}
	if *format != "table" && *format != "json" {
		log.Fatal().Str("format", *format).Msg("Unknown output format")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	opener, closeFn := openerFor(ctx, cfg, *source, log)
	defer closeFn()

	src, err := opener.Open(ctx, *source)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot open ledger")
	}

	bundle, err := pipeline.BuildReport(ctx, categorize.New(), src)
	if err != nil {
		log.Fatal().Err(err).Msg("Report failed")
	}

	if *format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(bundle.View()); err != nil {
			log.Fatal().Err(err).Msg("Failed to write report")
		}
		return
	}

	opts := render.Options{
		Heading:        cfg.Presentation.Heading,
		CurrencySymbol: cfg.Presentation.CurrencySymbol,
	}
	if err := render.Report(os.Stdout, bundle, opts); err != nil {
		log.Fatal().Err(err).Msg("Failed to write report")
	}
}

// openerFor builds an Opener with only the backend the source needs, so
// local reports work without cloud credentials.
func openerFor(ctx context.Context, cfg config.Config, source string, log zerolog.Logger) (pipeline.Opener, func()) {
	opener := pipeline.Opener{AllowFiles: true}
	closeFn := func() {}

	switch {
	case gcs.IsURI(source):
		client, err := gcs.NewClient(ctx, cfg.Server.MaxUploadBytes)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create storage client")
		}
		opener.Storage = client
		closeFn = func() { client.Close() }

	case infraBQ.IsURI(source):
		project := cfg.BigQuery.Project
		if project == "" {
			ref, err := infraBQ.ParseTableURI(source)
			if err != nil {
				log.Fatal().Err(err).Msg("Invalid BigQuery URI")
			}
			project = ref.Project
		}
		repo, err := infraBQ.NewBigQueryLedgerRepository(ctx, project)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery repository")
		}
		opener.BigQuery = repo
		closeFn = func() { repo.Close() }
	}
	return opener, closeFn
}

func runCategorize() {
	fs := flag.NewFlagSet("categorize", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	c := categorize.New()
	for _, desc := range fs.Args() {
		fmt.Printf("%s\t%s\n", c.Categorize(desc), desc)
	}
}

func runRules(log zerolog.Logger) {
	if err := render.Rules(os.Stdout, categorize.New()); err != nil {
		log.Fatal().Err(err).Msg("Failed to write rules")
	}
}

func runUpload(cfg config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	bucketName := fs.String("bucket", cfg.GCS.Bucket, "GCS bucket name")
	objectName := fs.String("object", "", "GCS object name (defaults to filename)")
	filePath := fs.String("file", "", "Path to local ledger CSV")
	fs.Parse(os.Args[2:])

	if *bucketName == "" || *filePath == "" {
		log.Fatal().Msg("Usage: cli upload -bucket NAME -file PATH")
	}

	if *objectName == "" {
		*objectName = filepath.Base(*filePath)
	}

	ctx := context.Background()
	ctx = logger.WithContext(ctx, log)

	// Refuse files that would not produce a report.
	if _, err := (ledger.FileSource{Path: *filePath}).Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("Ledger is not valid")
	}

	f, err := os.Open(*filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open file")
	}
	defer f.Close()

	client, err := gcs.NewClient(ctx, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage client")
	}
	defer client.Close()

	log.Info().
		Str("bucket", *bucketName).
		Str("object", *objectName).
		Str("file", *filePath).
		Msg("Uploading file to GCS")

	if err := client.Upload(ctx, *bucketName, *objectName, f); err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to %s\n", *filePath, gcs.URI(*bucketName, *objectName))
}

func runImport(cfg config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	filePath := fs.String("file", "", "Path to local ledger CSV")
	table := fs.String("table", "", "Destination bq://project.dataset.table")
	create := fs.Bool("create", false, "Create the table if it does not exist")
	fs.Parse(os.Args[2:])

	if *filePath == "" || *table == "" {
		log.Fatal().Msg("Usage: cli import -file PATH -table bq://project.dataset.table")
	}

	ref, err := infraBQ.ParseTableURI(*table)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid BigQuery URI")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	l, err := (ledger.FileSource{Path: *filePath}).Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Ledger is not valid")
	}

	project := cfg.BigQuery.Project
	if project == "" {
		project = ref.Project
	}
	repo, err := infraBQ.NewBigQueryLedgerRepository(ctx, project)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery repository")
	}
	defer repo.Close()

	if *create {
		created, err := repo.EnsureLedgerTable(ctx, ref)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create table")
		}
		if created {
			log.Info().Str("table", ref.String()).Msg("Created ledger table")
		}
	}

	if err := repo.AppendLedger(ctx, ref, l.Records); err != nil {
		log.Fatal().Err(err).Msg("Import failed")
	}

	fmt.Printf("Imported %d rows into %s\n", len(l.Records), ref)
}
