package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"snnmeter/internal/device"
	"snnmeter/internal/storage"
	meterapi "snnmeter/pkg/snnmeter"
)

const reportsDir = "reports"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "summarize":
		return runSummarize(ctx, args[1:])
	case "summaries":
		return runSummaries(ctx, args[1:])
	case "profiles":
		return runProfiles(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "snnmeter.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := meterapi.New(meterapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Init(ctx); err != nil {
		return err
	}
	fmt.Printf("initialized %s store with %d built-in device profiles\n", *storeKind, len(device.BuiltinProfiles()))
	return nil
}

func runSummarize(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("summarize", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a summary config JSON file")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "snnmeter.db", "sqlite database path")
	reports := fs.String("reports-dir", reportsDir, "directory for report artifacts")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configPath == "" {
		return errors.New("config path is required")
	}

	req, err := loadSummarizeRequestFromConfig(*configPath)
	if err != nil {
		return err
	}

	client, err := meterapi.New(meterapi.Options{StoreKind: *storeKind, DBPath: *dbPath, ReportsDir: *reports})
	if err != nil {
		return err
	}
	defer client.Close()

	result, err := client.Summarize(ctx, req)
	if err != nil {
		return err
	}

	fmt.Print(result.Report)
	fmt.Printf("summary id: %s\n", result.SummaryID)
	fmt.Printf("artifacts: %s\n", result.ArtifactsDir)
	if result.Statistics.ClampEvents > 0 {
		fmt.Printf("warning: %d negative layer contributions were clamped to zero\n", result.Statistics.ClampEvents)
	}
	return nil
}

func runSummaries(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("summaries", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max summaries to list")
	jsonOut := fs.Bool("json", false, "emit summaries list as JSON")
	reports := fs.String("reports-dir", reportsDir, "directory for report artifacts")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := meterapi.New(meterapi.Options{ReportsDir: *reports})
	if err != nil {
		return err
	}
	defer client.Close()

	items, err := client.Summaries(ctx, meterapi.SummariesRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("no summaries found")
		return nil
	}

	if *jsonOut {
		type summariesItem struct {
			SummaryID     string `json:"summary_id"`
			ModelName     string `json:"model_name,omitempty"`
			TotalParams   int64  `json:"total_params"`
			TotalMultAdds int64  `json:"total_mult_adds"`
			DeviceCount   int    `json:"device_count"`
			CreatedAtUTC  string `json:"created_at_utc"`
		}
		out := make([]summariesItem, 0, len(items))
		for _, item := range items {
			out = append(out, summariesItem(item))
		}
		return printJSON(out)
	}

	fmt.Printf("%-38s %-20s %16s %16s %8s %s\n", "SUMMARY", "MODEL", "PARAMS", "MULT-ADDS", "DEVICES", "CREATED")
	for _, item := range items {
		fmt.Printf("%-38s %-20s %16s %16s %8d %s\n",
			item.SummaryID,
			item.ModelName,
			humanize.Comma(item.TotalParams),
			humanize.Comma(item.TotalMultAdds),
			item.DeviceCount,
			item.CreatedAtUTC,
		)
	}
	return nil
}

func runProfiles(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("profiles", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "emit device profiles as JSON")
	profilesPath := fs.String("file", "", "load device profiles from a JSON file instead of built-ins")
	if err := fs.Parse(args); err != nil {
		return err
	}

	profiles := device.BuiltinProfiles()
	if *profilesPath != "" {
		loaded, err := device.LoadProfiles(*profilesPath)
		if err != nil {
			return err
		}
		profiles = loaded
	}

	if *jsonOut {
		return printJSON(profiles)
	}

	fmt.Printf("%-24s %18s %18s %8s\n", "PROFILE", "J/SYNAPSE-EVENT", "J/NEURON-EVENT", "SPIKING")
	for _, profile := range profiles {
		fmt.Printf("%-24s %18.3e %18.3e %8t\n",
			profile.Name,
			profile.EnergyPerSynapseEvent,
			profile.EnergyPerNeuronEvent,
			profile.Spiking,
		)
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	summaryID := fs.String("summary-id", "", "summary to export")
	latest := fs.Bool("latest", false, "export the most recent summary")
	outDir := fs.String("out", "exports", "destination directory")
	reports := fs.String("reports-dir", reportsDir, "directory for report artifacts")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := meterapi.New(meterapi.Options{ReportsDir: *reports})
	if err != nil {
		return err
	}
	defer client.Close()

	result, err := client.Export(ctx, meterapi.ExportRequest{SummaryID: *summaryID, Latest: *latest, OutDir: *outDir})
	if err != nil {
		return err
	}
	fmt.Printf("exported %s to %s\n", result.SummaryID, result.Directory)
	return nil
}

func printJSON(value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: snnmeterctl <init|summarize|summaries|profiles|export> [flags]", msg)
}
