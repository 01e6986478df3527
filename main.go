package main

import (
	"bufio"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"imagedupes/cluster"
	"imagedupes/config"
	"imagedupes/database"
	"imagedupes/deleter"
	"imagedupes/imageloader"
	"imagedupes/logging"
	"imagedupes/report"
	"imagedupes/scanner"
	"imagedupes/signalhandler"
	"imagedupes/utils"
)

func main() {
	// Set up proper signal handling
	signalhandler.SetupHandler()

	// Parse command line arguments into a map
	args := utils.ParseArguments()

	folder, hasFolder := args["folder"]
	if !hasFolder || folder == "" {
		utils.PrintUsage()
		os.Exit(1)
	}

	// Load configuration, command-line overrides on top
	cfgPath, cfgRequired := "imagedupes.yaml", false
	if custom, ok := args["config"]; ok && custom != "" {
		cfgPath, cfgRequired = custom, true
	}
	cfg, err := config.Load(cfgPath, cfgRequired)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if err := cfg.ApplyArgs(args); err != nil {
		log.Fatalf("Invalid argument: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	_, debugMode := args["debug"]
	logger, err := logging.Setup(debugMode, args["logfile"])
	if err != nil {
		log.Fatalf("Error setting up logging: %v", err)
	}

	// Verify folder path exists and is accessible
	folderInfo, err := os.Stat(folder)
	if err != nil {
		if os.IsNotExist(err) {
			log.Fatalf("Folder path does not exist: %s", folder)
		}
		log.Fatalf("Cannot access folder path: %s (%v)", folder, err)
	}
	if !folderInfo.IsDir() {
		log.Fatalf("Path is not a directory: %s", folder)
	}

	registry := buildRegistry(cfg, logger)
	defer registry.Close()

	var cache *database.Cache
	if cfg.CachePath != "" {
		cache, err = database.Open(cfg.CachePath)
		if err != nil {
			logger.Warn("fingerprint cache unavailable, rehashing everything", "path", cfg.CachePath, "error", err)
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	_, autoMode := args["auto"]
	_, dryRun := args["dry-run"]

	fmt.Printf("Scanning folder: %s\n", folder)
	fmt.Printf("Similarity threshold: %d\n", cfg.SimilarityThreshold)
	fmt.Printf("Fingerprint: %s hash, %dx%d grid\n", cfg.HashKind, cfg.HashGridSize, cfg.HashGridSize)
	switch {
	case dryRun:
		fmt.Println("Mode: Dry run")
	case autoMode:
		fmt.Println("Mode: Automatic")
	default:
		fmt.Println("Mode: Interactive")
	}
	fmt.Println(strings.Repeat("=", 80))

	workers := cfg.Workers
	if workers <= 0 {
		workers = signalhandler.GetOptimalProcs()
	}

	startTime := time.Now()

	result, err := scanner.Scan(registry, scanner.Options{
		FolderPath:   folder,
		Extensions:   cfg.Extensions,
		GridSize:     cfg.HashGridSize,
		HashKind:     cfg.Kind(),
		Workers:      workers,
		Cache:        cache,
		ShowProgress: true,
		Logger:       logger,
	})
	if err != nil {
		log.Fatalf("Error scanning folder: %v", err)
	}

	fmt.Printf("Found %d image files, fingerprinted %d successfully.\n", result.FilesFound, len(result.Records))

	clusters, err := cluster.Partition(result.Records, cfg.SimilarityThreshold)
	if err != nil {
		// Only an internal invariant violation lands here.
		log.Fatalf("Error clustering images: %v", err)
	}

	plan := report.Build(clusters, result)
	report.Render(os.Stdout, plan)

	if plan.Empty() || dryRun {
		fmt.Printf("\nTotal scan time: %v\n", time.Since(startTime).Round(time.Millisecond))
		return
	}

	paths := plan.PathsToDelete()
	if !autoMode && !confirmDeletion(len(paths)) {
		fmt.Println("Deletion cancelled.")
		return
	}

	summary := deleter.DeleteFiles(paths, logger)
	for _, failed := range summary.Failures() {
		fmt.Printf("Error deleting %s: %v\n", failed.Path, failed.Err)
	}

	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Printf("Successfully deleted %d duplicate files.\n", summary.Deleted)
	fmt.Printf("Total space freed: %.2f MB\n", float64(summary.BytesFreed)/(1024*1024))
	fmt.Printf("Total execution time: %v\n", time.Since(startTime).Round(time.Millisecond))
}

// buildRegistry assembles the image loaders for this run.
func buildRegistry(cfg config.Config, logger *slog.Logger) *imageloader.Registry {
	registry := imageloader.NewRegistry(imageloader.NewDefaultLoader(cfg.Extensions))

	if cfg.IncludeHeic {
		registry.Register(&imageloader.HeifLoader{})
	}
	if cfg.IncludeRaw {
		rawLoader, err := imageloader.NewRawPreviewLoader()
		if err != nil {
			logger.Warn("RAW support disabled", "error", err)
		} else {
			registry.Register(rawLoader)
		}
	}
	return registry
}

// confirmDeletion blocks on a yes/no prompt.
func confirmDeletion(count int) bool {
	fmt.Printf("\nDelete %d duplicate files? (yes/no): ", count)
	response, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "yes" || response == "y"
}
