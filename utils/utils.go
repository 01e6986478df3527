package utils

import (
	"fmt"
	"os"
	"strings"
)

// ParseArguments converts command-line arguments into a map of flags and
// values. Flags take the --key=value or --key value form; bare flags map to
// "true". The first non-flag argument is stored under "folder" so the usual
// invocation is just `imagedupes PATH`.
func ParseArguments() map[string]string {
	args := make(map[string]string)

	for i := 1; i < len(os.Args); i++ {
		arg := os.Args[i]

		// Handle flags with equals sign (--key=value)
		if strings.HasPrefix(arg, "--") && strings.Contains(arg, "=") {
			parts := strings.SplitN(arg, "=", 2)
			args[strings.TrimPrefix(parts[0], "--")] = parts[1]
			continue
		}

		// Handle flags without equals sign (--key value or bare --key)
		if strings.HasPrefix(arg, "--") {
			flagName := strings.TrimPrefix(arg, "--")
			if i+1 >= len(os.Args) || strings.HasPrefix(os.Args[i+1], "--") || boolFlags[flagName] {
				args[flagName] = "true"
			} else {
				args[flagName] = os.Args[i+1]
				i++
			}
			continue
		}

		// Positional folder argument
		if _, ok := args["folder"]; !ok {
			args["folder"] = arg
		}
	}

	return args
}

// boolFlags never consume a following value.
var boolFlags = map[string]bool{
	"auto":         true,
	"dry-run":      true,
	"debug":        true,
	"no-cache":     true,
	"include-raw":  true,
	"include-heic": true,
}

// PrintUsage outputs the command-line usage instructions.
func PrintUsage() {
	fmt.Printf("Usage:\n")
	fmt.Printf("  %s <folder> [--threshold=N] [--auto] [--dry-run] [options]\n", os.Args[0])
	fmt.Printf("\nParameters:\n")
	fmt.Printf("  --folder       : Path to folder containing images to scan (or pass it positionally)\n")
	fmt.Printf("  --threshold    : Max similarity distance for duplicates (default: 5; 0-5 very similar, 5-10 similar)\n")
	fmt.Printf("  --grid         : Hash grid size (default: 8, i.e. 64-bit fingerprints)\n")
	fmt.Printf("  --hash         : Hash kind: average or perception (default: average)\n")
	fmt.Printf("  --config       : Path to YAML config file\n")
	fmt.Printf("  --cache        : Path to fingerprint cache database\n")
	fmt.Printf("  --no-cache     : Disable the fingerprint cache\n")
	fmt.Printf("  --workers      : Parallel extraction workers (default: auto)\n")
	fmt.Printf("  --include-raw  : Also scan camera RAW files (needs exiftool)\n")
	fmt.Printf("  --include-heic : Also scan HEIC/HEIF files\n")
	fmt.Printf("  --auto         : Delete duplicates without asking for confirmation\n")
	fmt.Printf("  --dry-run      : Show the deletion plan and delete nothing\n")
	fmt.Printf("  --debug        : Enable debug logging\n")
	fmt.Printf("  --logfile      : Also write logs to this file\n")
	fmt.Printf("\nExamples:\n")
	fmt.Printf("  %s ~/Pictures\n", os.Args[0])
	fmt.Printf("  %s ~/Pictures --threshold=3 --dry-run\n", os.Args[0])
	fmt.Printf("  %s --folder=/mnt/photos --auto --no-cache\n", os.Args[0])
}
