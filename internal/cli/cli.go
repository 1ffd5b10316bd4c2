// Package cli provides command-line interface functionality for snogray-test.
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/snogglethorpe/snogray-test/internal/errors"
	"github.com/snogglethorpe/snogray-test/internal/output"
)

// Version is set at build time.
var Version = "dev"

var out = output.New()

// wantsHelp returns true if args contain -h or --help.
func wantsHelp(args []string) bool {
	for _, arg := range args {
		if arg == "-h" || arg == "--help" {
			return true
		}
	}
	return false
}

// Run executes the CLI with the given arguments and returns an exit code.
func Run(args []string) int {
	if wantsHelp(args) {
		printUsage()
		return errors.ExitSuccess
	}

	if len(args) > 0 {
		switch args[0] {
		case "help":
			printUsage()
			return errors.ExitSuccess
		case "--version", "version":
			fmt.Printf("snogray-test %s\n", Version)
			return errors.ExitSuccess
		}
	}

	opts, remaining, err := parseGlobalFlags(args)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.ExitConfigError
	}

	if len(remaining) > 0 && remaining[0] == "init" {
		return cmdInit(remaining[1:])
	}

	return cmdRun(remaining, opts)
}

// GlobalOptions holds parsed global flags. Every value overrides the
// corresponding configuration file setting.
type GlobalOptions struct {
	Quiet        bool
	ConfigPath   string
	Update       string
	LogDir       string
	Snogray      string
	SnograyDir   string
	Pbrt         string
	ImageDiff    string
	ImageConvert string

	Threshold    float64
	ThresholdSet bool
}

// parseGlobalFlags manually parses global flags from arguments.
//
// Manual parsing is used instead of stdlib flag package because flags can
// appear anywhere in the argument list, mixed with test paths, and the
// error messages need usage hints.
func parseGlobalFlags(args []string) (*GlobalOptions, []string, error) {
	opts := &GlobalOptions{}
	var remaining []string

	valueFlags := map[string]*string{
		"--config":        &opts.ConfigPath,
		"--update":        &opts.Update,
		"--log-dir":       &opts.LogDir,
		"--snogray":       &opts.Snogray,
		"--snogray-dir":   &opts.SnograyDir,
		"--pbrt":          &opts.Pbrt,
		"--image-diff":    &opts.ImageDiff,
		"--image-convert": &opts.ImageConvert,
	}

	i := 0
	for i < len(args) {
		arg := args[i]

		if arg == "-q" || arg == "--quiet" {
			opts.Quiet = true
			i++
			continue
		}

		name, value, hasValue := splitFlag(arg)

		if name == "--threshold" {
			if !hasValue {
				if i+1 >= len(args) {
					return nil, nil, fmt.Errorf("--threshold requires a value")
				}
				value = args[i+1]
				i++
			}
			f, err := strconv.ParseFloat(value, 64)
			if err != nil || f < 0 {
				return nil, nil, fmt.Errorf("invalid --threshold value %q\n  example: snogray-test --threshold=0.002 scenes/", value)
			}
			opts.Threshold = f
			opts.ThresholdSet = true
			i++
			continue
		}

		if dst, ok := valueFlags[name]; ok {
			if !hasValue {
				if i+1 >= len(args) {
					return nil, nil, fmt.Errorf("%s requires a value", name)
				}
				value = args[i+1]
				i++
			}
			*dst = value
			i++
			continue
		}

		if strings.HasPrefix(arg, "-") {
			return nil, nil, fmt.Errorf("unknown option %q", arg)
		}
		remaining = append(remaining, arg)
		i++
	}

	return opts, remaining, nil
}

// splitFlag separates a --name=value argument.
func splitFlag(arg string) (name, value string, hasValue bool) {
	if idx := strings.Index(arg, "="); idx >= 0 && strings.HasPrefix(arg, "--") {
		return arg[:idx], arg[idx+1:], true
	}
	return arg, "", false
}

func printUsage() {
	w := output.New()

	w.HelpTitle("snogray-test - regression-test harness for the snogray renderer")

	w.HelpSection("Usage:")
	w.HelpUsage("snogray-test [flags] [path...]   Run the tests under each path")
	w.HelpUsage("snogray-test init                Write a starter configuration file")

	w.HelpSection("Description:")
	w.Println("  Scene files (.lua, .pbrt) and test scripts (.sh) under each path are")
	w.Println("  rendered or executed, and their output images compared against stored")
	w.Println("  reference images within a numeric tolerance. Directories recurse into")
	w.Println("  the subdirectories their SUBDIRS manifest names, in order.")
	w.Println("")

	w.HelpSection("Flags:")
	w.HelpFlag("--config=<file>", "Configuration file (default snogray-test.yaml)", widthFlag)
	w.HelpFlag("--update=<mode>", "Reference update policy: no, new, all", widthFlag)
	w.HelpFlag("--threshold=<delta>", "Default comparison threshold", widthFlag)
	w.HelpFlag("--log-dir=<dir>", "Record failure logs and images here", widthFlag)
	w.HelpFlag("--snogray=<path>", "Renderer executable", widthFlag)
	w.HelpFlag("--snogray-dir=<dir>", "Directory with renderer companion tools", widthFlag)
	w.HelpFlag("--pbrt=<path>", "Reference renderer executable", widthFlag)
	w.HelpFlag("--image-diff=<path>", "External image-diff tool", widthFlag)
	w.HelpFlag("--image-convert=<path>", "External image-convert tool", widthFlag)
	w.HelpFlag("-q, --quiet", "Minimal output (failures only)", widthFlag)
	w.HelpFlag("-h, --help", "Show this help", widthFlag)
	w.HelpFlag("--version", "Show version", widthFlag)

	w.HelpSection("Examples:")
	w.HelpExample("snogray-test scenes/", "Run all tests under scenes/")
	w.HelpExample("snogray-test --update=new scenes/", "Also create missing references")
	w.HelpExample("snogray-test --log-dir=failures scenes/", "Keep failing images around")
	w.Println("")
}

const widthFlag = 22
