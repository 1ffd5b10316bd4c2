package cli

import (
	"fmt"
	"os"

	"github.com/snogglethorpe/snogray-test/internal/config"
	"github.com/snogglethorpe/snogray-test/internal/errors"
)

// starterConfig is the annotated configuration written by "init". Every
// value matches the built-in default, so the file is a template to edit,
// not a behavior change.
var starterConfig = fmt.Sprintf(`# snogray-test configuration.

# Renderer executables.
snogray: %s
pbrt: %s

# External image tools; leave empty for the built-in pipeline.
image_diff: ""
image_convert: ""

# Default maximum average-intensity delta for images to compare equal.
# Tests override this with a compare_threshold parameter.
threshold: %g

# Reference update policy: no, new, or all.
update: %s

# Where stored reference images live, relative to each test directory.
ref_subdir: %s

# Renderer output and reference image extensions.
output_ext: %s
ref_ext: %s

# Width reference images are downsampled to.
downsample_width: %d
`,
	config.DefaultSnogray, config.DefaultPbrt, config.DefaultThreshold,
	config.DefaultUpdate, config.DefaultRefSubdir, config.DefaultOutputExt,
	config.DefaultRefExt, config.DefaultDownsampleWidth)

// cmdInit writes a starter configuration file. It never overwrites an
// existing one.
func cmdInit(args []string) int {
	path := ConfigFileName
	if len(args) > 0 {
		if args[0] == "-h" || args[0] == "--help" {
			printInitUsage()
			return errors.ExitSuccess
		}
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil {
		out.ErrorPrefix("%s already exists", path)
		return errors.ExitConfigError
	}

	if err := os.WriteFile(path, []byte(starterConfig), 0644); err != nil {
		out.ErrorPrefix("writing %s: %v", path, err)
		return errors.ExitRuntimeError
	}

	out.Info("Created %s", path)
	return errors.ExitSuccess
}

func printInitUsage() {
	out.HelpTitle("snogray-test init - write a starter configuration file")
	out.HelpSection("Usage:")
	out.HelpUsage("snogray-test init [file]")
	out.Println("")
	out.Println("  Writes an annotated configuration file with every default value.")
	out.Println("  The default file name is " + ConfigFileName + ".")
	out.Println("")
}
