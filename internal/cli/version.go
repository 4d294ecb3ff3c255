package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

// Stamped by the release build with -ldflags "-X".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the flashdeck build",
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd.OutOrStdout(), versionShort)
	},
}

func printVersion(w io.Writer, short bool) {
	if short {
		fmt.Fprintln(w, Version)
		return
	}
	fmt.Fprintf(w, "flashdeck %s\n", Version)
	fmt.Fprintf(w, "  commit:   %s\n", Commit)
	fmt.Fprintf(w, "  built:    %s\n", BuildDate)
	fmt.Fprintf(w, "  runtime:  %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// VersionString is the build identifier the server reports from /api/health.
func VersionString() string {
	if Commit == "unknown" {
		return Version
	}
	return Version + "+" + Commit
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print only the version number")
}
