package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/appstore/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╔═╗┌─┐┌─┐╔═╗┌┬┐┌─┐┬─┐┌─┐
  ╠═╣├─┘├─┘╚═╗ │ │ │├┬┘├┤
  ╩ ╩┴  ┴  ╚═╝ ┴ └─┘┴└─└─┘
`

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	logLevel   string
}

func main() {
	if !isTerminal(os.Stderr) || os.Getenv("NO_COLOR") != "" {
		errors.DisableColors()
	}
	if err := newRootCmd().Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError writes err to w, using the coded error format when err
// carries a code.
func printError(w io.Writer, err error) {
	var e *errors.Error
	if stderrors.As(err, &e) {
		if e.Error() != err.Error() {
			fmt.Fprintf(w, "%s\n\n", err)
		}
		fmt.Fprint(w, e.Format())
		return
	}
	fmt.Fprintf(w, "%s %s\n", errors.Colorize("\033[31m", "Error:"), err)
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "appstore",
		Short: "Cached model collections over REST with live rendering",
		Long: `appstore keeps named collections of records fetched from REST
endpoints, writes changes back to the server and re-renders a
root view whenever the data changes.

  • De-duplicated, concurrent fetches
  • Write-then-confirm updates
  • Live HTML over WebSocket
  • Reference record server with memory or S3 storage`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file (default: appstore.json or appstore.yaml in the working directory)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from config, else info)")

	rootCmd.AddCommand(
		serveCmd(flags),
		fetchCmd(flags),
		getCmd(flags),
		initCmd(),
		versionCmd(),
	)
	return rootCmd
}

// printBanner prints the ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
