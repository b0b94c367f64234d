package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/fim/pkg/fim/config"
	"github.com/jamesainslie/fim/pkg/fim/logging"
)

// errChangesDetected makes check exit 1 under --fail-on-change without
// printing an error.
var errChangesDetected = errors.New("changes detected")

var logger = logging.Get("cli")

// app carries the state shared by all commands of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
}

func init() {
	// Command names are matched case-insensitively: "fim CHECK" works.
	cobra.EnableCaseInsensitive = true
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "fim",
		Short: "File integrity monitor",
		Long: `fim records SHA-256 digests of files and reports which ones were
modified or deleted since the baseline was taken.

Examples:
  fim init /etc/ssh /usr/local/bin   # create a baseline
  fim add /etc/nginx/nginx.conf      # start tracking another file
  fim check                          # compare against the baseline
  fim check -o json --fail-on-change # machine-readable, exit 1 on drift
  fim update                         # accept current contents
  fim status                         # show what is tracked
  fim history                        # past operations`,
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.bootstrap,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default: ~/.config/fim/config.yaml)")
	pf.StringP("baseline", "b", "", "baseline file (default: baseline.json)")
	pf.StringSliceP("exclude", "e", nil, "exclude patterns (can be specified multiple times)")
	pf.IntP("workers", "w", 0, "override directory walker count (0=auto)")
	pf.BoolP("quiet", "q", false, "minimal output")
	pf.BoolP("verbose", "v", false, "debug output on stderr")
	pf.Bool("no-journal", false, "do not record this operation in the history")

	_ = a.v.BindPFlag("baseline", pf.Lookup("baseline"))
	_ = a.v.BindPFlag("exclude", pf.Lookup("exclude"))
	_ = a.v.BindPFlag("workers", pf.Lookup("workers"))
	_ = a.v.BindPFlag("quiet", pf.Lookup("quiet"))
	_ = a.v.BindPFlag("verbose", pf.Lookup("verbose"))
	_ = a.v.BindPFlag("no_journal", pf.Lookup("no-journal"))

	rootCmd.AddCommand(
		newInitCmd(a),
		newAddCmd(a),
		newRemoveCmd(a),
		newCheckCmd(a),
		newUpdateCmd(a),
		newStatusCmd(a),
		newHistoryCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	return run(os.Args[1:], os.Stdout, os.Stderr)
}

// run executes fim with args and returns the exit code.
func run(args []string, stdout, stderr io.Writer) int {
	defer func() { _ = logging.Close() }()

	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errChangesDetected):
		return 1
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}

// ignoreArgs accepts and discards positional arguments for commands that
// take none, so a stray argument never turns into a failure exit.
func ignoreArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		logger.Debug("ignoring extra arguments", "command", cmd.Name(), "args", args)
	}
	return nil
}

func (a *app) quiet() bool {
	return a.v.GetBool("quiet")
}

// printInfo prints a message if quiet mode is not enabled.
func (a *app) printInfo(cmd *cobra.Command, format string, args ...interface{}) {
	if !a.quiet() {
		fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
	}
}

// printResult prints a message regardless of quiet mode.
func (a *app) printResult(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
}
