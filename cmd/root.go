package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/teemow/tasknotes/internal/config"
	"github.com/teemow/tasknotes/internal/logging"
	"github.com/teemow/tasknotes/internal/server"
)

// defaultCommand runs when the first argument is not a subcommand.
const defaultCommand = "scan"

// version will be set by main
var version = "dev"

// SetVersion sets the version reported by the version command and --version
func SetVersion(v string) {
	version = v
}

// app carries the state shared by all subcommands.
type app struct {
	v          *viper.Viper
	configFile string
	debug      bool
	logFormat  string

	stdout io.Writer
	stderr io.Writer

	// storeFactory opens the note store; tests replace it.
	storeFactory server.StoreFactory
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		v:            config.NewViper(),
		stdout:       stdout,
		stderr:       stderr,
		storeFactory: server.DefaultStoreFactory,
	}
}

// loadConfig resolves the configuration. Errors are reported as
// configuration errors.
func (a *app) loadConfig() (config.Config, error) {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return config.Config{}, &configError{err: err}
	}
	return cfg, nil
}

// newLogger builds the process logger writing to w.
func (a *app) newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if a.debug {
		level = slog.LevelDebug
	}
	return logging.New(w, logging.Options{Level: level, JSON: a.logFormat == "json"})
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tasknotes",
		Short: "Count numbered tasks in Evernote notes",
		Long: `tasknotes searches your Evernote account for the notes created during one
calendar month whose title contains a filter (default "` + config.DefaultTitleFilter + `"),
downloads each note and counts the numbered task lines in it.

It can run as:
  - A standalone CLI tool: tasknotes <monthsBack> (default)
  - An MCP (Model Context Protocol) server for AI assistants: tasknotes serve

The developer token is read from AUTH_TOKEN.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.logFormat != "text" && a.logFormat != "json" {
				return usageErrorf("invalid --log-format %q (supported: text, json)", a.logFormat)
			}
			slog.SetDefault(a.newLogger(a.stderr))
			return nil
		},
	}
	rootCmd.SetVersionTemplate(`{{printf "tasknotes version %s\n" .Version}}`)
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})
	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Config file (default: $XDG_CONFIG_HOME/tasknotes/config.yaml)")
	flags.BoolVar(&a.debug, "debug", false, "Enable debug logging")
	flags.StringVar(&a.logFormat, "log-format", "text", "Log format: text or json")
	flags.String("service", config.DefaultService, "Evernote service: production, sandbox or a service URL. Can also use TASKNOTES_SERVICE env var.")
	flags.String("title-filter", config.DefaultTitleFilter, "Text the note title must contain. Can also use TASKNOTES_TITLE_FILTER env var.")
	_ = a.v.BindPFlag(config.KeyService, flags.Lookup("service"))
	_ = a.v.BindPFlag(config.KeyTitleFilter, flags.Lookup("title-filter"))

	rootCmd.AddCommand(newScanCmd(a))
	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd(a))

	return rootCmd
}

// withDefaultCommand inserts the default command unless args already start
// with a subcommand or a root-level help or version flag.
func withDefaultCommand(rootCmd *cobra.Command, args []string) []string {
	if len(args) > 0 {
		switch args[0] {
		case "-h", "--help", "--version", "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return args
		}
		for _, c := range rootCmd.Commands() {
			if c.Name() == args[0] || c.HasAlias(args[0]) {
				if c.Name() == defaultCommand {
					return negativeMonthsLast(args)
				}
				return args
			}
		}
	}
	return negativeMonthsLast(append([]string{defaultCommand}, args...))
}

// negativeMonthsLast moves a negative monthsBack directly after the scan
// command behind "--" so it is not parsed as a shorthand flag.
func negativeMonthsLast(args []string) []string {
	if len(args) < 2 || !isNegativeInt(args[1]) {
		return args
	}
	for _, arg := range args[2:] {
		if arg == "--" {
			return args
		}
	}
	out := make([]string, 0, len(args)+1)
	out = append(out, args[0])
	out = append(out, args[2:]...)
	return append(out, "--", args[1])
}

func isNegativeInt(s string) bool {
	if len(s) < 2 || s[0] != '-' {
		return false
	}
	_, err := strconv.Atoi(s)
	return err == nil
}

// run executes the CLI with args and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	return runApp(newApp(stdout, stderr), args)
}

func runApp(a *app, args []string) int {
	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(withDefaultCommand(rootCmd, args))

	err := rootCmd.Execute()
	if err == nil {
		return exitOK
	}

	msg, code := describeError(err)
	fmt.Fprintln(a.stderr, msg)
	if code == exitUsage && isUsageError(err) {
		fmt.Fprintf(a.stderr, "Run '%s --help' for usage.\n", rootCmd.Name())
	}
	return code
}

// Execute is the main entry point for the CLI application
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
