package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/huanfeng/adminpwa/internal/config"
	"github.com/huanfeng/adminpwa/internal/errors"
	"github.com/huanfeng/adminpwa/internal/i18n"
	"github.com/huanfeng/adminpwa/internal/version"
	"github.com/huanfeng/adminpwa/pkg/models"
	"github.com/huanfeng/adminpwa/pkg/utils"
)

var (
	configFile string
	publicDir  string
	verbose    bool
	debug      bool
	logFile    string
	noColor    bool
	langFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "adminpwa",
	Short: "Admin PWA - installable app assets for admin panels",
	Long: `adminpwa turns an admin panel into an installable Progressive Web App.
It resolves the PWA configuration, publishes the manifest and service worker,
generates icon sets and validates what is deployed.`,
	Version:       version.Short(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := i18n.Init(langFlag); err != nil {
			return err
		}
		return initLogging()
	},
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	// Descriptions must be localized before cobra renders help text
	if err := i18n.Init(langFromArgs(os.Args[1:])); err == nil {
		applyCommandLocalization()
	}

	if err := rootCmd.Execute(); err != nil {
		if pe := errors.Handle(err); pe != nil && pe.Type != errors.ErrorTypeUnknown {
			fmt.Fprint(os.Stderr, pe.FormatDetailed())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "config file (default: ./pwa.yaml or ~/.config/adminpwa/pwa.yaml)")
	flags.StringVar(&publicDir, "public-dir", "", "public directory assets are written to and served from")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.BoolVar(&debug, "debug", false, "debug output")
	flags.StringVar(&logFile, "log-file", "", "write logs to this file")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")
	flags.StringVar(&langFlag, "lang", "", "interface language (e.g. en, zh, ar)")
}

// initLogging configures the global logger and error handler from flags
func initLogging() error {
	if noColor {
		color.NoColor = true
	}

	cfg := utils.DefaultLoggerConfig()
	cfg.Level = utils.LogLevelWarn
	if verbose {
		cfg.Level = utils.LogLevelInfo
	}
	if debug {
		cfg.Level = utils.LogLevelDebug
	}
	cfg.Format = utils.LogFormatCompact
	cfg.EnableColor = !color.NoColor
	if logFile != "" {
		cfg.EnableFile = true
		cfg.FilePath = logFile
	}

	if err := utils.InitGlobalLogger(cfg); err != nil {
		return errors.WrapError(err, errors.ErrorTypeFileSystem, "LOG_INIT_FAILED", "Failed to initialize logging").
			WithContext("log_file", logFile)
	}
	errors.InitGlobalErrorHandler(utils.GetGlobalLogger())
	return nil
}

// loadAppConfig loads pwa.yaml and the environment, applying --public-dir
func loadAppConfig() (*models.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		e := errors.NewConfigurationError("CONFIG_LOAD_FAILED", "Failed to load configuration").
			WithContext("config", configFile)
		e.Cause = err
		return nil, e
	}
	if publicDir != "" {
		cfg.PublicDir = publicDir
	}
	return cfg, nil
}

// langFromArgs finds --lang before cobra parses flags
func langFromArgs(args []string) string {
	for i, arg := range args {
		switch {
		case strings.HasPrefix(arg, "--lang="):
			return strings.TrimPrefix(arg, "--lang=")
		case arg == "--lang" && i+1 < len(args):
			return args[i+1]
		}
	}
	return ""
}
