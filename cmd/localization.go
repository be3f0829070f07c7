package cmd

import (
	"github.com/spf13/cobra"

	"github.com/huanfeng/adminpwa/internal/i18n"
)

// applyCommandLocalization updates command and flag descriptions after i18n is initialized.
func applyCommandLocalization() {
	// Root command metadata and flags.
	rootCmd.Short = i18n.T("cmd.root.short")
	rootCmd.Long = i18n.T("cmd.root.long")
	localizeFlags(rootCmd, true, map[string]string{
		"config":     "flags.config",
		"public-dir": "flags.publicDir",
		"verbose":    "flags.verbose",
		"debug":      "flags.debug",
		"log-file":   "flags.logFile",
		"no-color":   "flags.noColor",
		"lang":       "flags.lang",
	})

	// Command descriptions.
	setupCmd.Short = i18n.T("cmd.setup.short")
	setupCmd.Long = i18n.T("cmd.setup.long")
	localizeFlags(setupCmd, false, map[string]string{
		"publish-assets": "flags.publishAssets",
		"generate-icons": "flags.generateIcons",
		"source":         "flags.source",
		"validate":       "flags.validate",
		"deep":           "flags.deep",
		"force":          "flags.force",
		"output":         "flags.output",
	})

	serveCmd.Short = i18n.T("cmd.serve.short")
	serveCmd.Long = i18n.T("cmd.serve.long")
	localizeFlags(serveCmd, false, map[string]string{"addr": "flags.addr"})

	versionCmd.Short = i18n.T("cmd.version.short")
	versionCmd.Long = i18n.T("cmd.version.long")
}

func localizeFlags(cmd *cobra.Command, persistent bool, ids map[string]string) {
	flags := cmd.Flags()
	if persistent {
		flags = cmd.PersistentFlags()
	}
	for name, id := range ids {
		if flag := flags.Lookup(name); flag != nil {
			flag.Usage = i18n.T(id)
		}
	}
}
