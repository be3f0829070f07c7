package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/huanfeng/adminpwa/internal/config"
	"github.com/huanfeng/adminpwa/internal/errors"
	"github.com/huanfeng/adminpwa/internal/i18n"
	"github.com/huanfeng/adminpwa/pkg/icons"
	"github.com/huanfeng/adminpwa/pkg/models"
	"github.com/huanfeng/adminpwa/pkg/pwa"
	"github.com/huanfeng/adminpwa/pkg/serviceworker"
	"github.com/huanfeng/adminpwa/pkg/utils"
	"github.com/huanfeng/adminpwa/pkg/validate"
)

var (
	successText = color.New(color.FgGreen).SprintFunc()
	warnText    = color.New(color.FgYellow).SprintFunc()
	errorText   = color.New(color.FgRed).SprintFunc()
	headingText = color.New(color.Bold).SprintFunc()
)

// setupOptions are the parsed setup flags
type setupOptions struct {
	PublishAssets bool
	GenerateIcons bool
	Source        string
	Validate      bool
	Deep          bool
	Force         bool
	Output        string
	ConfigPath    string
}

var setupOpts setupOptions

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Publish, generate and validate PWA assets",
	Long: `Without flags, setup prints the resolved configuration and derived URLs.
Use --publish-assets to write pwa.yaml, manifest.json, sw.js, browserconfig.xml
and offline.html, --generate-icons to build the icon set and --validate to
check that every asset is present.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadAppConfig()
		if err != nil {
			return err
		}
		opts := setupOpts
		opts.ConfigPath = configFile
		return runSetup(cmd.Context(), cmd.OutOrStdout(), *app, opts, utils.GetGlobalLogger())
	},
}

func init() {
	flags := setupCmd.Flags()
	flags.BoolVar(&setupOpts.PublishAssets, "publish-assets", false, "write pwa.yaml, manifest.json, sw.js, browserconfig.xml and offline.html")
	flags.BoolVar(&setupOpts.GenerateIcons, "generate-icons", false, "generate the icon set from a source image")
	flags.StringVar(&setupOpts.Source, "source", "", "source image for --generate-icons (SVG or raster)")
	flags.BoolVar(&setupOpts.Validate, "validate", false, "check that the PWA assets are present")
	flags.BoolVar(&setupOpts.Deep, "deep", false, "with --validate, also inspect manifest and service worker contents")
	flags.BoolVarP(&setupOpts.Force, "force", "f", false, "overwrite an existing pwa.yaml")
	flags.StringVarP(&setupOpts.Output, "output", "o", "table", "status output format: table, yaml or json")

	rootCmd.AddCommand(setupCmd)
}

// resolverFor builds a resolver probing the host described in app
func resolverFor(app models.Config, logger utils.Logger) *pwa.Resolver {
	return pwa.NewResolver(app.PWA,
		pwa.WithColorProbes(pwa.HostColorProbes(app.Host)...),
		pwa.WithLocaleProbes(pwa.HostLocaleProbes(app.Host)...),
		pwa.WithLogger(logger),
	)
}

func runSetup(ctx context.Context, out io.Writer, app models.Config, opts setupOptions, logger utils.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := resolverFor(app, logger).Resolve(pwa.Overrides{})

	if !opts.PublishAssets && !opts.GenerateIcons && !opts.Validate {
		return printStatus(out, app, cfg, opts, logger)
	}

	fmt.Fprintln(out, "🚀 "+i18n.T("cmd.setup.starting"))

	if opts.PublishAssets {
		fmt.Fprintln(out, "\n📦 "+i18n.T("cmd.setup.publishing"))
		if err := publishAssets(out, app, cfg, opts); err != nil {
			return err
		}
		fmt.Fprintln(out, successText("✅ "+i18n.T("cmd.setup.published")))
	}

	if opts.GenerateIcons {
		fmt.Fprintln(out, "\n🎨 "+i18n.T("cmd.setup.generating"))
		if err := generateIcons(ctx, out, app, cfg, opts.Source, logger); err != nil {
			return err
		}
		fmt.Fprintln(out, successText("✅ "+i18n.T("cmd.setup.iconsGenerated")))
	}

	if opts.Validate {
		fmt.Fprintln(out, "\n🔍 "+i18n.T("cmd.setup.validating"))
		if err := runValidation(ctx, out, app, cfg, opts.Deep, logger); err != nil {
			return err
		}
	}

	fmt.Fprintln(out, "\n"+successText("🎉 "+i18n.T("cmd.setup.completed")))
	return nil
}

// publishAssets writes the config template and every static asset
func publishAssets(out io.Writer, app models.Config, cfg models.PwaConfig, opts setupOptions) error {
	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = config.FileName + ".yaml"
	}
	if _, err := os.Stat(configPath); err == nil && !opts.Force {
		fmt.Fprintln(out, "   "+warnText(i18n.T("cmd.setup.kept", map[string]interface{}{"Path": configPath})))
	} else {
		if err := config.SaveTemplate(configPath, config.DefaultTemplate(pwa.Defaults())); err != nil {
			return fileSystemError(err, "CONFIG_WRITE_FAILED", "Failed to write configuration template", configPath)
		}
		fmt.Fprintln(out, "   "+i18n.T("cmd.setup.wrote", map[string]interface{}{"Path": configPath}))
	}

	assets, err := renderAssets(cfg)
	if err != nil {
		return err
	}
	for _, asset := range assets {
		path := filepath.Join(app.PublicDir, asset.name)
		if err := writeFile(path, asset.data); err != nil {
			return err
		}
		fmt.Fprintln(out, "   "+i18n.T("cmd.setup.wrote", map[string]interface{}{"Path": path}))
	}
	return nil
}

type publishedAsset struct {
	name string
	data []byte
}

// renderAssets renders manifest.json, sw.js, browserconfig.xml and offline.html
func renderAssets(cfg models.PwaConfig) ([]publishedAsset, error) {
	renderErr := func(asset string, err error) error {
		return errors.WrapError(err, errors.ErrorTypeRender, "RENDER_FAILED", "Failed to render "+asset).
			WithContext("asset", asset)
	}

	var manifest bytes.Buffer
	enc := json.NewEncoder(&manifest)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(pwa.BuildManifest(cfg)); err != nil {
		return nil, renderErr("manifest.json", err)
	}

	offline, err := pwa.RenderOffline(cfg)
	if err != nil {
		return nil, renderErr("offline.html", err)
	}

	script, err := serviceworker.Render(cfg.ServiceWorker, serviceworker.Options{
		AppName:     cfg.Name,
		Scope:       cfg.Scope,
		IconPath:    cfg.Icons.OutputPath,
		OfflineHTML: offline,
	})
	if err != nil {
		return nil, renderErr("sw.js", err)
	}

	browserconfig, err := pwa.MarshalBrowserConfig(cfg)
	if err != nil {
		return nil, renderErr("browserconfig.xml", err)
	}

	return []publishedAsset{
		{name: "manifest.json", data: manifest.Bytes()},
		{name: "sw.js", data: pwa.MarkGenerated("sw.js", []byte(script))},
		{name: "browserconfig.xml", data: pwa.MarkGenerated("browserconfig.xml", browserconfig)},
		{name: "offline.html", data: []byte(offline)},
	}, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fileSystemError(err, "MKDIR_FAILED", "Failed to create directory", filepath.Dir(path))
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fileSystemError(err, "WRITE_FAILED", "Failed to write file", path)
	}
	return nil
}

func fileSystemError(cause error, code, message, path string) *errors.PwaError {
	e := errors.NewFileSystemError(code, message).WithContext("path", path)
	e.Cause = cause
	return e
}

// generateIcons builds the icon set and favicon into the public directory
func generateIcons(ctx context.Context, out io.Writer, app models.Config, cfg models.PwaConfig, source string, logger utils.Logger) error {
	if source == "" {
		source = cfg.Icons.SourcePath
		if !filepath.IsAbs(source) {
			source = filepath.Join(app.PublicDir, filepath.FromSlash(source))
		}
	}
	if _, err := os.Stat(source); err != nil {
		fmt.Fprintln(out, errorText("❌ "+i18n.T("cmd.setup.sourceNotFound")+": "+source))
		fmt.Fprintln(out, "   "+i18n.T("cmd.setup.provideSource"))
		e := errors.NewMissingSourceError(source)
		e.Cause = err
		return e
	}

	if icons.IsVectorPath(source) {
		fmt.Fprintln(out, "   "+i18n.T("cmd.setup.svgDetected"))
	} else {
		fmt.Fprintln(out, "   "+i18n.T("cmd.setup.rasterDetected"))
	}

	req := icons.Request{
		Source:        source,
		OutputDir:     filepath.Join(app.PublicDir, filepath.FromSlash(cfg.Icons.OutputPath)),
		Sizes:         cfg.Icons.Sizes,
		MaskableSizes: cfg.Icons.MaskableSizes,
		ExtraSizes:    cfg.Icons.AdditionalSizes,
		FaviconPath:   filepath.Join(app.PublicDir, "favicon.ico"),
		Background:    icons.ParseColor(cfg.ThemeColor),
		Backend:       cfg.Icons.Backend,
	}

	bar := utils.NewProgressBarTo(out, icons.PlannedFiles(req), i18n.T("cmd.setup.generating"))
	gen := icons.NewGenerator(icons.WithLogger(logger), icons.WithProgress(bar))
	result, err := gen.Generate(ctx, req)
	if result != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	if result.Degraded {
		fmt.Fprintln(out, "   "+warnText("⚠️  "+i18n.T("cmd.setup.degraded")))
	}
	if len(result.Failed) > 0 {
		for _, f := range result.Failed {
			fmt.Fprintln(out, "   "+errorText("✗ "+f))
		}
		return errors.NewError(errors.ErrorTypeFileSystem, "ICON_WRITE_FAILED",
			i18n.T("cmd.setup.iconsFailed", map[string]interface{}{"Failed": len(result.Failed)})).
			WithContext("output", req.OutputDir)
	}
	return nil
}

// runValidation prints every finding and fails when any error was found
func runValidation(ctx context.Context, out io.Writer, app models.Config, cfg models.PwaConfig, deep bool, logger utils.Logger) error {
	v := validate.New(validate.Options{
		PublicDir:   app.PublicDir,
		BaseURL:     app.BaseURL,
		Environment: app.Environment,
		IconPath:    cfg.Icons.OutputPath,
		Deep:        deep,
		Translator:  i18n.For(i18n.CurrentLanguage().String()),
		Logger:      logger,
	})
	result := v.Validate(ctx)

	for _, w := range result.Warnings {
		fmt.Fprintln(out, "   "+warnText("⚠️  "+i18n.T("cmd.setup.warning")+": "+w))
	}
	if result.OK() {
		fmt.Fprintln(out, successText("✅ "+i18n.T("cmd.setup.validationPassed")))
		return nil
	}

	fmt.Fprintln(out, errorText("❌ "+i18n.T("cmd.setup.validationFailed")))
	for _, e := range result.Errors {
		fmt.Fprintln(out, "   • "+e)
	}
	return result.Err()
}

// printStatus shows the resolved configuration and derived URLs
func printStatus(out io.Writer, app models.Config, cfg models.PwaConfig, opts setupOptions, logger utils.Logger) error {
	switch strings.ToLower(opts.Output) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}

	base := strings.TrimRight(app.BaseURL, "/")
	configPath := config.UsedFile(opts.ConfigPath)
	if configPath == "" {
		configPath = "-"
	}
	backend := cfg.Icons.Backend
	if b, err := icons.SelectBackend(cfg.Icons.Backend, logger); err == nil {
		backend += " (" + b.Info().Name + ")"
	}

	fmt.Fprintln(out, headingText("📱 "+i18n.T("cmd.setup.statusTitle")))
	fmt.Fprintln(out, strings.Repeat("=", 50))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"Config file", configPath},
		{"Name", cfg.Name},
		{"Short name", cfg.ShortName},
		{"Start URL", cfg.StartURL},
		{"Scope", cfg.Scope},
		{"Display", cfg.Display},
		{"Orientation", cfg.Orientation},
		{"Theme color", cfg.ThemeColor},
		{"Background", cfg.BackgroundColor},
		{"Language", cfg.Lang + " (" + cfg.Dir + ")"},
		{"Icon source", cfg.Icons.SourcePath},
		{"Icon directory", filepath.Join(app.PublicDir, filepath.FromSlash(cfg.Icons.OutputPath))},
		{"Image backend", backend},
		{"Cache name", cfg.ServiceWorker.CacheName},
		{"Environment", app.Environment},
		{"Manifest URL", base + pwa.ManifestRoute},
		{"Service worker URL", base + pwa.ServiceWorkerRoute},
		{"Browserconfig URL", base + pwa.BrowserConfigRoute},
		{"Offline URL", base + cfg.ServiceWorker.OfflineURL},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\n", row[0], row[1])
	}
	return w.Flush()
}
