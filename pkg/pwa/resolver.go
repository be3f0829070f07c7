package pwa

import (
	"fmt"
	"strings"

	"github.com/huanfeng/adminpwa/pkg/models"
	"github.com/huanfeng/adminpwa/pkg/utils"
)

// Overrides are per-call values layered over defaults and persisted config.
// Every field may be a Literal or a Computed closure.
type Overrides struct {
	Name                      Value[string]
	ShortName                 Value[string]
	Description               Value[string]
	StartURL                  Value[string]
	Display                   Value[string]
	Orientation               Value[string]
	Scope                     Value[string]
	BackgroundColor           Value[string]
	ThemeColor                Value[string]
	Lang                      Value[string]
	Dir                       Value[string]
	Categories                Value[[]string]
	Installation              Value[models.InstallationConfig]
	Icons                     Value[models.IconConfig]
	Shortcuts                 []ShortcutSource // non-nil replaces the configured list
	Screenshots               Value[[]models.Screenshot]
	RelatedApplications       Value[[]models.RelatedApplication]
	PreferRelatedApplications Value[bool]
	ServiceWorker             Value[models.ServiceWorkerConfig]
}

// ShortcutSource is either a shortcut with per-field values or a closure
// producing a whole shortcut. A closure returning ok=false is dropped.
type ShortcutSource struct {
	Name        Value[string]
	ShortName   Value[string]
	Description Value[string]
	URL         Value[string]
	Icons       Value[[]models.IconRef]
	Build       func() (models.Shortcut, bool)
}

// ShortcutFunc wraps a closure that returns the complete shortcut
func ShortcutFunc(fn func() (models.Shortcut, bool)) ShortcutSource {
	return ShortcutSource{Build: fn}
}

// StaticShortcut wraps a literal shortcut
func StaticShortcut(s models.Shortcut) ShortcutSource {
	return ShortcutSource{
		Name:        Literal(s.Name),
		ShortName:   Literal(s.ShortName),
		Description: Literal(s.Description),
		URL:         Literal(s.URL),
		Icons:       Literal(s.Icons),
	}
}

// Resolver merges defaults, persisted configuration and overrides
type Resolver struct {
	persisted    models.PwaConfig
	colorProbes  []ColorProbe
	localeProbes []LocaleProbe
	logger       utils.Logger
}

// Option configures a Resolver
type Option func(*Resolver)

// WithColorProbes sets the theme color probes, tried in order
func WithColorProbes(probes ...ColorProbe) Option {
	return func(r *Resolver) {
		r.colorProbes = probes
	}
}

// WithLocaleProbes sets the locale probes, tried in order
func WithLocaleProbes(probes ...LocaleProbe) Option {
	return func(r *Resolver) {
		r.localeProbes = probes
	}
}

// WithLogger sets the logger used for resolution warnings
func WithLogger(logger utils.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a resolver over a persisted configuration
func NewResolver(persisted models.PwaConfig, opts ...Option) *Resolver {
	r := &Resolver{
		persisted: persisted,
		logger:    utils.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// With returns a copy of the resolver with extra options applied, e.g.
// request-scoped locale probes.
func (r *Resolver) With(opts ...Option) *Resolver {
	cp := *r
	for _, opt := range opts {
		opt(&cp)
	}
	return &cp
}

// Resolve builds a fresh configuration. It never fails: unusable values
// are replaced with detected or fallback values and logged.
func (r *Resolver) Resolve(ov Overrides) models.PwaConfig {
	cfg := Defaults()
	mergePersisted(&cfg, r.persisted)
	r.applyOverrides(&cfg, ov)
	r.finalize(&cfg)
	return cfg
}

func mergePersisted(dst *models.PwaConfig, src models.PwaConfig) {
	setString(&dst.Name, src.Name)
	setString(&dst.ShortName, src.ShortName)
	setString(&dst.Description, src.Description)
	setString(&dst.StartURL, src.StartURL)
	setString(&dst.Display, src.Display)
	setString(&dst.Orientation, src.Orientation)
	setString(&dst.Scope, src.Scope)
	setString(&dst.BackgroundColor, src.BackgroundColor)
	setString(&dst.ThemeColor, src.ThemeColor)
	setString(&dst.Lang, src.Lang)
	setString(&dst.Dir, src.Dir)
	if len(src.Categories) > 0 {
		dst.Categories = src.Categories
	}
	mergeInstallation(&dst.Installation, src)
	mergeIcons(&dst.Icons, src.Icons)
	if src.Shortcuts != nil {
		dst.Shortcuts = src.Shortcuts
	}
	if src.Screenshots != nil {
		dst.Screenshots = src.Screenshots
	}
	if src.RelatedApplications != nil {
		dst.RelatedApplications = src.RelatedApplications
	}
	if src.PreferRelatedApplications || src.IsExplicit("prefer_related_applications") {
		dst.PreferRelatedApplications = src.PreferRelatedApplications
	}
	mergeServiceWorker(&dst.ServiceWorker, src.ServiceWorker)
}

// mergeInstallation applies each field that is non-zero or explicitly set
func mergeInstallation(dst *models.InstallationConfig, src models.PwaConfig) {
	in := src.Installation
	if in.Enabled || src.IsExplicit("installation.enabled") {
		dst.Enabled = in.Enabled
	}
	if in.PromptDelay != 0 || src.IsExplicit("installation.prompt_delay") {
		dst.PromptDelay = in.PromptDelay
	}
	if in.IOSInstructionsDelay != 0 || src.IsExplicit("installation.ios_instructions_delay") {
		dst.IOSInstructionsDelay = in.IOSInstructionsDelay
	}
	if in.ShowBannerInDebug || src.IsExplicit("installation.show_banner_in_debug") {
		dst.ShowBannerInDebug = in.ShowBannerInDebug
	}
}

func mergeIcons(dst *models.IconConfig, src models.IconConfig) {
	setString(&dst.SourcePath, src.SourcePath)
	setString(&dst.OutputPath, src.OutputPath)
	setString(&dst.Backend, src.Backend)
	if len(src.Sizes) > 0 {
		dst.Sizes = src.Sizes
	}
	if src.MaskableSizes != nil {
		dst.MaskableSizes = src.MaskableSizes
	}
	if src.AdditionalSizes != nil {
		dst.AdditionalSizes = src.AdditionalSizes
	}
}

func mergeServiceWorker(dst *models.ServiceWorkerConfig, src models.ServiceWorkerConfig) {
	setString(&dst.CacheName, src.CacheName)
	setString(&dst.OfflineURL, src.OfflineURL)
	if src.PrecacheURLs != nil {
		dst.PrecacheURLs = src.PrecacheURLs
	}
	if len(src.CachePatterns) > 0 {
		dst.CachePatterns = src.CachePatterns
	}
}

func setString(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}

// applyOverrides evaluates each set value once, in field order
func (r *Resolver) applyOverrides(cfg *models.PwaConfig, ov Overrides) {
	applyValue(&cfg.Name, ov.Name)
	applyValue(&cfg.ShortName, ov.ShortName)
	applyValue(&cfg.Description, ov.Description)
	applyValue(&cfg.StartURL, ov.StartURL)
	applyValue(&cfg.Display, ov.Display)
	applyValue(&cfg.Orientation, ov.Orientation)
	applyValue(&cfg.Scope, ov.Scope)
	applyValue(&cfg.BackgroundColor, ov.BackgroundColor)
	applyValue(&cfg.ThemeColor, ov.ThemeColor)
	applyValue(&cfg.Lang, ov.Lang)
	applyValue(&cfg.Dir, ov.Dir)
	applyValue(&cfg.Categories, ov.Categories)
	applyValue(&cfg.Installation, ov.Installation)
	if ov.Icons.IsSet() {
		mergeIcons(&cfg.Icons, ov.Icons.Get())
	}
	if ov.Shortcuts != nil {
		cfg.Shortcuts = r.evaluateShortcuts(ov.Shortcuts)
	}
	applyValue(&cfg.Screenshots, ov.Screenshots)
	applyValue(&cfg.RelatedApplications, ov.RelatedApplications)
	applyValue(&cfg.PreferRelatedApplications, ov.PreferRelatedApplications)
	if ov.ServiceWorker.IsSet() {
		mergeServiceWorker(&cfg.ServiceWorker, ov.ServiceWorker.Get())
	}
}

func applyValue[T any](dst *T, v Value[T]) {
	if v.IsSet() {
		*dst = v.Get()
	}
}

func (r *Resolver) evaluateShortcuts(sources []ShortcutSource) []models.Shortcut {
	out := make([]models.Shortcut, 0, len(sources))
	for i, src := range sources {
		if src.Build != nil {
			s, ok := src.Build()
			if !ok {
				r.logger.Debug("Shortcut %d skipped: closure returned no shortcut", i)
				continue
			}
			out = append(out, s)
			continue
		}
		var s models.Shortcut
		applyValue(&s.Name, src.Name)
		applyValue(&s.ShortName, src.ShortName)
		applyValue(&s.Description, src.Description)
		applyValue(&s.URL, src.URL)
		applyValue(&s.Icons, src.Icons)
		out = append(out, s)
	}
	return out
}

// finalize enforces the invariants of a resolved configuration
func (r *Resolver) finalize(cfg *models.PwaConfig) {
	def := Defaults()

	cfg.ThemeColor = r.resolveThemeColor(cfg.ThemeColor)

	if bg, err := NormalizeColor(cfg.BackgroundColor); err == nil {
		cfg.BackgroundColor = bg
	} else {
		r.logger.Warn("Invalid background color %q, using %s", cfg.BackgroundColor, FallbackBackgroundColor)
		cfg.BackgroundColor = FallbackBackgroundColor
	}

	cfg.Lang = r.resolveLanguage(cfg.Lang)
	dir := Direction(cfg.Lang)
	if explicit := strings.ToLower(strings.TrimSpace(cfg.Dir)); explicit != "" && explicit != dir {
		r.logger.Warn("Direction %q ignored: language %s is %s", cfg.Dir, cfg.Lang, dir)
	}
	cfg.Dir = dir

	if !contains(DisplayModes, cfg.Display) {
		r.logger.Warn("Invalid display mode %q, using %s", cfg.Display, def.Display)
		cfg.Display = def.Display
	}
	if !contains(Orientations, cfg.Orientation) {
		r.logger.Warn("Invalid orientation %q, using %s", cfg.Orientation, def.Orientation)
		cfg.Orientation = def.Orientation
	}

	if strings.TrimSpace(cfg.Name) == "" {
		cfg.Name = def.Name
	}
	if strings.TrimSpace(cfg.ShortName) == "" {
		cfg.ShortName = cfg.Name
	}
	if strings.TrimSpace(cfg.StartURL) == "" {
		cfg.StartURL = def.StartURL
	}
	if strings.TrimSpace(cfg.Scope) == "" {
		cfg.Scope = cfg.StartURL
	}

	cfg.Icons = r.finalizeIcons(cfg.Icons, def.Icons)
	cfg.Categories = cloneSlice(cfg.Categories)
	cfg.Shortcuts = r.finalizeShortcuts(cfg.Shortcuts, cfg.Icons.OutputPath)
	cfg.Screenshots = cloneSlice(cfg.Screenshots)
	cfg.RelatedApplications = cloneSlice(cfg.RelatedApplications)
	cfg.ServiceWorker = finalizeServiceWorker(cfg.ServiceWorker)
}

func (r *Resolver) resolveThemeColor(raw string) string {
	if strings.TrimSpace(raw) != "" {
		if hex, err := NormalizeColor(raw); err == nil {
			return hex
		}
		r.logger.Warn("Invalid theme color %q, probing host", raw)
	}
	if hex, ok := DetectColor(r.colorProbes, r.logger); ok {
		return hex
	}
	return FallbackThemeColor
}

func (r *Resolver) resolveLanguage(raw string) string {
	if strings.TrimSpace(raw) != "" {
		if lang, err := NormalizeLanguage(raw); err == nil {
			return lang
		}
		r.logger.Warn("Invalid language %q, probing host locale", raw)
	}
	if lang, ok := DetectLanguage(r.localeProbes, r.logger); ok {
		return lang
	}
	return DefaultLanguage
}

func (r *Resolver) finalizeIcons(icons, def models.IconConfig) models.IconConfig {
	icons.OutputPath = strings.Trim(strings.TrimSpace(icons.OutputPath), "/")
	if icons.OutputPath == "" {
		icons.OutputPath = def.OutputPath
	}
	if strings.TrimSpace(icons.SourcePath) == "" {
		icons.SourcePath = def.SourcePath
	}
	if icons.Backend == "" {
		icons.Backend = def.Backend
	}
	icons.Sizes = r.cleanSizes("sizes", icons.Sizes)
	if len(icons.Sizes) == 0 {
		icons.Sizes = def.Sizes
	}
	icons.MaskableSizes = r.cleanSizes("maskable_sizes", icons.MaskableSizes)
	icons.AdditionalSizes = r.cleanSizes("additional_sizes", icons.AdditionalSizes)
	return icons
}

// cleanSizes drops non-positive and duplicate sizes, keeping order
func (r *Resolver) cleanSizes(field string, sizes []int) []int {
	out := make([]int, 0, len(sizes))
	seen := make(map[int]bool, len(sizes))
	for _, s := range sizes {
		if s <= 0 {
			r.logger.Warn("Icon %s: skipping invalid size %d", field, s)
			continue
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func (r *Resolver) finalizeShortcuts(shortcuts []models.Shortcut, outputPath string) []models.Shortcut {
	out := make([]models.Shortcut, 0, len(shortcuts))
	for _, s := range shortcuts {
		if strings.TrimSpace(s.Name) == "" || strings.TrimSpace(s.URL) == "" {
			r.logger.Warn("Shortcut %q dropped: name and url are required", s.Name)
			continue
		}
		if s.ShortName == "" {
			s.ShortName = s.Name
		}
		if s.Description == "" {
			s.Description = s.Name
		}
		if len(s.Icons) == 0 {
			s.Icons = []models.IconRef{{Src: fmt.Sprintf("/%s/%s", outputPath, IconFileName(96, PurposeAny)), Sizes: "96x96"}}
		} else {
			s.Icons = cloneSlice(s.Icons)
		}
		out = append(out, s)
	}
	return out
}

func finalizeServiceWorker(sw models.ServiceWorkerConfig) models.ServiceWorkerConfig {
	def := DefaultServiceWorker()
	if strings.TrimSpace(sw.CacheName) == "" {
		sw.CacheName = def.CacheName
	}
	if strings.TrimSpace(sw.OfflineURL) == "" {
		sw.OfflineURL = def.OfflineURL
	}
	sw.PrecacheURLs = cloneSlice(sw.PrecacheURLs)
	if len(sw.CachePatterns) == 0 {
		sw.CachePatterns = def.CachePatterns
	}
	sw.CachePatterns = cloneSlice(sw.CachePatterns)
	return sw
}

// cloneSlice copies s and never returns nil
func cloneSlice[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}
