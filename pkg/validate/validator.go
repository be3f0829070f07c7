// Package validate checks that the published PWA assets are in place.
package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	pwaerrors "github.com/huanfeng/adminpwa/internal/errors"
	"github.com/huanfeng/adminpwa/internal/i18n"
	"github.com/huanfeng/adminpwa/pkg/pwa"
	"github.com/huanfeng/adminpwa/pkg/utils"
)

// Check codes
const (
	CodeManifestMissing      = "MANIFEST_MISSING"
	CodeServiceWorkerMissing = "SERVICE_WORKER_MISSING"
	CodeIconsMissing         = "ICONS_MISSING"
	CodeHTTPSRequired        = "HTTPS_REQUIRED"
	CodeManifestInvalid      = "MANIFEST_INVALID"
	CodeManifestField        = "MANIFEST_FIELD_MISSING"
	CodeManifestIcon         = "MANIFEST_ICON_MISSING"
	CodeServiceWorkerCache   = "SERVICE_WORKER_NO_CACHE"
)

// RequiredIconSizes must exist for a PWA to be installable
var RequiredIconSizes = []int{192, 512}

// RequiredManifestFields are checked in deep mode
var RequiredManifestFields = []string{"name", "short_name", "start_url", "display", "icons"}

// localEnvironments skip the HTTPS advisory
var localEnvironments = map[string]bool{
	"local":       true,
	"dev":         true,
	"development": true,
	"testing":     true,
}

// Level is the severity of a finding
type Level int

const (
	LevelError Level = iota
	LevelWarning
)

// Finding is one failed check
type Finding struct {
	Level   Level
	Code    string
	Message string
}

// Result collects every finding; checks never short-circuit
type Result struct {
	Errors   []string
	Warnings []string
	Findings []Finding
}

// OK reports whether no errors were found
func (r *Result) OK() bool {
	return len(r.Errors) == 0
}

// Has reports whether a finding with code was recorded
func (r *Result) Has(code string) bool {
	for _, f := range r.Findings {
		if f.Code == code {
			return true
		}
	}
	return false
}

func (r *Result) addError(code, msg string) {
	r.Errors = append(r.Errors, msg)
	r.Findings = append(r.Findings, Finding{Level: LevelError, Code: code, Message: msg})
}

func (r *Result) addWarning(code, msg string) {
	r.Warnings = append(r.Warnings, msg)
	r.Findings = append(r.Findings, Finding{Level: LevelWarning, Code: code, Message: msg})
}

// Options configures a Validator
type Options struct {
	PublicDir   string
	BaseURL     string // when set, artifacts are fetched over HTTP instead of read from disk
	Environment string
	IconPath    string // icon directory relative to PublicDir
	Deep        bool
	Client      *http.Client
	Translator  *i18n.Translator
	Logger      utils.Logger
}

// Validator runs the asset checks
type Validator struct {
	opts Options
}

// New creates a validator
func New(opts Options) *Validator {
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 10 * time.Second}
	}
	if opts.Translator == nil {
		opts.Translator = i18n.For("en")
	}
	if opts.Logger == nil {
		opts.Logger = utils.NewNopLogger()
	}
	opts.IconPath = strings.Trim(opts.IconPath, "/")
	return &Validator{opts: opts}
}

// Validate runs every check and returns all findings
func (v *Validator) Validate(ctx context.Context) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			v.opts.Logger.Error("Validation aborted: %v", r)
			result.addError("VALIDATION_ABORTED", fmt.Sprintf("validation aborted: %v", r))
		}
	}()

	t := v.opts.Translator

	manifest, manifestErr := v.load(ctx, pwa.ManifestRoute)
	if manifestErr != nil {
		v.opts.Logger.Debug("Manifest check failed: %v", manifestErr)
		result.addError(CodeManifestMissing, t.T("validation.manifestMissing"))
	}

	sw, swErr := v.load(ctx, pwa.ServiceWorkerRoute)
	if swErr != nil {
		v.opts.Logger.Debug("Service worker check failed: %v", swErr)
		result.addError(CodeServiceWorkerMissing, t.T("validation.serviceWorkerMissing"))
	}

	var missing []string
	for _, n := range RequiredIconSizes {
		route := pwa.IconURL(v.opts.IconPath, pwa.IconSpec{Size: n, Purpose: pwa.PurposeAny})
		if !v.exists(ctx, route) {
			missing = append(missing, route)
		}
	}
	if len(missing) > 0 {
		v.opts.Logger.Debug("Missing icons: %s", strings.Join(missing, ", "))
		result.addError(CodeIconsMissing, fmt.Sprintf("%s: %s", t.T("validation.iconsMissing"), strings.Join(missing, ", ")))
	}

	if v.requiresHTTPS() {
		pe := pwaerrors.NewInsecureTransportError(v.opts.BaseURL)
		result.addWarning(pe.Code, t.T("validation.httpsRequired"))
	}

	if v.opts.Deep {
		if manifestErr == nil {
			v.checkManifest(manifest, &result)
		}
		if swErr == nil && !strings.Contains(string(sw), "CACHE_NAME") {
			result.addWarning(CodeServiceWorkerCache, "service worker does not define CACHE_NAME")
		}
	}

	return result
}

// Err converts a failed result into a MissingArtifact error
func (r *Result) Err() error {
	if r.OK() {
		return nil
	}
	pe := pwaerrors.NewMissingArtifactError(r.Findings[0].Code, strings.Join(r.Errors, "; "))
	for _, f := range r.Findings {
		if f.Level == LevelError {
			pe.WithContext(f.Code, f.Message)
		}
	}
	return pe
}

// requiresHTTPS reports whether the HTTPS advisory applies
func (v *Validator) requiresHTTPS() bool {
	if localEnvironments[strings.ToLower(strings.TrimSpace(v.opts.Environment))] {
		return false
	}
	if v.opts.BaseURL == "" {
		return true
	}
	u, err := url.Parse(v.opts.BaseURL)
	return err != nil || u.Scheme != "https"
}

func (v *Validator) checkManifest(data []byte, result *Result) {
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		result.addWarning(CodeManifestInvalid, fmt.Sprintf("manifest is not valid JSON: %v", err))
		return
	}

	for _, field := range RequiredManifestFields {
		if isEmpty(doc[field]) {
			result.addWarning(CodeManifestField, fmt.Sprintf("manifest is missing required field %q", field))
		}
	}

	icons, _ := doc["icons"].([]interface{})
	for _, n := range RequiredIconSizes {
		want := fmt.Sprintf("%dx%d", n, n)
		found := false
		for _, raw := range icons {
			if icon, ok := raw.(map[string]interface{}); ok {
				if sizes, _ := icon["sizes"].(string); strings.Contains(sizes, want) {
					found = true
					break
				}
			}
		}
		if !found {
			result.addWarning(CodeManifestIcon, fmt.Sprintf("manifest has no %s icon", want))
		}
	}
}

func isEmpty(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []interface{}:
		return len(t) == 0
	}
	return false
}

// load reads an artifact by route from disk or over HTTP
func (v *Validator) load(ctx context.Context, route string) ([]byte, error) {
	if v.opts.BaseURL != "" {
		return v.fetch(ctx, route)
	}
	return os.ReadFile(v.localPath(route))
}

func (v *Validator) exists(ctx context.Context, route string) bool {
	if v.opts.BaseURL != "" {
		_, err := v.fetch(ctx, route)
		return err == nil
	}
	info, err := os.Stat(v.localPath(route))
	return err == nil && !info.IsDir()
}

func (v *Validator) localPath(route string) string {
	return filepath.Join(v.opts.PublicDir, filepath.FromSlash(strings.TrimPrefix(route, "/")))
}

func (v *Validator) fetch(ctx context.Context, route string) ([]byte, error) {
	target := strings.TrimRight(v.opts.BaseURL, "/") + route
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := v.opts.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: status %d", target, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 4<<20))
}
