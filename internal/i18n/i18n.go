package i18n

import (
	"embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

var (
	bundleOnce      sync.Once
	bundle          *goi18n.Bundle
	bundleErr       error
	localizer       *goi18n.Localizer
	currentLanguage = language.English

	// SupportedLanguages are the languages with a message file
	SupportedLanguages = []language.Tag{
		language.English,
		language.Arabic,
		language.German,
		language.Spanish,
		language.French,
		language.Italian,
		language.Japanese,
		language.Dutch,
		language.Portuguese,
		language.Russian,
		language.Chinese,
	}
	supportedMatcher = language.NewMatcher(SupportedLanguages)
)

//go:embed locales/*.toml
var localeFS embed.FS

// Init initializes the CLI localizer and chooses the best language using:
//  1. langOverride (from --lang)
//  2. PWA_LANG environment variable
//  3. LC_ALL / LC_MESSAGES / LANG
//  4. Fallback to English
func Init(langOverride string) error {
	b, err := loadBundle()
	if err != nil {
		return fmt.Errorf("load locales: %w", err)
	}

	chosen := selectLanguage(langOverride)
	localizer = goi18n.NewLocalizer(b, chosen.String(), language.English.String())
	currentLanguage = chosen

	return nil
}

// T translates a message by ID in the CLI language.
// If translation fails, it falls back to the message ID to avoid empty output.
func T(id string, data ...map[string]interface{}) string {
	if localizer == nil {
		// Best-effort initialization without override.
		if err := Init(""); err != nil {
			fmt.Fprintf(os.Stderr, "i18n init failed: %v\n", err)
		}
	}

	if localizer == nil {
		return id
	}
	return localize(localizer, id, data...)
}

// CurrentLanguage returns the chosen CLI language tag.
func CurrentLanguage() language.Tag {
	return currentLanguage
}

// Translator localizes messages for one page language
type Translator struct {
	lang      language.Tag
	localizer *goi18n.Localizer
}

// For returns a translator for a BCP 47 tag such as "ar" or "zh-CN".
// Unsupported languages fall back to English.
func For(lang string) *Translator {
	tag := MatchLanguage(lang)
	t := &Translator{lang: tag}
	if b, err := loadBundle(); err == nil {
		t.localizer = goi18n.NewLocalizer(b, tag.String(), language.English.String())
	}
	return t
}

// Language returns the matched language
func (t *Translator) Language() language.Tag {
	return t.lang
}

// T translates a message by ID
func (t *Translator) T(id string, data ...map[string]interface{}) string {
	if t == nil || t.localizer == nil {
		return id
	}
	return localize(t.localizer, id, data...)
}

// MatchLanguage returns the supported language closest to lang
func MatchLanguage(lang string) language.Tag {
	tag, err := language.Parse(normalizeLocale(lang))
	if err != nil {
		return language.English
	}
	matched, _, confidence := supportedMatcher.Match(tag)
	if confidence == language.No {
		return language.English
	}
	base, _ := matched.Base()
	return language.Make(base.String())
}

func localize(l *goi18n.Localizer, id string, data ...map[string]interface{}) string {
	templateData := map[string]interface{}{}
	if len(data) > 0 && data[0] != nil {
		templateData = data[0]
	}

	msg, err := l.Localize(&goi18n.LocalizeConfig{
		MessageID:      id,
		TemplateData:   templateData,
		PluralCount:    findPluralCount(templateData),
		DefaultMessage: &goi18n.Message{ID: id, Other: id},
	})
	if err != nil || msg == "" {
		return id
	}
	return msg
}

func selectLanguage(langOverride string) language.Tag {
	var candidates []string
	if langOverride != "" {
		candidates = append(candidates, langOverride)
	}

	for _, key := range []string{"PWA_LANG", "LC_ALL", "LC_MESSAGES", "LANG"} {
		if val := strings.TrimSpace(os.Getenv(key)); val != "" {
			candidates = append(candidates, val)
		}
	}

	// Locale variables are often missing on Windows and in minimal containers.
	if len(candidates) == 0 {
		candidates = append(candidates, PlatformLocales()...)
	}

	var tags []language.Tag
	for _, cand := range candidates {
		tag, err := language.Parse(normalizeLocale(cand))
		if err == nil {
			tags = append(tags, tag)
		}
	}

	if len(tags) == 0 {
		return language.English
	}

	tag, _, _ := supportedMatcher.Match(tags...)
	base, _ := tag.Base()
	return language.Make(base.String())
}

// normalizeLocale turns locale strings like zh_CN.UTF-8 into zh-CN
func normalizeLocale(s string) string {
	clean := strings.TrimSpace(s)
	if idx := strings.IndexAny(clean, ".@"); idx >= 0 {
		clean = clean[:idx]
	}
	return strings.ReplaceAll(clean, "_", "-")
}

func loadBundle() (*goi18n.Bundle, error) {
	bundleOnce.Do(func() {
		b := goi18n.NewBundle(language.English)
		b.RegisterUnmarshalFunc("toml", toml.Unmarshal)

		entries, err := localeFS.ReadDir("locales")
		if err != nil {
			bundleErr = err
			return
		}
		for _, entry := range entries {
			file := "locales/" + entry.Name()
			if _, err := b.LoadMessageFileFS(localeFS, file); err != nil {
				bundleErr = fmt.Errorf("load %s: %w", file, err)
				return
			}
		}
		bundle = b
	})
	return bundle, bundleErr
}

func findPluralCount(data map[string]interface{}) interface{} {
	if data == nil {
		return nil
	}

	for _, key := range []string{"count", "Count", "total", "Total"} {
		if val, ok := data[key]; ok {
			return val
		}
	}

	return nil
}
