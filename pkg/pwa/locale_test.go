package pwa

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huanfeng/adminpwa/pkg/models"
	"github.com/huanfeng/adminpwa/pkg/utils"
)

func TestNormalizeLanguage(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"en":          "en",
		"zh_CN.UTF-8": "zh-CN",
		"pt-br":       "pt-BR",
		"de_DE@euro":  "de-DE",
		" ar ":        "ar",
	}
	for input, want := range tests {
		got, err := NormalizeLanguage(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	for _, input := range []string{"", "C", "POSIX", "C.UTF-8", "not a language!"} {
		_, err := NormalizeLanguage(input)
		assert.Error(t, err, input)
	}
}

func TestDirection(t *testing.T) {
	t.Parallel()

	for _, lang := range []string{"ar", "he", "fa", "ur", "ku", "dv", "ps", "sd", "yi", "ar-EG", "he-IL"} {
		assert.Equal(t, DirRTL, Direction(lang), lang)
	}
	for _, lang := range []string{"en", "zh-CN", "de", "ja", "arn", "", "pt-BR"} {
		assert.Equal(t, DirLTR, Direction(lang), lang)
	}
}

func TestAcceptLanguageLocale(t *testing.T) {
	t.Parallel()

	got, err := AcceptLanguageLocale("fr-CA,fr;q=0.9,en;q=0.8").Fn()
	require.NoError(t, err)
	assert.Equal(t, "fr-CA", got)

	_, err = AcceptLanguageLocale("").Fn()
	assert.Error(t, err)
}

func TestDetectColor_FirstSuccessWins(t *testing.T) {
	t.Parallel()

	calls := 0
	probes := []ColorProbe{
		{Name: "panics", Fn: func() (string, error) { calls++; panic("host not booted") }},
		{Name: "errors", Fn: func() (string, error) { calls++; return "", errors.New("no panel") }},
		{Name: "garbage", Fn: func() (string, error) { calls++; return "blurple", nil }},
		{Name: "green", Fn: func() (string, error) { calls++; return "rgb(0, 128, 0)", nil }},
		{Name: "never", Fn: func() (string, error) { calls++; return "#000000", nil }},
	}

	got, ok := DetectColor(probes, utils.NewNopLogger())
	require.True(t, ok)
	assert.Equal(t, "#008000", got)
	assert.Equal(t, 4, calls)
}

func TestDetectColor_AllMiss(t *testing.T) {
	t.Parallel()

	_, ok := DetectColor([]ColorProbe{{Name: "nil"}, StaticColor("empty", "")}, utils.NewNopLogger())
	assert.False(t, ok)
}

func TestHostColorProbes_Order(t *testing.T) {
	t.Parallel()

	host := models.HostConfig{
		PrimaryColor: "#111111",
		Panels: []models.PanelConfig{
			{ID: "app", PrimaryColor: "#222222"},
			{ID: "admin", Active: true, PrimaryColor: "#333333"},
		},
	}
	got, ok := DetectColor(HostColorProbes(host), utils.NewNopLogger())
	require.True(t, ok)
	assert.Equal(t, "#333333", got)

	host.Panels[1].Active = false
	got, _ = DetectColor(HostColorProbes(host), utils.NewNopLogger())
	assert.Equal(t, "#222222", got)

	host.Panels = nil
	got, _ = DetectColor(HostColorProbes(host), utils.NewNopLogger())
	assert.Equal(t, "#111111", got)
}

func TestHostLocaleProbes_Order(t *testing.T) {
	t.Parallel()

	probes := HostLocaleProbes(models.HostConfig{Locale: "fr"}, AcceptLanguageLocale("de-DE"))
	names := make([]string, len(probes))
	for i, p := range probes {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"host-locale", "accept-language", "environment", "platform"}, names)

	got, err := probes[0].Fn()
	require.NoError(t, err)
	assert.Equal(t, "fr", got)
}
