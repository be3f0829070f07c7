package pwa

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// FallbackThemeColor is used when neither configuration nor any probe yields a color
const FallbackThemeColor = "#A77B56"

// FallbackBackgroundColor is the default manifest background
const FallbackBackgroundColor = "#ffffff"

var (
	hex6Pattern = regexp.MustCompile(`^#?([0-9a-fA-F]{6})$`)
	hex3Pattern = regexp.MustCompile(`^#?([0-9a-fA-F]{3})$`)
	funcPattern = regexp.MustCompile(`^(rgba?|oklch)\s*\((.*)\)$`)
	argSplit    = regexp.MustCompile(`[\s,/]+`)
)

// IsHexColor reports whether s is a #rrggbb color
func IsHexColor(s string) bool {
	return len(s) == 7 && s[0] == '#' && hex6Pattern.MatchString(s)
}

// NormalizeColor converts hex, "r,g,b", rgb()/rgba() and oklch() strings to
// a 6-digit hex color. Six-digit hex input keeps its letter case.
func NormalizeColor(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", fmt.Errorf("empty color")
	}

	if m := hex6Pattern.FindStringSubmatch(s); m != nil {
		return "#" + m[1], nil
	}
	if m := hex3Pattern.FindStringSubmatch(s); m != nil {
		h := m[1]
		return "#" + string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]}), nil
	}

	lower := strings.ToLower(s)
	if m := funcPattern.FindStringSubmatch(lower); m != nil {
		args := splitArgs(m[2])
		if m[1] == "oklch" {
			return oklchToHex(args)
		}
		return rgbToHex(args)
	}

	// bare "r,g,b" triplet
	if strings.Count(s, ",") == 2 {
		return rgbToHex(splitArgs(s))
	}

	return "", fmt.Errorf("unrecognized color %q", input)
}

func splitArgs(s string) []string {
	var out []string
	for _, part := range argSplit.Split(strings.TrimSpace(s), -1) {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func rgbToHex(args []string) (string, error) {
	if len(args) < 3 {
		return "", fmt.Errorf("rgb needs three channels, got %d", len(args))
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := parseChannel(args[i])
		if err != nil {
			return "", err
		}
		ch[i] = v
	}
	return fmt.Sprintf("#%02x%02x%02x", ch[0], ch[1], ch[2]), nil
}

func parseChannel(s string) (uint8, error) {
	if strings.HasSuffix(s, "%") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil || f < 0 || f > 100 {
			return 0, fmt.Errorf("invalid channel %q", s)
		}
		return uint8(math.Round(f * 255 / 100)), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f > 255 {
		return 0, fmt.Errorf("invalid channel %q", s)
	}
	return uint8(math.Round(f)), nil
}

// oklchToHex handles "L C H" with L in 0..1 or percent and H in degrees
func oklchToHex(args []string) (string, error) {
	if len(args) < 3 {
		return "", fmt.Errorf("oklch needs three components, got %d", len(args))
	}

	l, err := parseLightness(args[0])
	if err != nil {
		return "", err
	}

	cs := args[1]
	var c float64
	if strings.HasSuffix(cs, "%") {
		p, err := strconv.ParseFloat(strings.TrimSuffix(cs, "%"), 64)
		if err != nil {
			return "", fmt.Errorf("invalid chroma %q", cs)
		}
		c = p / 100 * 0.4
	} else if c, err = strconv.ParseFloat(cs, 64); err != nil {
		return "", fmt.Errorf("invalid chroma %q", cs)
	}
	if c < 0 {
		return "", fmt.Errorf("invalid chroma %q", cs)
	}

	hs := strings.TrimSuffix(args[2], "deg")
	var h float64
	if hs != "none" {
		if h, err = strconv.ParseFloat(hs, 64); err != nil {
			return "", fmt.Errorf("invalid hue %q", args[2])
		}
	}
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}

	return colorful.OkLch(l, c, h).Clamped().Hex(), nil
}

func parseLightness(s string) (float64, error) {
	if strings.HasSuffix(s, "%") {
		p, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil || p < 0 || p > 100 {
			return 0, fmt.Errorf("invalid lightness %q", s)
		}
		return p / 100, nil
	}
	l, err := strconv.ParseFloat(s, 64)
	if err != nil || l < 0 {
		return 0, fmt.Errorf("invalid lightness %q", s)
	}
	if l > 1 {
		// some hosts store lightness as 0..100 without the percent sign
		if l > 100 {
			return 0, fmt.Errorf("invalid lightness %q", s)
		}
		l /= 100
	}
	return l, nil
}
