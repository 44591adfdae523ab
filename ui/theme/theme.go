package theme

// Centralized theming for the editor UI. A Palette carries the widget colors together with
// the colors the canvas renderer paints with, so both follow the same light/dark choice.

import (
	"image/color"

	tk "modernc.org/tk9.0"

	"github.com/soocke/vision-edit-go/ui/images"
)

// Palette defines the semantic colors of one mode.
type Palette struct {
	Dark      bool
	AppBg     string
	Surface   string
	Border    string
	Primary   string
	Danger    string
	Accent    string
	Text      string
	TextMuted string

	Canvas images.Palette
}

// style names used with Style("primary.TButton") etc.
const (
	StylePrimaryButton = "primary.TButton"
	StyleDangerButton  = "danger.TButton"
	StyleAccentLabel   = "accent.TLabel"
	StyleStatusLabel   = "status.TLabel"
	StyleMutedLabel    = "muted.TLabel"
)

// Light is the default light palette.
func Light() Palette {
	return Palette{
		AppBg:     "#f7f9fb",
		Surface:   "#ffffff",
		Border:    "#d0d7de",
		Primary:   "#2563eb",
		Danger:    "#dc2626",
		Accent:    "#10b981",
		Text:      "#1e293b",
		TextMuted: "#64748b",
		Canvas: images.Palette{
			Canvas:     color.NRGBA{R: 226, G: 232, B: 240, A: 255},
			Foreground: color.NRGBA{R: 22, G: 163, B: 74, A: 255},
			Background: color.NRGBA{R: 220, G: 38, B: 38, A: 255},
			Handle:     color.NRGBA{R: 30, G: 41, B: 59, A: 255},
			BadgeText:  color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		},
	}
}

// Dark is the dark palette.
func Dark() Palette {
	return Palette{
		Dark:      true,
		AppBg:     "#0f172a",
		Surface:   "#1e293b",
		Border:    "#334155",
		Primary:   "#3b82f6",
		Danger:    "#ef4444",
		Accent:    "#10b981",
		Text:      "#f1f5f9",
		TextMuted: "#94a3b8",
		Canvas:    images.DefaultPalette,
	}
}

// For returns the palette for the requested mode.
func For(dark bool) Palette {
	if dark {
		return Dark()
	}
	return Light()
}

// Apply activates the base theme and configures the semantic widget styles.
func Apply(p Palette) {
	if p.Dark {
		_ = tk.ActivateTheme("azure dark")
	} else {
		_ = tk.ActivateTheme("azure light")
	}
	tk.App.Configure(tk.Background(p.AppBg))

	tk.StyleConfigure(StylePrimaryButton,
		tk.Background(p.Primary),
		tk.Foreground("white"),
		tk.Padding("4p 3p"),
		tk.Borderwidth(1),
		tk.Relief("ridge"),
	)
	tk.StyleConfigure(StyleDangerButton,
		tk.Background(p.Danger),
		tk.Foreground("white"),
		tk.Padding("4p 3p"),
		tk.Borderwidth(1),
		tk.Relief("ridge"),
	)
	tk.StyleConfigure(StyleAccentLabel,
		tk.Foreground(p.Primary),
		tk.Background(p.Surface),
		tk.Padding("2p 1p"),
	)
	tk.StyleConfigure(StyleStatusLabel,
		tk.Foreground("white"),
		tk.Background(p.Accent),
		tk.Padding("4p 2p"),
		tk.Borderwidth(1),
		tk.Relief("groove"),
	)
	tk.StyleConfigure(StyleMutedLabel,
		tk.Foreground(p.TextMuted),
		tk.Background(p.AppBg),
	)
}
