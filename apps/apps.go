// Package apps maps launcher installations to their on-disk layout and to
// the compatibility-tool variant they consume.
package apps

import (
	"fmt"
	"strings"

	"protonup-go/variants"
)

// App is a game launcher.
type App int

const (
	Steam App = iota
	Lutris
)

// AllApps lists every app in catalog order.
var AllApps = []App{Steam, Lutris}

func (a App) String() string {
	switch a {
	case Steam:
		return "Steam"
	case Lutris:
		return "Lutris"
	default:
		return "Unknown"
	}
}

// WineVersion returns the variant of Wine used by the app.
func (a App) WineVersion() variants.Variant {
	switch a {
	case Lutris:
		return variants.WineGE
	default:
		return variants.GEProton
	}
}

// Installations returns the native and Flatpak installations of the app.
func (a App) Installations() []Installation {
	switch a {
	case Lutris:
		return []Installation{LutrisNative, LutrisFlatpak}
	default:
		return []Installation{SteamNative, SteamFlatpak}
	}
}

// Installation is a concrete launcher deployment.
type Installation int

const (
	SteamNative Installation = iota
	SteamFlatpak
	LutrisNative
	LutrisFlatpak
)

// AllInstallations lists every installation in catalog order.
var AllInstallations = []Installation{SteamNative, SteamFlatpak, LutrisNative, LutrisFlatpak}

func (i Installation) String() string {
	switch i {
	case SteamNative:
		return `Steam "Native"`
	case SteamFlatpak:
		return "Steam Flatpak"
	case LutrisNative:
		return `Lutris "Native"`
	case LutrisFlatpak:
		return "Lutris Flatpak"
	default:
		return "Unknown"
	}
}

// Slug is the name used for the installation in flags and config files.
func (i Installation) Slug() string {
	switch i {
	case SteamNative:
		return "steam"
	case SteamFlatpak:
		return "steam-flatpak"
	case LutrisNative:
		return "lutris"
	case LutrisFlatpak:
		return "lutris-flatpak"
	default:
		return ""
	}
}

// DefaultInstallDir is the directory tool archives are extracted into.
// The leading ~ is left for the caller to expand.
func (i Installation) DefaultInstallDir() string {
	switch i {
	case SteamFlatpak:
		return "~/.var/app/com.valvesoftware.Steam/data/Steam/compatibilitytools.d/"
	case LutrisNative:
		return "~/.local/share/lutris/runners/wine/"
	case LutrisFlatpak:
		return "~/.var/app/net.lutris.Lutris/data/lutris/runners/wine/"
	default:
		return "~/.steam/steam/compatibilitytools.d/"
	}
}

// BaseDir is the launcher root. It only tells whether the launcher is installed.
func (i Installation) BaseDir() string {
	switch i {
	case SteamFlatpak:
		return "~/.var/app/com.valvesoftware.Steam/data/Steam/"
	case LutrisNative:
		return "~/.local/share/lutris/"
	case LutrisFlatpak:
		return "~/.var/app/net.lutris.Lutris/data/lutris/"
	default:
		return "~/.steam/steam/"
	}
}

// AsApp returns the launcher behind the installation.
func (i Installation) AsApp() App {
	switch i {
	case LutrisNative, LutrisFlatpak:
		return Lutris
	default:
		return Steam
	}
}

// IsFlatpak reports whether the installation is sandboxed.
func (i Installation) IsFlatpak() bool {
	return i == SteamFlatpak || i == LutrisFlatpak
}

// Variant returns the compatibility-tool family installed into i.
func (i Installation) Variant() variants.Variant {
	return i.AsApp().WineVersion()
}

// GithubParameters returns the release feed parameters for the installation.
func (i Installation) GithubParameters() variants.GithubParameters {
	return i.Variant().Parameters()
}

// ParseInstallation resolves a slug such as "steam-flatpak".
func ParseInstallation(s string) (Installation, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for _, inst := range AllInstallations {
		if inst.Slug() == want {
			return inst, nil
		}
	}
	return 0, fmt.Errorf("unknown installation %q (expected one of %s)", s, strings.Join(Slugs(), ", "))
}

// Slugs returns the slug of every installation in catalog order.
func Slugs() []string {
	slugs := make([]string, 0, len(AllInstallations))
	for _, inst := range AllInstallations {
		slugs = append(slugs, inst.Slug())
	}
	return slugs
}
