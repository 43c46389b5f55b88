package variants

import "strings"

// Variant is a compatibility-tool family with its own release feed.
type Variant int

const (
	// GEProton is the Proton fork used by Steam
	GEProton Variant = iota
	// WineGE is the Wine fork used by Lutris
	WineGE
)

// AllVariants lists every variant in catalog order.
var AllVariants = []Variant{GEProton, WineGE}

// Archive extensions published by both feeds.
const (
	ExtTarGz = ".tar.gz"
	ExtTarXz = ".tar.xz"
)

// Checksum asset suffixes, strongest digest first.
const (
	SuffixSha512 = ".sha512sum"
	SuffixSha256 = ".sha256sum"
)

// GithubParameters holds what is needed to query and interpret a release feed.
type GithubParameters struct {
	Owner            string
	Repo             string
	Extensions       []string // archive extensions that mark the primary payload
	ChecksumSuffixes []string // asset name suffixes that mark the checksum
	AssetPrefix      string   // archive name prefix absent from the directory it unpacks to
}

// InstallName maps an archive name without its extension to the directory
// the archive unpacks to.
func (p GithubParameters) InstallName(stem string) string {
	return strings.TrimPrefix(stem, p.AssetPrefix)
}

// String returns the display name of the variant
func (v Variant) String() string {
	switch v {
	case GEProton:
		return "GE-Proton"
	case WineGE:
		return "Wine-GE"
	default:
		return "Unknown"
	}
}

// IntendedApplication returns the launcher the variant is built for.
func (v Variant) IntendedApplication() string {
	switch v {
	case GEProton:
		return "Steam"
	case WineGE:
		return "Lutris"
	default:
		return "Unknown"
	}
}

// Parameters returns the release feed parameters of the variant.
func (v Variant) Parameters() GithubParameters {
	params := GithubParameters{
		Owner:            "GloriousEggroll",
		Extensions:       []string{ExtTarGz, ExtTarXz},
		ChecksumSuffixes: []string{SuffixSha512, SuffixSha256},
	}
	switch v {
	case WineGE:
		params.Repo = "wine-ge-custom"
		// wine-lutris-GE-Proton8-26-x86_64.tar.xz unpacks to lutris-GE-Proton8-26-x86_64/
		params.AssetPrefix = "wine-"
	default:
		params.Repo = "proton-ge-custom"
	}
	return params
}
