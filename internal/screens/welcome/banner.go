package welcome

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/proctor/internal/ui/theme"
)

const bannerArt = `
 ██████╗ ██████╗  ██████╗  ██████╗████████╗ ██████╗ ██████╗
 ██╔══██╗██╔══██╗██╔═══██╗██╔════╝╚══██╔══╝██╔═══██╗██╔══██╗
 ██████╔╝██████╔╝██║   ██║██║        ██║   ██║   ██║██████╔╝
 ██╔═══╝ ██╔══██╗██║   ██║██║        ██║   ██║   ██║██╔══██╗
 ██║     ██║  ██║╚██████╔╝╚██████╗   ██║   ╚██████╔╝██║  ██║
 ╚═╝     ╚═╝  ╚═╝ ╚═════╝  ╚═════╝   ╚═╝    ╚═════╝ ╚═╝  ╚═╝`

const bannerCompact = "P R O C T O R"

// BannerMinWidth is the narrowest terminal that fits the block-letter art.
const BannerMinWidth = 62

// RenderBanner returns the PROCTOR banner in color c, falling back to
// spaced capitals on narrow terminals.
func RenderBanner(width int, c color.Color) string {
	style := lipgloss.NewStyle().
		Foreground(c).
		Bold(true)

	if width < BannerMinWidth {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}

// RenderTitle is the banner in the home screen's title color.
func RenderTitle(width int) string {
	return RenderBanner(width, theme.ArcadeYellow)
}
