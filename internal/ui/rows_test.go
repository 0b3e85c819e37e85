package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"labdash/internal/domain"
)

func TestTruncateIsEscapeAware(t *testing.T) {
	t.Parallel()

	styled := "  Alice " + badgeStyle.Render("admin") + " " + dimStyle.Render("@alice-the-administrator")
	got := truncate(styled, 20)

	require.LessOrEqual(t, ansi.StringWidth(got), 20, "truncation bounds the display width")
	require.True(t, strings.HasSuffix(ansi.Strip(got), "…"), "cut lines end with an ellipsis")
	// A cut inside an escape sequence would leave a dangling ESC byte in
	// the visible content.
	require.NotContains(t, ansi.Strip(got), "\x1b")
}

func TestTruncateLeavesShortLinesAlone(t *testing.T) {
	t.Parallel()

	styled := "  Bob " + badgeStyle.Render("bot")
	require.Equal(t, styled, truncate(styled, 80))
	require.Equal(t, "tiny", truncate("tiny", 3), "degenerate widths pass through")
}

func TestRenderUserRowTruncatesStyledBadges(t *testing.T) {
	t.Parallel()

	u := domain.User{
		Name:     "A very long display name that overflows the pane",
		Username: "averylongusername",
		IsAdmin:  true,
		Bot:      true,
		State:    "active",
	}
	row := renderUserRow(u, false, 30)
	require.LessOrEqual(t, ansi.StringWidth(row), 30)
}
