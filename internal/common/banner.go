package common

import (
	"fmt"
	"io"
	"strings"

	"github.com/ternarybob/banner"
)

// PrintBanner displays the startup banner for a command to w.
func PrintBanner(w io.Writer, config *Config, logger *Logger, mode string) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	hr := lineColor + strings.Repeat("═", 60) + banner.ColorReset

	art := []string{
		` 888     888 8888888 .d8888b.  8888888 888`,
		` 888     888   888  d88P  Y88b   888   888`,
		` Y88b   d88P   888  888    888   888   888`,
		`  Y88b d88P    888  888          888   888`,
		`   Y88o88P     888  888  88888   888   888`,
		`    Y888P      888  888    888   888   888`,
		`     Y8P     8888888 "Y8888P88 8888888 88888888`,
	}

	fmt.Fprintf(w, "\n%s\n\n", hr)
	for _, line := range art {
		fmt.Fprintf(w, "%s%s%s\n", textColor, line, banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s  Daily Portfolio Confidence Analyst%s\n\n", textColor, banner.ColorReset)
	fmt.Fprintf(w, "%s\n\n", hr)

	kvLines := [][2]string{
		{"Version", GetVersion()},
		{"Commit", GetGitCommit()},
		{"Environment", config.Environment},
		{"Mode", mode},
		{"Data", config.Storage.Path},
	}
	for _, kv := range kvLines {
		fmt.Fprintf(w, "%s  %-14s %s%s\n", textColor, kv[0], kv[1], banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s\n\n", hr)

	logger.Info().
		Str("version", GetVersion()).
		Str("commit", GetGitCommit()).
		Str("environment", config.Environment).
		Str("mode", mode).
		Msg("Vigil started")
}
