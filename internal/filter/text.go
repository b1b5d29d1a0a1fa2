package filter

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const titlePrefixWidth = 60

func titlePrefix(title string) string {
	return runewidth.Truncate(strings.TrimSpace(title), titlePrefixWidth, "...")
}
