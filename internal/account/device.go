package account

import (
	"strings"

	"github.com/mssola/useragent"
)

// deviceLabel condenses a User-Agent header into a short "browser os" label
// recorded on the user record at login. Empty when the header is unusable.
func deviceLabel(userAgentHeader string) string {
	if userAgentHeader == "" {
		return ""
	}
	ua := useragent.New(userAgentHeader)
	name, version := ua.Browser()
	parts := make([]string, 0, 3)
	if name != "" {
		parts = append(parts, name)
	}
	if version != "" {
		parts = append(parts, version)
	}
	if os := ua.OS(); os != "" {
		parts = append(parts, os)
	}
	return strings.Join(parts, " ")
}
