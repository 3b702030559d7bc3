package comms

import "strings"

// Nick extracts the nickname from a raw sender such as "alice!~a@host".
// Channel status prefixes such as @ and + are dropped.
func Nick(sender string) string {
	nick := strings.TrimLeft(sender, ":@+~&%")
	if i := strings.IndexAny(nick, "!@"); i >= 0 {
		nick = nick[:i]
	}
	return nick
}

// TruncateText truncates text to maxLen characters, adding "..." if truncated.
func TruncateText(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return text[:maxLen]
	}
	return text[:maxLen-3] + "..."
}
