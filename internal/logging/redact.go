package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

// Graph API long-lived tokens start with EAA.
var graphTokenPattern = regexp.MustCompile(`^EAA[A-Za-z0-9]{20,}$`)

// RedactOptions lists the attributes and values masked in every log line.
func RedactOptions() []masq.Option {
	return []masq.Option{
		masq.WithFieldName("password"),
		masq.WithFieldName("app_password"),
		masq.WithFieldName("token"),
		masq.WithFieldName("access_token"),
		masq.WithFieldName("accessToken"),
		masq.WithFieldName("accessJwt"),
		masq.WithFieldName("refreshJwt"),
		masq.WithFieldName("authorization"),
		masq.WithFieldPrefix("secret"),
		masq.WithRegex(graphTokenPattern),
	}
}

// NewReplaceAttr returns a slog ReplaceAttr func that applies RedactOptions.
func NewReplaceAttr(opts ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(append(RedactOptions(), opts...)...)
}
