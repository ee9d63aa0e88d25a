package poster

import (
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// BlueskyMaxLength is the maximum character count for a Bluesky post.
	BlueskyMaxLength = 300

	// InstagramMaxLength is the maximum character count for an Instagram caption.
	InstagramMaxLength = 2200
)

// topicTags follow the author tags on every post.
var topicTags = []string{"투자명언", "주식명언", "투자대가", "재테크", "경제공부"}

// CardText is the text of a published card.
type CardText struct {
	AuthorNative string
	AuthorLatin  string
	QuoteNative  string
	QuoteLatin   string
}

// Attribution returns "<native> <latin>", skipping an empty half.
func (c CardText) Attribution() string {
	return strings.TrimSpace(c.AuthorNative + " " + c.AuthorLatin)
}

// Hashtags returns the author tags (spaces removed) followed by the topic
// tags.
func Hashtags(c CardText) []string {
	var tags []string
	for _, name := range []string{c.AuthorNative, c.AuthorLatin} {
		if tag := strings.Join(strings.Fields(name), ""); tag != "" {
			tags = append(tags, "#"+tag)
		}
	}
	for _, t := range topicTags {
		tags = append(tags, "#"+t)
	}
	return tags
}

// FormatCaption formats the social caption:
//
//	"<quote>"
//
//	<latin quote>
//
//	- <author> -
//
//	#tags
func FormatCaption(c CardText) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\"%s\"", c.QuoteNative)
	if c.QuoteLatin != "" {
		fmt.Fprintf(&b, "\n\n%s", c.QuoteLatin)
	}
	fmt.Fprintf(&b, "\n\n- %s -", c.Attribution())
	fmt.Fprintf(&b, "\n\n%s", strings.Join(Hashtags(c), " "))
	return b.String()
}

// FormatShortCaption fits the caption into limit characters: tags are
// dropped first, then the quote is truncated.
func FormatShortCaption(c CardText, limit int) string {
	full := FormatCaption(c)
	if FitsInLimit(full, limit) {
		return full
	}

	attribution := fmt.Sprintf("- %s -", c.Attribution())
	short := fmt.Sprintf("\"%s\"\n\n%s", c.QuoteNative, attribution)
	if FitsInLimit(short, limit) {
		return short
	}

	truncated := TruncateQuote(c.QuoteNative, limit, attribution)
	return fmt.Sprintf("\"%s\"\n\n%s", truncated, attribution)
}

// FormatTitle returns the content API title: "<YYYY-MM-DD> <author>의 투자 명언".
func FormatTitle(now time.Time, c CardText) string {
	name := c.AuthorNative
	if name == "" {
		name = c.AuthorLatin
	}
	return fmt.Sprintf("%s %s의 투자 명언", now.Format("2006-01-02"), name)
}

// FormatContentHTML returns the content API body: a heading, both quote
// texts and the hashtag links. All text is escaped.
func FormatContentHTML(c CardText) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<strong><h3>[%s (%s)의 투자 명언]</h3></strong><br>\n",
		html.EscapeString(c.AuthorNative), html.EscapeString(c.AuthorLatin))
	fmt.Fprintf(&b, "<p class=\"quote\">%s</p><br>\n", html.EscapeString(c.QuoteNative))
	if c.QuoteLatin != "" {
		fmt.Fprintf(&b, "<p class=\"quote\">%s</p><br>\n", html.EscapeString(c.QuoteLatin))
	}
	b.WriteString("<p>\n")
	for _, tag := range Hashtags(c) {
		fmt.Fprintf(&b, "    <a href=\"#\">%s</a>\n", html.EscapeString(tag))
	}
	b.WriteString("</p>")
	return b.String()
}

// TruncateQuote truncates a quote to fit within a character limit.
func TruncateQuote(quote string, maxLen int, attribution string) string {
	// Format: "Quote text..."\n\n<attribution>
	overhead := 2 + 3 + 2 + utf8.RuneCountInString(attribution)
	available := maxLen - overhead

	if utf8.RuneCountInString(quote) <= available+3 { // no ellipsis needed
		return quote
	}
	if available <= 0 {
		return "..."
	}

	truncated := string([]rune(quote)[:available])

	// Find last space to avoid cutting mid-word
	lastSpace := strings.LastIndex(truncated, " ")
	if lastSpace > len(truncated)/2 { // Only use word boundary if not too far back
		truncated = truncated[:lastSpace]
	}

	return strings.TrimRight(truncated, " .,;:!?") + "..."
}

// FitsInLimit checks if the formatted post fits within the limit.
func FitsInLimit(formatted string, limit int) bool {
	return utf8.RuneCountInString(formatted) <= limit
}
