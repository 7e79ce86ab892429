// Package caption renders post metadata into chat captions.
//
// Rich captions use Telegram MarkdownV2 and link the post and its author.
// Plain captions carry the same information without markup.
package caption

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/reshetovitsme/tweet-media-relay/internal/modules/post/domain"
)

// MaxLength is the longest caption Telegram accepts on a media message.
const MaxLength = 1024

const (
	profileURLPrefix = "https://twitter.com/"
	ellipsis         = "…"
)

var shortLinkRegex = regexp.MustCompile(`https?://t\.co/[a-zA-Z0-9]+`)

// markdownV2Reserved is the MarkdownV2 reserved set; each member is escaped with a backslash.
var markdownV2Reserved = map[rune]bool{
	'\\': true,
	'_':  true,
	'*':  true,
	'[':  true,
	']':  true,
	'(':  true,
	')':  true,
	'~':  true,
	'`':  true,
	'>':  true,
	'#':  true,
	'+':  true,
	'-':  true,
	'=':  true,
	'|':  true,
	'{':  true,
	'}':  true,
	'.':  true,
	'!':  true,
}

// EscapeMarkdownV2 backslash-escapes every reserved MarkdownV2 character.
func EscapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 8)
	for _, r := range text {
		if markdownV2Reserved[r] {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// UnescapeMarkdownV2 reverses EscapeMarkdownV2.
func UnescapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	escaped := false
	for _, r := range text {
		if !escaped && r == '\\' {
			escaped = true
			continue
		}
		if escaped && !markdownV2Reserved[r] {
			b.WriteByte('\\')
		}
		escaped = false
		b.WriteRune(r)
	}
	if escaped {
		b.WriteByte('\\')
	}
	return b.String()
}

// escapeLinkURL escapes the characters MarkdownV2 reserves inside the (...) part of a link.
func escapeLinkURL(url string) string {
	return strings.NewReplacer(`\`, `\\`, `)`, `\)`).Replace(url)
}

// StripShortLinks removes t.co links from text.
func StripShortLinks(text string) string {
	return strings.TrimSpace(shortLinkRegex.ReplaceAllString(text, ""))
}

// Rich renders the two-line MarkdownV2 caption linking the post and the author profile.
// The body is shortened before escaping so the rendered caption fits MaxLength.
func Rich(meta domain.Metadata) string {
	text := StripShortLinks(meta.Text)
	if text == "" {
		text = domain.NoText
	}

	artistLink := fmt.Sprintf("[%s](%s)", EscapeMarkdownV2(meta.AuthorName), escapeLinkURL(profileURLPrefix+meta.AuthorHandle))
	render := func(escapedBody string) string {
		titleLink := fmt.Sprintf("[%s](%s)", escapedBody, escapeLinkURL(meta.URL))
		return fmt.Sprintf("`❀Title : ` *%s*\n\n`❀Artist : ` *%s*", titleLink, artistLink)
	}

	caption := render(EscapeMarkdownV2(text))
	if utf8.RuneCountInString(caption) <= MaxLength {
		return caption
	}

	budget := MaxLength - utf8.RuneCountInString(render("")) - utf8.RuneCountInString(ellipsis)
	return render(EscapeMarkdownV2(strings.TrimSpace(fitEscaped(text, budget))) + ellipsis)
}

// fitEscaped returns the longest prefix of text whose escaped form is at most budget runes.
func fitEscaped(text string, budget int) string {
	used := 0
	for i, r := range text {
		width := 1
		if markdownV2Reserved[r] {
			width = 2
		}
		if used+width > budget {
			return text[:i]
		}
		used += width
	}
	return text
}

// Plain renders the caption without markup, shortening the body to fit MaxLength.
func Plain(meta domain.Metadata) string {
	text := StripShortLinks(meta.Text)
	if text == "" {
		text = domain.NoText
	}

	render := func(body string) string {
		return fmt.Sprintf("Author: %s\n\n%s\n\nSource: %s", meta.AuthorName, body, meta.URL)
	}

	caption := render(text)
	overflow := utf8.RuneCountInString(caption) - MaxLength
	if overflow <= 0 {
		return caption
	}

	runes := []rune(text)
	keep := len(runes) - overflow - utf8.RuneCountInString(ellipsis)
	if keep < 0 {
		keep = 0
	}
	return render(strings.TrimSpace(string(runes[:keep])) + ellipsis)
}
