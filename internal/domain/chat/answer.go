package chat

import (
	"regexp"
	"strings"
)

// The answer wire format is XML-shaped but produced by a language model, so it
// is scraped with regular expressions rather than parsed strictly. A strict
// parser would reject slightly malformed documents that this scrape still
// recovers partial results from, which would change observable behavior.
var (
	answerTextRe = regexp.MustCompile(`(?s)<text>(.*?)</text>`)
	answerItemRe = regexp.MustCompile(`(?s)<item>(.*?)</item>`)

	itemIDRe      = regexp.MustCompile(`<id>(.*?)</id>`)
	itemTitleRe   = regexp.MustCompile(`<title>(.*?)</title>`)
	itemCaptionRe = regexp.MustCompile(`<caption>(.*?)</caption>`)
	itemImageRe   = regexp.MustCompile(`<image>(.*?)</image>`)
)

// ParseAnswerXML scrapes a raw answer payload into a ParsedAnswer.
//
// The first <text> capture becomes Text (trimmed; absent tag yields "").
// Every <item> block is scanned in document order; an item is retained only
// when both its id and title are non-empty after trimming. Items lacking
// either are dropped silently.
//
// ParseAnswerXML never panics: any internal failure returns nil, signalling
// the caller to fall back to treating raw as plain text.
func ParseAnswerXML(raw string) (parsed *ParsedAnswer) {
	defer func() {
		if r := recover(); r != nil {
			parsed = nil
		}
	}()

	text := ""
	if m := answerTextRe.FindStringSubmatch(raw); m != nil {
		text = strings.TrimSpace(m[1])
	}

	items := []ParsedRecipe{}
	for _, m := range answerItemRe.FindAllStringSubmatch(raw, -1) {
		body := m[1]

		id := firstCapture(itemIDRe, body)
		title := firstCapture(itemTitleRe, body)
		caption := firstCapture(itemCaptionRe, body)
		image := firstCapture(itemImageRe, body)

		if id == "" || title == "" {
			continue
		}
		items = append(items, ParsedRecipe{ID: id, Title: title, Caption: caption, Image: image})
	}

	return &ParsedAnswer{Text: text, Items: items}
}

func firstCapture(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
