package gmail

import (
	"encoding/base64"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/poiesic/jobtrail/core"
	"google.golang.org/api/gmail/v1"
)

// maxFieldRunes bounds any single stored field.
const maxFieldRunes = 32000

// messageBody concatenates the inline text/plain parts of payload. When there
// are none it converts the inline text/html parts instead.
func messageBody(payload *gmail.MessagePart) string {
	var plain, html strings.Builder
	walkParts(payload, func(part *gmail.MessagePart) {
		if part.Body == nil || part.Body.Data == "" || isAttachment(part) {
			return
		}
		data, err := decodeData(part.Body.Data)
		if err != nil {
			return
		}
		switch strings.ToLower(part.MimeType) {
		case "text/plain":
			plain.WriteString(data)
		case "text/html":
			html.WriteString(data)
		}
	})

	if strings.TrimSpace(plain.String()) != "" {
		return plain.String()
	}
	return htmlToText(html.String())
}

func walkParts(part *gmail.MessagePart, fn func(*gmail.MessagePart)) {
	if part == nil {
		return
	}
	fn(part)
	for _, child := range part.Parts {
		walkParts(child, fn)
	}
}

func isAttachment(part *gmail.MessagePart) bool {
	if part.Filename != "" {
		return true
	}
	return strings.Contains(strings.ToLower(header(part.Headers, "Content-Disposition")), "attachment")
}

// decodeData decodes base64url body data with or without padding.
func decodeData(data string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(raw), ""), nil
}

// htmlToText returns the visible text of an HTML document, one space between
// text nodes, with scripts and styles removed.
func htmlToText(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript").Remove()

	var parts []string
	collectText(doc.Selection, &parts)
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func collectText(sel *goquery.Selection, parts *[]string) {
	sel.Contents().Each(func(_ int, child *goquery.Selection) {
		if goquery.NodeName(child) == "#text" {
			if text := strings.TrimSpace(child.Text()); text != "" {
				*parts = append(*parts, text)
			}
			return
		}
		collectText(child, parts)
	})
}

func header(headers []*gmail.MessagePartHeader, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// senderAddress returns the mail address of a From header, or the cleaned
// header itself when it does not parse.
func senderAddress(from string) string {
	if addr, err := mail.ParseAddress(from); err == nil {
		return addr.Address
	}
	return strings.TrimSpace(from)
}

// receivedAt normalizes a Date header, keeping the raw value when it does
// not parse.
func receivedAt(date string) string {
	date = strings.TrimSpace(date)
	if t, err := mail.ParseDate(date); err == nil {
		return t.Format(core.ReceivedAtLayout)
	}
	return date
}

// cleanField strips control characters other than newline and tab and
// bounds the length.
func cleanField(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || !unicode.IsControl(r) {
			return r
		}
		return -1
	}, s)
	if utf8.RuneCountInString(s) > maxFieldRunes {
		s = string([]rune(s)[:maxFieldRunes])
	}
	return s
}
