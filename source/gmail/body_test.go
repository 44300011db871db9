package gmail

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/gmail/v1"
)

func encode(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func TestMessageBodyPrefersPlainText(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*gmail.MessagePart{
			{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: encode("Thanks for applying.")}},
			{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: encode("<p>Thanks <b>for</b> applying.</p>")}},
		},
	}

	assert.Equal(t, "Thanks for applying.", messageBody(payload))
}

func TestMessageBodyFallsBackToHTML(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{
			{
				MimeType: "multipart/alternative",
				Parts: []*gmail.MessagePart{
					{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: encode("   \n")}},
					{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: encode(
						`<html><head><style>p{color:red}</style></head><body><p>Interview</p><script>track()</script><p>on <b>Monday</b></p></body></html>`)}},
				},
			},
			{
				MimeType: "text/plain",
				Filename: "resume.txt",
				Body:     &gmail.MessagePartBody{Data: encode("attached resume")},
			},
		},
	}

	assert.Equal(t, "Interview on Monday", messageBody(payload))
}

func TestMessageBodySkipsDispositionAttachment(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{
			{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: encode("body")}},
			{
				MimeType: "text/plain",
				Headers:  []*gmail.MessagePartHeader{{Name: "Content-Disposition", Value: "attachment"}},
				Body:     &gmail.MessagePartBody{Data: encode(" extra")},
			},
		},
	}

	assert.Equal(t, "body", messageBody(payload))
}

func TestDecodeDataWithoutPadding(t *testing.T) {
	got, err := decodeData(base64.RawURLEncoding.EncodeToString([]byte("hi?")))
	assert.NoError(t, err)
	assert.Equal(t, "hi?", got)
}

func TestReceivedAt(t *testing.T) {
	assert.Equal(t, "2025-12-05 15:42:18", receivedAt("Fri, 05 Dec 2025 15:42:18 +0000"))
	assert.Equal(t, "2025-12-05 15:42:18", receivedAt("Fri, 05 Dec 2025 15:42:18 +0000 (UTC)"))
	assert.Equal(t, "yesterday", receivedAt(" yesterday "))
}

func TestSenderAddress(t *testing.T) {
	assert.Equal(t, "jobs@acme.com", senderAddress(`"Acme Careers" <jobs@acme.com>`))
	assert.Equal(t, "not an address", senderAddress("not an address"))
}

func TestCleanField(t *testing.T) {
	assert.Equal(t, "a\tb\nc", cleanField("a\tb\nc\x00\x07"))
}
