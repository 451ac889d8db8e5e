package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTicketPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    bool
	}{
		{name: "carrier prefix", payload: "OTP987654321", want: true},
		{name: "carrier domain", payload: "x=1;bahn.de;y", want: true},
		{name: "https url", payload: "https://t.example/abc", want: true},
		{name: "http url", payload: "http://t.example/abc", want: true},
		{name: "json object", payload: `{"ticket":"123"}`, want: true},
		{name: "base64 over 20 chars", payload: "QWxhZGRpbjpvcGVuIHNlc2FtZQ==", want: true},
		{name: "base64 alphabet but short", payload: "QWxhZGRpbg==", want: true}, // still >10 chars
		{name: "long unstructured string", payload: "ticket-no 42", want: true},
		{name: "empty", payload: "", want: false},
		{name: "short noise", payload: "ab/12", want: false},
		{name: "ten chars exactly", payload: strings.Repeat("!", 10), want: false},
		{name: "eleven chars", payload: strings.Repeat("!", 11), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTicketPayload(tt.payload))
		})
	}
}

func TestFirstTicketPayload(t *testing.T) {
	assert.Equal(t, "https://example.com/t/1",
		FirstTicketPayload([]string{"short", "https://example.com/t/1", "OTP11111"}))
	assert.Empty(t, FirstTicketPayload([]string{"a", "bb", ""}))
	assert.Empty(t, FirstTicketPayload(nil))
}
