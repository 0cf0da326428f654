package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessage_HasContent(t *testing.T) {
	imageURL := "http://localhost:8080/uploads/pic.png"
	emptyURL := ""

	tests := []struct {
		name    string
		message Message
		want    bool
	}{
		{"text only", Message{Text: "hi"}, true},
		{"whitespace text", Message{Text: "   \t"}, false},
		{"image only", Message{ImageURL: &imageURL}, true},
		{"empty image url", Message{ImageURL: &emptyURL}, false},
		{"text and image", Message{Text: "look", ImageURL: &imageURL}, true},
		{"nothing", Message{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.message.HasContent())
		})
	}
}
