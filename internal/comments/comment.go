// Package comments keeps per-character comment threads in one flat JSON
// array shared by all characters.
package comments

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Comment is a user note attached to a character. Text is always trimmed and
// non-empty.
type Comment struct {
	ID          string `json:"id" yaml:"id"`
	CharacterID string `json:"characterId" yaml:"characterId"`
	Text        string `json:"text" yaml:"text"`
	CreatedAt   string `json:"createdAt" yaml:"createdAt"`
}

// TimeLayout is ISO-8601 with millisecond precision.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// NewID returns "<unix millis>-<9 random chars>".
func NewID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("%d-%s", now.UnixMilli(), suffix)
}

// Timestamp formats t the way CreatedAt is stored.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func cleanText(text string) (string, bool) {
	text = strings.TrimSpace(text)
	return text, text != ""
}
