package calsync

import (
	"time"

	"github.com/Jasemalbateni/academybase-sub001/models"
)

// FeedItem is one event as the provider sends it.
type FeedItem struct {
	ID    string `json:"id"`
	Date  string `json:"date"`
	Type  string `json:"type"`
	Title string `json:"title"`
}

type feedResponse struct {
	Data  []FeedItem `json:"data"`
	Items []FeedItem `json:"items"`
}

// EventType maps a provider event type onto ours. Unknown types land on
// "note" so they still show on the calendar without affecting sessions.
func (item FeedItem) EventType() models.CalendarEventType {
	if parsed, err := models.ParseCalendarEventType(item.Type); err == nil {
		return parsed
	}
	return models.CalendarEventTypeNote
}

func (item FeedItem) EventDate() (time.Time, error) {
	return time.Parse("2006-01-02", item.Date)
}
