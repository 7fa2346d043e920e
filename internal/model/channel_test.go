package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannelSubscribers(t *testing.T) {
	cases := map[string]int64{
		"14,100,000": 14100000,
		"500 000":    500000,
		"1234":       1234,
		"hidden":     0,
		"":           0,
	}
	for raw, want := range cases {
		assert.Equal(t, want, Channel{SubscriberCount: raw}.Subscribers(), raw)
	}
}

func TestChannelVideosURL(t *testing.T) {
	c := Channel{ID: "UC123", Handle: "veritasium"}
	assert.Equal(t, "https://www.youtube.com/@veritasium/videos", c.VideosURL("https://www.youtube.com/"))

	c.Handle = ""
	assert.Equal(t, "https://www.youtube.com/channel/UC123/videos", c.VideosURL("https://www.youtube.com"))
}

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "veritasiumes", NormalizeTitle("  Veritasium\tES "))
}
