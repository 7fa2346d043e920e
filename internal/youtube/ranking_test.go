package youtube

import (
	"testing"

	"ytAgent/internal/model"

	"github.com/stretchr/testify/assert"
)

func ids(channels []model.Channel) []string {
	out := make([]string, len(channels))
	for i, c := range channels {
		out[i] = c.ID
	}
	return out
}

func TestRank_ExactBeforeBiggerNonExact(t *testing.T) {
	in := []model.Channel{
		{ID: "big", Title: "Veritasium Clips", SubscriberCount: "90,000,000"},
		{ID: "exact", Title: "veri tasium", SubscriberCount: "10"},
	}
	assert.Equal(t, []string{"exact", "big"}, ids(Rank("Veritasium", in)))
}

func TestRank_SubscribersDescendingWithinPartition(t *testing.T) {
	in := []model.Channel{
		{ID: "a", Title: "A", SubscriberCount: "100"},
		{ID: "b", Title: "B", SubscriberCount: "2,000"},
		{ID: "c", Title: "C", SubscriberCount: "hidden"},
		{ID: "d", Title: "D", SubscriberCount: "150"},
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids(Rank("zzz", in)))
}

func TestRank_StableForTies(t *testing.T) {
	in := []model.Channel{
		{ID: "first", Title: "X", SubscriberCount: "n/a"},
		{ID: "second", Title: "Y", SubscriberCount: "0"},
		{ID: "third", Title: "Z", SubscriberCount: ""},
	}
	assert.Equal(t, []string{"first", "second", "third"}, ids(Rank("q", in)))
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	in := []model.Channel{
		{ID: "a", Title: "A", SubscriberCount: "1"},
		{ID: "b", Title: "B", SubscriberCount: "2"},
	}
	Rank("q", in)
	assert.Equal(t, "a", in[0].ID)
}
