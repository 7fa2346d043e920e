package discovery

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeListing имитирует ленту: при каждой прокрутке подгружается perScroll
// элементов, пока не кончится total.
type fakeListing struct {
	mu        sync.Mutex
	links     []string
	rendered  int
	perScroll int
	scrolls   int
	noLink    map[int]bool
}

func newFakeListing(total, initial, perScroll int) *fakeListing {
	links := make([]string, total)
	for i := range links {
		links[i] = fmt.Sprintf("https://www.youtube.com/watch?v=v%d", i)
	}
	return &fakeListing{links: links, rendered: initial, perScroll: perScroll, noLink: map[int]bool{}}
}

func (f *fakeListing) Count(ctx context.Context, selector string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rendered, nil
}

func (f *fakeListing) NthLink(ctx context.Context, item string, index int, link string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if index >= f.rendered || f.noLink[index] {
		return "", false, nil
	}
	return f.links[index], true, nil
}

func (f *fakeListing) ScrollBy(ctx context.Context, x, y int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scrolls++
	f.rendered += f.perScroll
	if f.rendered > len(f.links) {
		f.rendered = len(f.links)
	}
	return nil
}

func fastScanner() *Scanner {
	return NewScanner(Config{
		ScrollPause: time.Millisecond,
		LoadTimeout: 30 * time.Millisecond,
	}, nil)
}

func TestDiscover_CollectsFromRenderedItems(t *testing.T) {
	page := newFakeListing(30, 12, 6)

	links, err := fastScanner().Discover(context.Background(), page, 5)
	require.NoError(t, err)
	assert.Equal(t, page.links[:5], links)
	assert.Zero(t, page.scrolls, "no scrolling needed when enough items are rendered")
}

func TestDiscover_ScrollsForMore(t *testing.T) {
	page := newFakeListing(40, 4, 3)

	links, err := fastScanner().Discover(context.Background(), page, 10)
	require.NoError(t, err)
	assert.Equal(t, page.links[:10], links)
	assert.Positive(t, page.scrolls)
}

func TestDiscover_PartialResultOnTimeout(t *testing.T) {
	page := newFakeListing(3, 3, 0)

	links, err := fastScanner().Discover(context.Background(), page, 8)
	require.NoError(t, err)
	assert.Equal(t, page.links, links)
}

func TestDiscover_NeverExceedsNOrInventsLinks(t *testing.T) {
	page := newFakeListing(50, 20, 5)
	page.noLink[1] = true

	links, err := fastScanner().Discover(context.Background(), page, 7)
	require.NoError(t, err)
	assert.Len(t, links, 7)

	seen := map[string]bool{}
	for _, l := range links {
		assert.Contains(t, page.links, l)
		assert.False(t, seen[l], "duplicate %s", l)
		seen[l] = true
	}
	assert.NotContains(t, links, page.links[1])
}

func TestDiscover_ZeroRequested(t *testing.T) {
	links, err := fastScanner().Discover(context.Background(), newFakeListing(5, 5, 0), 0)
	require.NoError(t, err)
	assert.Empty(t, links)
}
