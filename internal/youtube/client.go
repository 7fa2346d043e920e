package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ytAgent/internal/model"
	"ytAgent/internal/sanitizer"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultAPIBase = "https://www.googleapis.com/youtube/v3"
	DefaultSiteURL = "https://www.youtube.com"
)

type Config struct {
	APIKey            string
	APIBase           string
	SiteURL           string
	RequestsPerSecond float64
	Timeout           time.Duration
}

// Client обращается к поисковому, детальному и плейлистовым эндпоинтам.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	if cfg.APIBase == "" {
		cfg.APIBase = DefaultAPIBase
	}
	if cfg.SiteURL == "" {
		cfg.SiteURL = DefaultSiteURL
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		log:     log,
	}
}

// ResolveChannels ищет каналы по имени и возвращает ранжированные детальные записи.
// Если поиск не дал идентификаторов, детальный запрос не выполняется.
func (c *Client) ResolveChannels(ctx context.Context, query string, limit int) ([]model.Channel, error) {
	var search searchResponse
	err := c.get(ctx, "Search", "search", url.Values{
		"part":       {"snippet"},
		"type":       {"channel"},
		"q":          {query},
		"maxResults": {strconv.Itoa(limit)},
	}, &search)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(search.Items))
	for _, item := range search.Items {
		if item.Snippet.ChannelID != "" {
			ids = append(ids, item.Snippet.ChannelID)
		}
	}
	if len(ids) == 0 {
		return []model.Channel{}, nil
	}

	var details channelsResponse
	err = c.get(ctx, "Channels", "channels", url.Values{
		"part": {"snippet,statistics,brandingSettings,contentDetails"},
		"id":   {strings.Join(ids, ",")},
	}, &details)
	if err != nil {
		return nil, err
	}

	channels := make([]model.Channel, 0, len(details.Items))
	for _, item := range details.Items {
		channels = append(channels, model.Channel{
			ID:              item.ID,
			Title:           item.Snippet.Title,
			IconURL:         item.Snippet.Thumbnails.Default.URL,
			SubscriberCount: item.Statistics.SubscriberCount,
			Handle:          strings.TrimPrefix(item.Snippet.CustomURL, "@"),
		})
	}

	c.log.Debug("channels resolved",
		zap.String("query", query),
		zap.Int("search_hits", len(ids)),
		zap.Int("channels", len(channels)),
	)

	return Rank(query, channels), nil
}

// UploadsPlaylist возвращает идентификатор плейлиста загрузок канала.
func (c *Client) UploadsPlaylist(ctx context.Context, channelID string) (string, error) {
	var details channelsResponse
	err := c.get(ctx, "Channels", "channels", url.Values{
		"part": {"contentDetails"},
		"id":   {channelID},
	}, &details)
	if err != nil {
		return "", err
	}

	if len(details.Items) == 0 || details.Items[0].ContentDetails.RelatedPlaylists.Uploads == "" {
		return "", fmt.Errorf("channel %s: %w", channelID, ErrPlaylistNotFound)
	}
	return details.Items[0].ContentDetails.RelatedPlaylists.Uploads, nil
}

// UploadedVideos возвращает до count ссылок на последние загрузки канала.
func (c *Client) UploadedVideos(ctx context.Context, channelID string, count int) ([]string, error) {
	playlistID, err := c.UploadsPlaylist(ctx, channelID)
	if err != nil {
		return nil, err
	}

	var items playlistItemsResponse
	err = c.get(ctx, "PlaylistItems", "playlistItems", url.Values{
		"part":       {"snippet"},
		"playlistId": {playlistID},
		"maxResults": {strconv.Itoa(count)},
	}, &items)
	if err != nil {
		return nil, err
	}

	links := make([]string, 0, len(items.Items))
	for _, item := range items.Items {
		if id := item.Snippet.ResourceID.VideoID; id != "" {
			links = append(links, model.WatchURL(c.cfg.SiteURL, id))
		}
	}
	return links, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	params.Set("key", c.cfg.APIKey)
	reqURL := strings.TrimRight(c.cfg.APIBase, "/") + "/" + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// В адресе запроса лежит ключ API
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = sanitizer.Sanitize(urlErr.URL)
		}
		return fmt.Errorf("youtube %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return &UpstreamHTTPError{Endpoint: endpoint, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("youtube %s: decode response: %w", endpoint, err)
	}
	return nil
}
