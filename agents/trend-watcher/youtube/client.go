package youtube

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"trendwatch/internal/models"
	"trendwatch/shared/config"
	"trendwatch/shared/quota"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const (
	batchSize    = 50 // Videos.List accepts at most 50 IDs per call
	statsRetries = 3
)

// QuotaGuard is the externally-owned quota handle the fetcher must consult
// before every API call.
type QuotaGuard interface {
	Remaining(unitsRequested int) bool
	Consume(units int)
}

type Client struct {
	service    *youtube.Service
	quota      QuotaGuard
	retryDelay time.Duration
}

func NewClient(ctx context.Context, cfg *config.YouTubeConfig, guard QuotaGuard) (*Client, error) {
	service, err := youtube.NewService(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return &Client{
		service:    service,
		quota:      guard,
		retryDelay: time.Second,
	}, nil
}

// Search returns up to maxResults videos matching query inside window,
// most relevant first, with engagement counters attached. Videos whose
// statistics batch ultimately fails are dropped and returned by ID.
func (c *Client) Search(ctx context.Context, query string, window models.Window, maxResults int64, order string) ([]*models.VideoRecord, []string, error) {
	videos, err := c.searchPages(ctx, query, window, maxResults, order)
	if err != nil {
		return nil, nil, err
	}
	if len(videos) == 0 {
		return nil, nil, nil
	}

	stats, failedIDs, err := c.fetchStatistics(ctx, videoIDs(videos))
	if err != nil {
		return nil, nil, err
	}

	var results []*models.VideoRecord
	var dropped []string
	for _, video := range videos {
		s, ok := stats[video.ID]
		if !ok {
			dropped = append(dropped, video.ID)
			continue
		}
		video.ViewCount = s.views
		video.LikeCount = s.likes
		video.CommentCount = s.comments
		results = append(results, video)
	}
	dropped = append(dropped, failedIDs...)

	if len(dropped) > 0 {
		log.Printf("Warning: dropped %d videos with unavailable statistics", len(dropped))
	}

	return results, dropped, nil
}

// searchPages walks Search.List pages until maxResults IDs are collected or
// results run out. Each page costs 100 quota units and is refused outright
// when it would cross the daily ceiling.
func (c *Client) searchPages(ctx context.Context, query string, window models.Window, maxResults int64, order string) ([]*models.VideoRecord, error) {
	var videos []*models.VideoRecord
	pageToken := ""

	for int64(len(videos)) < maxResults {
		if !c.quota.Remaining(quota.CostSearchList) {
			if len(videos) == 0 {
				return nil, fmt.Errorf("%w: search.list needs %d units", quota.ErrQuotaExceeded, quota.CostSearchList)
			}
			log.Printf("Warning: quota ceiling reached after %d videos, stopping search early", len(videos))
			break
		}

		pageSize := maxResults - int64(len(videos))
		if pageSize > batchSize {
			pageSize = batchSize
		}

		call := c.service.Search.List([]string{"snippet"}).
			Context(ctx).
			Q(query).
			Type("video").
			MaxResults(pageSize).
			Order(order).
			PublishedAfter(window.Start.Format(time.RFC3339)).
			PublishedBefore(window.End.Format(time.RFC3339))
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		c.quota.Consume(quota.CostSearchList)
		response, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("search failed for query %q: %w", query, err)
		}

		for _, item := range response.Items {
			if item.Id == nil || item.Id.VideoId == "" {
				continue
			}
			video := &models.VideoRecord{
				ID:           item.Id.VideoId,
				Title:        item.Snippet.Title,
				Description:  item.Snippet.Description,
				ChannelTitle: item.Snippet.ChannelTitle,
			}
			if publishedAt, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
				video.PublishedAt = publishedAt
			}
			videos = append(videos, video)
		}

		pageToken = response.NextPageToken
		if pageToken == "" {
			break
		}
	}

	if int64(len(videos)) > maxResults {
		videos = videos[:maxResults]
	}
	return videos, nil
}

type videoStats struct {
	views    int64
	likes    int64
	comments int64
}

// fetchStatistics resolves engagement counters in batches of up to 50 IDs.
// A batch that keeps failing after retries drops its videos instead of
// failing the run; counters missing on an item default to 0.
func (c *Client) fetchStatistics(ctx context.Context, ids []string) (map[string]videoStats, []string, error) {
	stats := make(map[string]videoStats)
	var failed []string

	for i := 0; i < len(ids); i += batchSize {
		end := i + batchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[i:end]

		if !c.quota.Remaining(quota.CostVideosList) {
			if len(stats) == 0 {
				return nil, nil, fmt.Errorf("%w: videos.list needs %d unit", quota.ErrQuotaExceeded, quota.CostVideosList)
			}
			log.Printf("Warning: quota ceiling reached, dropping %d videos without statistics", len(ids)-i)
			failed = append(failed, ids[i:]...)
			break
		}

		response, err := c.statisticsWithRetry(ctx, batch)
		if err != nil {
			log.Printf("Warning: statistics batch failed, dropping %d videos: %v", len(batch), err)
			failed = append(failed, batch...)
			continue
		}

		for _, item := range response.Items {
			s := videoStats{}
			if item.Statistics != nil {
				s.views = int64(item.Statistics.ViewCount)
				s.likes = int64(item.Statistics.LikeCount)
				s.comments = int64(item.Statistics.CommentCount)
			}
			stats[item.Id] = s
		}
	}

	return stats, failed, nil
}

// statisticsWithRetry issues one Videos.List call per attempt. The provider
// bills every attempt, so each one is charged against the quota separately.
func (c *Client) statisticsWithRetry(ctx context.Context, batch []string) (*youtube.VideoListResponse, error) {
	var lastErr error
	backoff := c.retryDelay

	for attempt := 1; attempt <= statsRetries; attempt++ {
		if !c.quota.Remaining(quota.CostVideosList) {
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, fmt.Errorf("%w: videos.list needs %d unit", quota.ErrQuotaExceeded, quota.CostVideosList)
		}
		c.quota.Consume(quota.CostVideosList)

		response, err := c.service.Videos.List([]string{"statistics"}).
			Context(ctx).
			Id(strings.Join(batch, ",")).
			Do()
		if err == nil {
			return response, nil
		}
		lastErr = err

		if !isTransient(err) || ctx.Err() != nil {
			return nil, err
		}
		log.Printf("Warning: transient statistics error (attempt %d/%d): %v", attempt, statsRetries, err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
			backoff *= 2
		}
	}
	return nil, lastErr
}

// isTransient reports whether an API error is worth retrying. 5xx and
// network-level failures are transient; 4xx responses are not.
func isTransient(err error) bool {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code >= 500
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

func videoIDs(videos []*models.VideoRecord) []string {
	ids := make([]string, 0, len(videos))
	for _, v := range videos {
		ids = append(ids, v.ID)
	}
	return ids
}
