package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"trendwatch/internal/models"
)

// PromptVersion participates in the extraction cache key; bump it whenever
// the extraction prompt changes shape.
const PromptVersion = "v1"

const maxDescriptionChars = 500

// AssignmentCache lets the extractor skip repeat requests for videos it has
// already seen under the same model and prompt version.
type AssignmentCache interface {
	Get(key string) (*models.TopicAssignment, bool)
	Put(key string, assignment *models.TopicAssignment) error
}

// Extractor turns one video's title and description into a TopicAssignment
// via a structured text-generation request.
type Extractor struct {
	llm        TextGenerator
	model      string
	attempts   int
	workers    int
	cache      AssignmentCache
	retryDelay time.Duration
}

// NewExtractor wires an extractor. cache may be nil to disable caching;
// attempts and workers fall back to safe minimums.
func NewExtractor(llm TextGenerator, model string, attempts, workers int, cache AssignmentCache) *Extractor {
	if attempts < 1 {
		attempts = 1
	}
	if workers < 1 {
		workers = 1
	}
	return &Extractor{
		llm:        llm,
		model:      model,
		attempts:   attempts,
		workers:    workers,
		cache:      cache,
		retryDelay: time.Second,
	}
}

func (e *Extractor) cacheKey(videoID string) string {
	return fmt.Sprintf("%s|%s|%s", videoID, e.model, PromptVersion)
}

// ExtractTopics returns the assignment for one video, retrying on malformed
// output up to the configured attempt count.
func (e *Extractor) ExtractTopics(ctx context.Context, video *models.VideoRecord) (*models.TopicAssignment, error) {
	if e.cache != nil {
		if assignment, ok := e.cache.Get(e.cacheKey(video.ID)); ok {
			return assignment, nil
		}
	}

	prompt := buildExtractionPrompt(video)

	var lastErr error
	for attempt := 1; attempt <= e.attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * e.retryDelay):
			}
		}

		response, err := e.llm.GenerateText(ctx, prompt)
		if err != nil {
			lastErr = err
			log.Printf("Warning: extraction attempt %d/%d failed for video %s: %v", attempt, e.attempts, video.ID, err)
			continue
		}

		assignment, err := parseAssignment(response, video.ID)
		if err != nil {
			lastErr = err
			log.Printf("Warning: extraction attempt %d/%d returned bad output for video %s: %v", attempt, e.attempts, video.ID, err)
			continue
		}

		if e.cache != nil {
			if err := e.cache.Put(e.cacheKey(video.ID), assignment); err != nil {
				log.Printf("Warning: failed to cache assignment for video %s: %v", video.ID, err)
			}
		}
		return assignment, nil
	}

	return nil, fmt.Errorf("topic extraction failed for video %s after %d attempts: %w", video.ID, e.attempts, lastErr)
}

// ExtractAll runs extraction over a bounded worker pool and returns the
// successful assignments plus the IDs of videos that were dropped. The
// returned order is arbitrary; the clusterer re-establishes fetch order.
func (e *Extractor) ExtractAll(ctx context.Context, videos []*models.VideoRecord) ([]*models.TopicAssignment, []string) {
	var (
		mu          sync.Mutex
		wg          sync.WaitGroup
		assignments []*models.TopicAssignment
		dropped     []string
	)

	sem := make(chan struct{}, e.workers)

	for _, video := range videos {
		wg.Add(1)
		go func(video *models.VideoRecord) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			assignment, err := e.ExtractTopics(ctx, video)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Printf("Warning: dropping video %s (%s): %v", video.ID, video.Title, err)
				dropped = append(dropped, video.ID)
				return
			}
			assignments = append(assignments, assignment)
		}(video)
	}

	wg.Wait()
	return assignments, dropped
}

func buildExtractionPrompt(video *models.VideoRecord) string {
	return fmt.Sprintf(`You are an expert at analyzing video content and extracting main topics.
Extract the main topics from the video title and description below.
Focus on technical topics, frameworks, tools, and concepts.

Title: %s

Description: %s

Respond with ONLY a JSON object in this exact format:
{
  "main_topic": "short name of the primary subject",
  "subtopics": ["3-5 related subtopics"]
}`,
		video.Title,
		truncateString(video.Description, maxDescriptionChars),
	)
}

// parseAssignment validates the model response against the required schema.
// A missing or empty main topic rejects the whole response; there is no
// best-effort partial result.
func parseAssignment(response, videoID string) (*models.TopicAssignment, error) {
	jsonStr, err := extractJSON(response)
	if err != nil {
		return nil, err
	}

	var result struct {
		MainTopic string   `json:"main_topic"`
		Subtopics []string `json:"subtopics"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	topic := strings.TrimSpace(result.MainTopic)
	if topic == "" {
		return nil, fmt.Errorf("%w: missing main_topic", ErrMalformedResponse)
	}

	return &models.TopicAssignment{
		VideoID:   videoID,
		Topic:     topic,
		Subtopics: result.Subtopics,
	}, nil
}

// truncateString cuts s to at most maxLength bytes without splitting a
// multi-byte rune.
func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	cut := maxLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
