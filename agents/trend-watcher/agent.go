package trendwatcher

import (
	"context"
	"fmt"
	"log"
	"time"

	"trendwatch/agents/trend-watcher/youtube"
	"trendwatch/internal/models"
	"trendwatch/shared/ai"
	"trendwatch/shared/config"
	"trendwatch/shared/export"
	"trendwatch/shared/quota"
	"trendwatch/shared/storage"

	"github.com/google/uuid"
)

// TrendMetrics summarizes one pipeline run for the monitor.
type TrendMetrics struct {
	VideosFound int
	Extracted   int
	Clusters    int
	Dropped     int
}

func (m TrendMetrics) GetSummary() string {
	return fmt.Sprintf("found %d videos, extracted %d topics, ranked %d clusters, dropped %d",
		m.VideosFound, m.Extracted, m.Clusters, m.Dropped)
}

// TrendAgent implements the scheduler.Agent interface. One run walks the
// pipeline Fetcher -> Extractor -> Clusterer -> Scorer -> Insight -> Export;
// no state survives between runs beyond the extraction cache.
type TrendAgent struct {
	config        *config.Config
	quotaTracker  *quota.Tracker
	youtubeClient *youtube.Client
	llm           *ai.Client
	extractor     *ai.Extractor
	clusterer     *Clusterer
	scorer        *Scorer
	insights      *ai.InsightGenerator

	lastReport  *models.RunReport
	lastMetrics *TrendMetrics
}

func NewTrendAgent(cfg *config.Config) *TrendAgent {
	return &TrendAgent{config: cfg}
}

func (a *TrendAgent) Name() string {
	return "Trend Watcher"
}

func (a *TrendAgent) Initialize() error {
	log.Printf("Initializing %s...", a.Name())
	ctx := context.Background()

	if a.quotaTracker == nil {
		a.quotaTracker = quota.NewTracker(a.config.YouTube.DailyQuota)
	}

	if a.youtubeClient == nil {
		client, err := youtube.NewClient(ctx, &a.config.YouTube, a.quotaTracker)
		if err != nil {
			return fmt.Errorf("failed to create YouTube client: %w", err)
		}
		a.youtubeClient = client
		log.Println("YouTube client initialized")
	}

	if a.llm == nil {
		llm, err := ai.NewClient(&a.config.AI)
		if err != nil {
			return fmt.Errorf("failed to create AI client: %w", err)
		}
		a.llm = llm
		log.Println("AI client initialized")
	}

	if a.extractor == nil {
		cache, err := storage.NewExtractionCache(a.config.Cache.Directory, time.Duration(a.config.Cache.MaxAgeHrs)*time.Hour)
		if err != nil {
			return fmt.Errorf("failed to create extraction cache: %w", err)
		}
		log.Printf("Extraction cache initialized (%d entries)", cache.Len())

		a.extractor = ai.NewExtractor(a.llm, a.llm.Model(),
			a.config.Analysis.ExtractionAttempts, a.config.Analysis.ExtractionWorkers, cache)
	}

	if a.clusterer == nil {
		a.clusterer = NewClusterer(a.llm, a.config.Analysis.SimilarityThreshold)
	}
	if a.scorer == nil {
		a.scorer = NewScorer(a.config.Analysis.Weights)
	}
	if a.insights == nil {
		a.insights = ai.NewInsightGenerator(a.llm, a.config.Analysis.TopTrends)
	}

	return nil
}

func (a *TrendAgent) RunOnce(ctx context.Context) error {
	cfg := a.config.Analysis
	window := models.LastDays(cfg.DaysBack)

	report := &models.RunReport{
		RunID:       uuid.NewString(),
		Query:       cfg.Query,
		Window:      window,
		GeneratedAt: time.Now(),
		Dropped:     make(map[models.DropReason]int),
	}

	log.Printf("Fetching videos for query %q (last %d days, max %d)...", cfg.Query, cfg.DaysBack, cfg.MaxResults)
	videos, droppedStats, err := a.youtubeClient.Search(ctx, cfg.Query, window, cfg.MaxResults, cfg.Order)
	if err != nil {
		return fmt.Errorf("failed to fetch videos: %w", err)
	}
	if len(droppedStats) > 0 {
		report.Dropped[models.DropStatsUnavailable] = len(droppedStats)
	}
	if len(videos) == 0 {
		return fmt.Errorf("no videos found for query %q in the last %d days", cfg.Query, cfg.DaysBack)
	}
	report.VideosFetched = len(videos)
	log.Printf("Fetched %d videos (%s)", len(videos), a.quotaTracker.Status())

	log.Printf("Extracting topics from %d videos...", len(videos))
	assignments, droppedExtract := a.extractor.ExtractAll(ctx, videos)
	if len(droppedExtract) > 0 {
		report.Dropped[models.DropExtractionFailed] = len(droppedExtract)
	}
	if len(assignments) == 0 {
		return fmt.Errorf("topic extraction failed for all %d videos", len(videos))
	}

	ordered, err := sortByFetchOrder(assignments, videos)
	if err != nil {
		return fmt.Errorf("failed to order assignments: %w", err)
	}

	log.Printf("Clustering %d topic assignments (threshold %.2f)...", len(ordered), cfg.SimilarityThreshold)
	clusters, droppedEmbed, err := a.clusterer.Cluster(ctx, ordered)
	if err != nil {
		return fmt.Errorf("clustering failed: %w", err)
	}
	if len(droppedEmbed) > 0 {
		report.Dropped[models.DropEmbeddingFailed] = len(droppedEmbed)
	}
	if len(clusters) == 0 {
		return fmt.Errorf("no clusters produced from %d assignments", len(ordered))
	}

	byID := make(map[string]*models.VideoRecord, len(videos))
	for _, video := range videos {
		byID[video.ID] = video
	}
	report.Trends = a.scorer.Score(clusters, byID)
	log.Printf("Ranked %d clusters, top topic: %q", len(report.Trends), report.Trends[0].Topic)

	insight, err := a.insights.Generate(ctx, cfg.Query, report.Trends)
	if err != nil {
		// Insight is decorative: surface the ranked table without it.
		log.Printf("Warning: insight unavailable: %v", err)
		report.InsightAvailable = false
	} else {
		report.Insight = insight
		report.InsightAvailable = true
	}

	if path, err := export.WriteCSV(a.config.Export.Directory, report); err != nil {
		log.Printf("Warning: failed to export ranked table: %v", err)
	} else {
		log.Printf("Exported ranked table to %s", path)
	}

	a.lastReport = report

	metrics := &TrendMetrics{
		VideosFound: report.VideosFetched,
		Extracted:   len(assignments),
		Clusters:    len(clusters),
		Dropped:     report.DroppedTotal(),
	}
	a.lastMetrics = metrics
	log.Printf("Run %s complete: %s", report.RunID, metrics.GetSummary())
	if report.DroppedTotal() > 0 {
		for reason, count := range report.Dropped {
			log.Printf("  dropped %d: %s", count, reason)
		}
	}

	return nil
}

// Summary implements scheduler.Agent.
func (a *TrendAgent) Summary() string {
	if a.lastMetrics == nil {
		return "no runs yet"
	}
	return a.lastMetrics.GetSummary()
}

// LastReport returns the most recent run's report, or nil before any run.
func (a *TrendAgent) LastReport() *models.RunReport {
	return a.lastReport
}
