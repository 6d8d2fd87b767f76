package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tripwise/travel-guide/internal/api/metrics"
	"github.com/tripwise/travel-guide/internal/core/domain"
	"github.com/tripwise/travel-guide/internal/core/ports"
)

const (
	guideTemperature  = 0.7
	guideMaxTokens    = 4000
	pitfallMaxTokens  = 2000
	weatherFailedNote = "天气信息获取失败，攻略未包含天气数据"
)

// GuideDeps wires the guide orchestration. LLM and Store are required;
// every other dependency may be nil and its step is then skipped.
type GuideDeps struct {
	LLM     ports.LLM
	Store   ports.TripRepository
	Weather ports.WeatherService
	Traffic ports.TrafficService
	Booking ports.BookingService
	Archive ports.GuideArchive
	Queue   ports.GuideEventQueue
}

// GuideService runs the linear generate / optimize pipeline. Only the LLM
// call is fatal; enrichment and persistence degrade to warnings.
type GuideService struct {
	deps GuideDeps
	log  zerolog.Logger
	now  func() time.Time
}

var _ ports.GuideService = (*GuideService)(nil)

func NewGuideService(deps GuideDeps, log zerolog.Logger) *GuideService {
	return &GuideService{
		deps: deps,
		log:  log.With().Str("component", "guide").Logger(),
		now:  time.Now,
	}
}

func (s *GuideService) Generate(ctx context.Context, in ports.GenerateInput) (*domain.GuideResult, error) {
	req := in.Request
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.ID = uuid.NewString()
	req.CreatedAt = s.now().UTC()

	log := s.log.With().Str("request_id", req.ID).Str("destination", req.Destination).Logger()
	var warnings []string

	// 1. Weather (best effort)
	weatherInfo := ""
	if s.deps.Weather != nil {
		report, err := s.deps.Weather.ForTrip(ctx, req.Destination, req.StartDate, req.EndDate)
		if err != nil {
			log.Warn().Err(err).Msg("weather unavailable")
			metrics.EnrichmentDegradedTotal.WithLabelValues("weather").Inc()
			warnings = append(warnings, weatherFailedNote)
		} else {
			weatherInfo = report.Text()
			if report.Warning != "" {
				warnings = append(warnings, report.Warning)
			}
		}
	}

	// 2. Traffic (best effort, only between two places)
	trafficInfo := ""
	if s.deps.Traffic != nil && req.Origin != req.Destination {
		trafficInfo = s.deps.Traffic.GuideText(ctx, req.Origin, req.Destination)
	}

	// 3. LLM
	out, err := s.deps.LLM.Complete(ctx, ports.CompletionRequest{
		Messages: []ports.ChatMessage{
			{Role: "system", Content: guideSystemPrompt},
			{Role: "user", Content: guideUserMessage(req, weatherInfo, trafficInfo)},
		},
		Temperature: guideTemperature,
		MaxTokens:   guideMaxTokens,
	})
	if err == nil && strings.TrimSpace(out.Content) == "" {
		err = errors.New("empty completion")
	}
	if err != nil {
		metrics.GuidesGeneratedTotal.WithLabelValues("failed").Inc()
		log.Error().Err(err).Msg("guide generation failed")
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}
	content := out.Content

	// 4. Booking (best effort)
	if in.IncludeBooking && s.deps.Booking != nil {
		info := s.deps.Booking.Info(ctx, req)
		content += "\n\n" + s.deps.Booking.Markdown(info)
		if info.FlightsFallback {
			metrics.EnrichmentDegradedTotal.WithLabelValues("booking").Inc()
			warnings = append(warnings, info.Warning)
		}
	}

	guide := domain.TripGuide{
		ID:          uuid.NewString(),
		RequestID:   req.ID,
		Destination: req.Destination,
		WeatherInfo: weatherInfo,
		Content:     content,
		CreatedAt:   s.now().UTC(),
	}

	// 5. Persist (best effort)
	warning := ""
	if err := s.persist(ctx, &req, &guide); err != nil {
		metrics.GuidePersistFailuresTotal.Inc()
		log.Warn().Err(err).Str("guide_id", guide.ID).Msg("guide not persisted")
		warning = "攻略已生成，但保存失败: " + err.Error()
	}

	// 6. Archive + event (async)
	s.enqueue(domain.GuideEvent{
		Subject:   domain.SubjectGuideCreated,
		Guide:     guide,
		Request:   &req,
		Username:  in.Username,
		Persisted: warning == "",
		At:        guide.CreatedAt,
	})

	metrics.GuidesGeneratedTotal.WithLabelValues("ok").Inc()
	log.Info().Str("guide_id", guide.ID).Int("tokens", out.Usage.TotalTokens).Msg("guide generated")

	usage := out.Usage
	return &domain.GuideResult{
		Success:     true,
		GuideID:     guide.ID,
		RequestID:   req.ID,
		Content:     guide.Content,
		WeatherInfo: weatherInfo,
		TrafficInfo: trafficInfo,
		Warning:     warning,
		Warnings:    warnings,
		Usage:       &usage,
	}, nil
}

// Optimize rewrites a guide following the user's suggestion. The new text
// replaces the old one entirely.
func (s *GuideService) Optimize(ctx context.Context, in ports.OptimizeInput) (*domain.GuideResult, error) {
	suggestion := strings.TrimSpace(in.Suggestion)
	if suggestion == "" {
		return nil, domain.ErrSuggestionRequired
	}

	guide := &domain.TripGuide{ID: in.GuideID, Content: in.Content}
	if in.GuideID != "" {
		stored, err := s.Get(ctx, in.GuideID)
		switch {
		case err == nil:
			guide = stored
			if in.Content != "" {
				guide.Content = in.Content
			}
		case in.Content == "":
			return nil, err
		}
	}
	if guide.Content == "" {
		return nil, domain.ErrGuideNotFound
	}

	log := s.log.With().Str("guide_id", guide.ID).Logger()

	out, err := s.deps.LLM.Complete(ctx, ports.CompletionRequest{
		Messages: []ports.ChatMessage{
			{Role: "system", Content: optimizeSystemPrompt},
			{Role: "user", Content: optimizeUserMessage(suggestion, guide.Content)},
		},
		Temperature: guideTemperature,
		MaxTokens:   guideMaxTokens,
	})
	if err == nil && strings.TrimSpace(out.Content) == "" {
		err = errors.New("empty completion")
	}
	if err != nil {
		metrics.GuidesGeneratedTotal.WithLabelValues("failed").Inc()
		log.Error().Err(err).Msg("guide optimization failed")
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}

	guide.ReplaceContent(out.Content)

	warning := ""
	if guide.ID != "" {
		if err := s.deps.Store.UpdateGuideContent(ctx, guide.ID, guide.Content); err != nil {
			metrics.GuidePersistFailuresTotal.Inc()
			log.Warn().Err(err).Msg("optimized guide not persisted")
			warning = "攻略已优化，但保存失败: " + err.Error()
		}
		s.enqueue(domain.GuideEvent{
			Subject:   domain.SubjectGuideOptimized,
			Guide:     *guide,
			Username:  in.Username,
			Persisted: warning == "",
			At:        s.now().UTC(),
		})
	}

	metrics.GuidesGeneratedTotal.WithLabelValues("optimized").Inc()
	log.Info().Int("tokens", out.Usage.TotalTokens).Msg("guide optimized")

	usage := out.Usage
	return &domain.GuideResult{
		Success:   true,
		GuideID:   guide.ID,
		RequestID: guide.RequestID,
		Content:   guide.Content,
		Warning:   warning,
		Usage:     &usage,
	}, nil
}

// Pitfalls drafts a list of tourist traps for destination. The result is
// not stored.
func (s *GuideService) Pitfalls(ctx context.Context, destination, preferences string) (*domain.GuideResult, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return nil, domain.ErrDestinationRequired
	}

	out, err := s.deps.LLM.Complete(ctx, ports.CompletionRequest{
		Messages: []ports.ChatMessage{
			{Role: "system", Content: pitfallSystemPrompt},
			{Role: "user", Content: pitfallUserMessage(destination, preferences)},
		},
		Temperature: guideTemperature,
		MaxTokens:   pitfallMaxTokens,
	})
	if err != nil {
		s.log.Error().Err(err).Str("destination", destination).Msg("pitfall guide failed")
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}

	usage := out.Usage
	return &domain.GuideResult{Success: true, Content: out.Content, Usage: &usage}, nil
}

// Get reads the guide from the store and falls back to the archive.
func (s *GuideService) Get(ctx context.Context, guideID string) (*domain.TripGuide, error) {
	guide, err := s.deps.Store.GetGuide(ctx, guideID)
	if err == nil {
		return guide, nil
	}
	if s.deps.Archive == nil {
		return nil, err
	}
	archived, aerr := s.deps.Archive.FindByID(ctx, guideID)
	if aerr != nil {
		if !errors.Is(err, domain.ErrGuideNotFound) {
			s.log.Warn().Err(err).Str("guide_id", guideID).Msg("store read failed and guide not archived")
		}
		return nil, err
	}
	return archived, nil
}

func (s *GuideService) ListRecent(ctx context.Context, limit int) ([]domain.TripGuide, error) {
	return s.deps.Store.ListRecentGuides(ctx, limit)
}

func (s *GuideService) ListRequests(ctx context.Context, limit int) ([]domain.TripRequest, error) {
	return s.deps.Store.ListRecentRequests(ctx, limit)
}

func (s *GuideService) StoreStatus(ctx context.Context) domain.StoreStatus {
	return s.deps.Store.TestConnection(ctx)
}

// persist writes the request and then the guide. A failure after the
// request was written leaves it without a guide.
func (s *GuideService) persist(ctx context.Context, req *domain.TripRequest, guide *domain.TripGuide) error {
	if _, err := s.deps.Store.SaveRequest(ctx, req); err != nil {
		return fmt.Errorf("save request: %w", err)
	}
	if _, err := s.deps.Store.SaveGuide(ctx, guide); err != nil {
		return fmt.Errorf("save guide: %w", err)
	}
	return nil
}

func (s *GuideService) enqueue(event domain.GuideEvent) {
	if s.deps.Queue != nil {
		s.deps.Queue.Enqueue(event)
	}
}
