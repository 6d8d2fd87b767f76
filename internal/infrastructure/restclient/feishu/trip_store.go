package feishu

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripwise/travel-guide/internal/core/domain"
)

const permissionHelp = "请检查飞书应用是否开通 bitable:app 权限、多维表格是否已分享给应用，以及 app_token / table_id 是否正确"

// TripStore persists trip requests and guides in two Bitable tables.
type TripStore struct {
	client   *Client
	requests Table
	guides   Table
	users    Table
	now      func() time.Time
	log      zerolog.Logger
}

// NewTripStore wires the request and guide tables. users is only probed by
// TestConnection and may be zero.
func NewTripStore(client *Client, requests, guides, users Table, log zerolog.Logger) *TripStore {
	return &TripStore{
		client:   client,
		requests: requests,
		guides:   guides,
		users:    users,
		now:      time.Now,
		log:      log.With().Str("component", "feishu_trip_store").Logger(),
	}
}

func (s *TripStore) SaveRequest(ctx context.Context, req *domain.TripRequest) (string, error) {
	created := req.CreatedAt
	if created.IsZero() {
		created = s.now()
	}
	recordID, err := s.client.CreateRecord(ctx, s.requests, map[string]any{
		"request_id":  req.ID,
		"destination": req.Destination,
		"origin":      req.Origin,
		"start_date":  req.StartDate,
		"end_date":    req.EndDate,
		"budget":      req.Budget,
		"preferences": req.Preferences,
		"created_at":  created.UnixMilli(),
	})
	if err != nil {
		return "", fmt.Errorf("save request %s: %w", req.ID, err)
	}
	s.log.Info().Str("request_id", req.ID).Str("destination", req.Destination).Msg("trip request saved")
	return recordID, nil
}

func (s *TripStore) SaveGuide(ctx context.Context, guide *domain.TripGuide) (string, error) {
	created := guide.CreatedAt
	if created.IsZero() {
		created = s.now()
	}
	recordID, err := s.client.CreateRecord(ctx, s.guides, map[string]any{
		"guide_id":      guide.ID,
		"request_id":    guide.RequestID,
		"destination":   guide.Destination,
		"weather_info":  guide.WeatherInfo,
		"guide_content": guide.Content,
		"created_at":    created.UnixMilli(),
	})
	if err != nil {
		return "", fmt.Errorf("save guide %s: %w", guide.ID, err)
	}
	s.log.Info().Str("guide_id", guide.ID).Str("destination", guide.Destination).Msg("trip guide saved")
	return recordID, nil
}

func (s *TripStore) UpdateGuideContent(ctx context.Context, guideID, content string) error {
	rec, err := s.findGuide(ctx, guideID)
	if err != nil {
		return err
	}
	if err := s.client.UpdateRecord(ctx, s.guides, rec.RecordID, map[string]any{"guide_content": content}); err != nil {
		return fmt.Errorf("update guide %s: %w", guideID, err)
	}
	return nil
}

func (s *TripStore) GetGuide(ctx context.Context, guideID string) (*domain.TripGuide, error) {
	rec, err := s.findGuide(ctx, guideID)
	if err != nil {
		return nil, err
	}
	g := guideFromFields(rec.Fields)
	return &g, nil
}

func (s *TripStore) findGuide(ctx context.Context, guideID string) (*Record, error) {
	page, err := s.client.ListRecords(ctx, s.guides, ListOptions{Filter: guideFilter(guideID)})
	if err != nil {
		return nil, fmt.Errorf("find guide %s: %w", guideID, err)
	}
	for i := range page.Items {
		if textField(page.Items[i].Fields, "guide_id") == guideID {
			return &page.Items[i], nil
		}
	}
	return nil, domain.ErrGuideNotFound
}

// ListRecentGuides returns the newest guides first. Bitable does not always
// honour the sort hint, so the table is read in full and ordered here.
func (s *TripStore) ListRecentGuides(ctx context.Context, limit int) ([]domain.TripGuide, error) {
	records, err := s.client.ListAll(ctx, s.guides, ListOptions{Sort: createdAtDesc})
	if err != nil {
		return nil, fmt.Errorf("list guides: %w", err)
	}
	guides := make([]domain.TripGuide, 0, len(records))
	for _, rec := range records {
		guides = append(guides, guideFromFields(rec.Fields))
	}
	sort.SliceStable(guides, func(i, j int) bool { return guides[i].CreatedAt.After(guides[j].CreatedAt) })
	return truncateTo(guides, clampLimit(limit)), nil
}

// ListRecentRequests returns the newest requests first, read the same way as
// ListRecentGuides.
func (s *TripStore) ListRecentRequests(ctx context.Context, limit int) ([]domain.TripRequest, error) {
	records, err := s.client.ListAll(ctx, s.requests, ListOptions{Sort: createdAtDesc})
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	reqs := make([]domain.TripRequest, 0, len(records))
	for _, rec := range records {
		reqs = append(reqs, requestFromFields(rec.Fields))
	}
	sort.SliceStable(reqs, func(i, j int) bool { return reqs[i].CreatedAt.After(reqs[j].CreatedAt) })
	return truncateTo(reqs, clampLimit(limit)), nil
}

// TestConnection probes the token and reads one row from each table.
func (s *TripStore) TestConnection(ctx context.Context) domain.StoreStatus {
	status := domain.StoreStatus{Token: s.client.TokenOK(ctx)}
	if status.Token {
		status.RequestTable = s.probe(ctx, s.requests, "request")
		status.GuideTable = s.probe(ctx, s.guides, "guide")
		if s.users.configured() {
			status.UserTable = s.probe(ctx, s.users, "user")
		} else {
			status.UserTable = true
		}
	}
	status.AllOK = status.Token && status.RequestTable && status.GuideTable && status.UserTable
	if !status.AllOK {
		status.Error = permissionHelp
	}
	return status
}

func (s *TripStore) probe(ctx context.Context, table Table, name string) bool {
	if _, err := s.client.ListRecords(ctx, table, ListOptions{PageSize: 1}); err != nil {
		s.log.Error().Err(err).Str("table", name).Msg("table probe failed")
		return false
	}
	return true
}

func requestFromFields(f map[string]any) domain.TripRequest {
	return domain.TripRequest{
		ID:          textField(f, "request_id"),
		Destination: textField(f, "destination"),
		Origin:      textField(f, "origin"),
		StartDate:   textField(f, "start_date"),
		EndDate:     textField(f, "end_date"),
		Budget:      numberField(f, "budget"),
		Preferences: textField(f, "preferences"),
		CreatedAt:   millisField(f, "created_at"),
	}
}

func guideFromFields(f map[string]any) domain.TripGuide {
	return domain.TripGuide{
		ID:          textField(f, "guide_id"),
		RequestID:   textField(f, "request_id"),
		Destination: textField(f, "destination"),
		WeatherInfo: textField(f, "weather_info"),
		Content:     textField(f, "guide_content"),
		CreatedAt:   millisField(f, "created_at"),
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

func truncateTo[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
