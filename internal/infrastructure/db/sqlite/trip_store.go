package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripwise/travel-guide/internal/core/domain"
)

// TripStore implements ports.TripRepository on SQLite.
type TripStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewTripStore(db *gorm.DB) *TripStore {
	return &TripStore{db: db, now: time.Now}
}

func (s *TripStore) SaveRequest(ctx context.Context, req *domain.TripRequest) (string, error) {
	row := requestRow{
		RecordID:    uuid.NewString(),
		RequestID:   req.ID,
		Destination: req.Destination,
		Origin:      req.Origin,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Budget:      req.Budget,
		Preferences: req.Preferences,
		CreatedAt:   s.stamp(req.CreatedAt),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("save request %s: %w", req.ID, err)
	}
	return row.RecordID, nil
}

func (s *TripStore) SaveGuide(ctx context.Context, guide *domain.TripGuide) (string, error) {
	row := guideRow{
		RecordID:     uuid.NewString(),
		GuideID:      guide.ID,
		RequestID:    guide.RequestID,
		Destination:  guide.Destination,
		WeatherInfo:  guide.WeatherInfo,
		GuideContent: guide.Content,
		CreatedAt:    s.stamp(guide.CreatedAt),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("save guide %s: %w", guide.ID, err)
	}
	return row.RecordID, nil
}

func (s *TripStore) UpdateGuideContent(ctx context.Context, guideID, content string) error {
	res := s.db.WithContext(ctx).Model(&guideRow{}).
		Where("guide_id = ?", guideID).
		Update("guide_content", content)
	if res.Error != nil {
		return fmt.Errorf("update guide %s: %w", guideID, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrGuideNotFound
	}
	return nil
}

func (s *TripStore) GetGuide(ctx context.Context, guideID string) (*domain.TripGuide, error) {
	var row guideRow
	err := s.db.WithContext(ctx).Where("guide_id = ?", guideID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrGuideNotFound
		}
		return nil, fmt.Errorf("get guide %s: %w", guideID, err)
	}
	g := row.toDomain()
	return &g, nil
}

func (s *TripStore) ListRecentGuides(ctx context.Context, limit int) ([]domain.TripGuide, error) {
	var rows []guideRow
	if err := s.db.WithContext(ctx).Order("created_at desc").Limit(clampLimit(limit)).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list guides: %w", err)
	}
	guides := make([]domain.TripGuide, 0, len(rows))
	for _, r := range rows {
		guides = append(guides, r.toDomain())
	}
	return guides, nil
}

func (s *TripStore) ListRecentRequests(ctx context.Context, limit int) ([]domain.TripRequest, error) {
	var rows []requestRow
	if err := s.db.WithContext(ctx).Order("created_at desc").Limit(clampLimit(limit)).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	reqs := make([]domain.TripRequest, 0, len(rows))
	for _, r := range rows {
		reqs = append(reqs, r.toDomain())
	}
	return reqs, nil
}

// TestConnection pings the database. There is no token; Token mirrors the
// connection result so AllOK keeps its meaning.
func (s *TripStore) TestConnection(ctx context.Context) domain.StoreStatus {
	status := domain.StoreStatus{}
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		status.Error = err.Error()
		return status
	}
	m := s.db.WithContext(ctx).Migrator()
	status.Token = true
	status.RequestTable = m.HasTable(&requestRow{})
	status.GuideTable = m.HasTable(&guideRow{})
	status.UserTable = m.HasTable(&userRow{})
	status.AllOK = status.RequestTable && status.GuideTable && status.UserTable
	if !status.AllOK {
		status.Error = "schema not migrated"
	}
	return status
}

func (s *TripStore) stamp(t time.Time) time.Time {
	if t.IsZero() {
		t = s.now()
	}
	return t.UTC()
}

func (r requestRow) toDomain() domain.TripRequest {
	return domain.TripRequest{
		ID:          r.RequestID,
		Destination: r.Destination,
		Origin:      r.Origin,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Budget:      r.Budget,
		Preferences: r.Preferences,
		CreatedAt:   r.CreatedAt,
	}
}

func (r guideRow) toDomain() domain.TripGuide {
	return domain.TripGuide{
		ID:          r.GuideID,
		RequestID:   r.RequestID,
		Destination: r.Destination,
		WeatherInfo: r.WeatherInfo,
		Content:     r.GuideContent,
		CreatedAt:   r.CreatedAt,
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	if limit > 100 {
		return 100
	}
	return limit
}
