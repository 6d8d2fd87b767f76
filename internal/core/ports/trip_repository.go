package ports

import (
	"context"

	"github.com/tripwise/travel-guide/internal/core/domain"
)

// TripRepository persists trip requests and guides. Every write is an
// independent single-record operation.
type TripRepository interface {
	SaveRequest(ctx context.Context, req *domain.TripRequest) (string, error)
	SaveGuide(ctx context.Context, guide *domain.TripGuide) (string, error)
	UpdateGuideContent(ctx context.Context, guideID, content string) error
	GetGuide(ctx context.Context, guideID string) (*domain.TripGuide, error)
	ListRecentGuides(ctx context.Context, limit int) ([]domain.TripGuide, error)
	ListRecentRequests(ctx context.Context, limit int) ([]domain.TripRequest, error)
	TestConnection(ctx context.Context) domain.StoreStatus
}

// GuideArchive is a local mirror of every guide version.
type GuideArchive interface {
	Upsert(ctx context.Context, guide *domain.TripGuide, req *domain.TripRequest) error
	FindByID(ctx context.Context, guideID string) (*domain.TripGuide, error)
}

// EventPublisher publishes domain events on a subject.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}

// GuideEventQueue accepts guide events for asynchronous archiving and
// publication. Enqueue never blocks the caller.
type GuideEventQueue interface {
	Enqueue(event domain.GuideEvent)
}
