package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tripwise/travel-guide/internal/core/domain"
)

const guidesCollection = "guides"

// GuideArchive implements ports.GuideArchive. Each guide is one document
// holding the current content plus every earlier revision.
type GuideArchive struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewGuideArchive(db *mongo.Database) *GuideArchive {
	return &GuideArchive{coll: db.Collection(guidesCollection), now: time.Now}
}

// EnsureIndexes creates the unique guide_id index.
func (a *GuideArchive) EnsureIndexes(ctx context.Context) error {
	_, err := a.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "guide_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create guide index: %w", err)
	}
	return nil
}

type requestDoc struct {
	RequestID   string  `bson:"request_id"`
	Origin      string  `bson:"origin"`
	StartDate   string  `bson:"start_date"`
	EndDate     string  `bson:"end_date"`
	Budget      float64 `bson:"budget"`
	Preferences string  `bson:"preferences"`
}

type guideDoc struct {
	GuideID     string      `bson:"guide_id"`
	RequestID   string      `bson:"request_id"`
	Destination string      `bson:"destination"`
	WeatherInfo string      `bson:"weather_info"`
	Content     string      `bson:"content"`
	Request     *requestDoc `bson:"request,omitempty"`
	CreatedAt   time.Time   `bson:"created_at"`
	UpdatedAt   time.Time   `bson:"updated_at"`
}

// Upsert mirrors the guide's current content and appends it to the revision
// history. req is only recorded on first insert.
func (a *GuideArchive) Upsert(ctx context.Context, guide *domain.TripGuide, req *domain.TripRequest) error {
	now := a.now().UTC()
	created := guide.CreatedAt
	if created.IsZero() {
		created = now
	}

	onInsert := bson.M{"created_at": created.UTC()}
	if req != nil {
		onInsert["request"] = requestDoc{
			RequestID:   req.ID,
			Origin:      req.Origin,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
			Budget:      req.Budget,
			Preferences: req.Preferences,
		}
	}

	update := bson.M{
		"$set": bson.M{
			"request_id":   guide.RequestID,
			"destination":  guide.Destination,
			"weather_info": guide.WeatherInfo,
			"content":      guide.Content,
			"updated_at":   now,
		},
		"$setOnInsert": onInsert,
		"$push": bson.M{"revisions": bson.M{
			"content": guide.Content,
			"at":      now,
		}},
	}

	_, err := a.coll.UpdateOne(ctx, bson.M{"guide_id": guide.ID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("archive guide %s: %w", guide.ID, err)
	}
	return nil
}

func (a *GuideArchive) FindByID(ctx context.Context, guideID string) (*domain.TripGuide, error) {
	var doc guideDoc
	err := a.coll.FindOne(ctx, bson.M{"guide_id": guideID},
		options.FindOne().SetProjection(bson.M{"revisions": 0})).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrGuideNotFound
		}
		return nil, fmt.Errorf("find guide %s: %w", guideID, err)
	}
	return &domain.TripGuide{
		ID:          doc.GuideID,
		RequestID:   doc.RequestID,
		Destination: doc.Destination,
		WeatherInfo: doc.WeatherInfo,
		Content:     doc.Content,
		CreatedAt:   doc.CreatedAt,
	}, nil
}
