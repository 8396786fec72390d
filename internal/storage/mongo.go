package storage

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/qepting91/promo-scraper/internal/domain"
)

type runDoc struct {
	ID              string    `bson:"_id"`
	Keyword         string    `bson:"keyword"`
	Target          int       `bson:"target"`
	State           string    `bson:"state"`
	Collected       int       `bson:"collected"`
	Rounds          int       `bson:"rounds"`
	ScrollRounds    int       `bson:"scroll_rounds"`
	ExhaustedRounds int       `bson:"exhausted_rounds"`
	StartedAt       time.Time `bson:"started_at"`
	FinishedAt      time.Time `bson:"finished_at"`
}

type postDoc struct {
	URL         string    `bson:"url"`
	Keyword     string    `bson:"keyword"`
	RunID       string    `bson:"run_id"`
	Index       int       `bson:"index"`
	Text        string    `bson:"text"`
	CollectedAt time.Time `bson:"collected_at"`
}

// MongoArchive keeps every run and the posts it found. Posts are keyed by
// URL, so a post seen again in a later run is updated rather than duplicated.
type MongoArchive struct {
	client *mongo.Client
	runs   *mongo.Collection
	posts  *mongo.Collection
}

func NewMongoArchive(ctx context.Context, uri, database string) (*MongoArchive, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("can't ping MongoDB: %w", err)
	}

	db := client.Database(database)
	a := &MongoArchive{client: client, runs: db.Collection("runs"), posts: db.Collection("posts")}

	_, err = a.posts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "url", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "keyword", Value: 1}, {Key: "collected_at", Value: -1}}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("can't create indexes: %w", err)
	}
	return a, nil
}

// SaveRun stores the run summary and upserts its posts. Placeholders and
// posts without a URL are not archived.
func (a *MongoArchive) SaveRun(ctx context.Context, run *domain.Run) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	doc := runDoc{
		ID:              run.ID,
		Keyword:         run.Keyword,
		Target:          run.Target,
		State:           string(run.State),
		Collected:       len(run.Posts),
		Rounds:          run.Rounds,
		ScrollRounds:    run.ScrollRounds,
		ExhaustedRounds: run.ExhaustedRounds,
		StartedAt:       run.StartedAt,
		FinishedAt:      run.FinishedAt,
	}
	if _, err := a.runs.ReplaceOne(ctx, bson.M{"_id": run.ID}, doc, options.Replace().SetUpsert(true)); err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}

	var models []mongo.WriteModel
	for _, p := range run.Posts {
		if p.Placeholder || p.URL == "" {
			continue
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"url": p.URL}).
			SetUpdate(bson.M{"$set": postDoc{
				URL:         p.URL,
				Keyword:     run.Keyword,
				RunID:       run.ID,
				Index:       p.Index,
				Text:        p.Text,
				CollectedAt: p.CollectedAt,
			}}).
			SetUpsert(true))
	}
	if len(models) == 0 {
		return nil
	}
	if _, err := a.posts.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("save posts of run %s: %w", run.ID, err)
	}
	return nil
}

func (a *MongoArchive) Close(ctx context.Context) error {
	return a.client.Disconnect(ctx)
}
