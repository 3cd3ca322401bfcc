package store

import (
	"context"
	stderrors "errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lemu/seamless-sea-sub003/pkg/errors"
	"github.com/lemu/seamless-sea-sub003/pkg/grid"
)

// MongoStore keeps one document per board. Breakpoints are fields of the
// document's layouts map, so a write touches a single field and concurrent
// writes to different breakpoints do not clobber each other. Subscribe uses
// change streams and therefore needs a replica set.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	keyer  Keyer
	logger *log.Logger
	owned  bool
}

type mongoBoard struct {
	ID        string       `bson:"_id"`
	Board     string       `bson:"board"`
	Layouts   grid.Layouts `bson:"layouts"`
	UpdatedAt time.Time    `bson:"updated_at"`
}

// NewMongoStore uses an existing collection.
func NewMongoStore(coll *mongo.Collection, keyer Keyer, logger *log.Logger) *MongoStore {
	if keyer == nil {
		keyer = NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &MongoStore{client: coll.Database().Client(), coll: coll, keyer: keyer, logger: logger}
}

// DialMongo connects to uri and uses database.collection.
// The returned store owns the client.
func DialMongo(ctx context.Context, uri, database, collection string, keyer Keyer, logger *log.Logger) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "connect mongo")
	}
	err = retry(ctx, 3, connectDelay, func() error {
		return retryable(client.Ping(ctx, nil))
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "ping mongo")
	}
	s := NewMongoStore(client.Database(database).Collection(collection), keyer, logger)
	s.owned = true
	return s, nil
}

// ReadLayouts implements Repository.
func (s *MongoStore) ReadLayouts(ctx context.Context, boardID string) (grid.Layouts, error) {
	var doc mongoBoard
	err := s.coll.FindOne(ctx, bson.M{"_id": s.keyer.BoardKey(boardID)}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return grid.Layouts{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "read board %s", boardID)
	}
	if doc.Layouts == nil {
		doc.Layouts = grid.Layouts{}
	}
	return doc.Layouts, nil
}

// WriteLayout implements Repository.
func (s *MongoStore) WriteLayout(ctx context.Context, boardID, breakpoint string, layout grid.Layout) error {
	if err := checkWrite(boardID, breakpoint, layout); err != nil {
		return err
	}
	if layout == nil {
		layout = grid.Layout{}
	}

	update := bson.M{"$set": bson.M{
		"board":                 boardID,
		"layouts." + breakpoint: layout,
		"updated_at":            time.Now().UTC(),
	}}
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": s.keyer.BoardKey(boardID)}, update,
		options.Update().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "write board %s", boardID)
	}
	return nil
}

// Subscribe implements Repository.
func (s *MongoStore) Subscribe(ctx context.Context, boardID string) (<-chan grid.Layouts, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "documentKey._id", Value: s.keyer.BoardKey(boardID)}}}},
	}
	cs, err := s.coll.Watch(ctx, pipeline, options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "watch board %s", boardID)
	}

	out := make(chan grid.Layouts, 1)
	logger := s.logger.With("board", boardID)

	go func() {
		defer close(out)
		defer cs.Close(context.Background())
		for cs.Next(ctx) {
			var event struct {
				FullDocument *mongoBoard `bson:"fullDocument"`
			}
			if err := cs.Decode(&event); err != nil {
				logger.Warn("decode change event failed", "err", err)
				continue
			}
			if event.FullDocument == nil {
				continue
			}
			ls := event.FullDocument.Layouts
			if ls == nil {
				ls = grid.Layouts{}
			}
			offer(out, ls)
		}
		if err := cs.Err(); err != nil && ctx.Err() == nil {
			logger.Warn("change stream ended", "err", err)
		}
	}()
	return out, nil
}

// Close implements Repository.
func (s *MongoStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Disconnect(context.Background())
}

var _ Repository = (*MongoStore)(nil)
