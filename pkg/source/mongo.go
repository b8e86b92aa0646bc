package source

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/arbor/pkg/cache"
	"github.com/matzehuels/arbor/pkg/errors"
)

// MongoConfig locates a collection of flat records.
type MongoConfig struct {
	URI        string `koanf:"uri" yaml:"uri" json:"uri"`
	Database   string `koanf:"database" yaml:"database" json:"database"`
	Collection string `koanf:"collection" yaml:"collection" json:"collection"`
	// RootID selects the root record. When empty the record without a
	// parent_id is used.
	RootID string `koanf:"root_id" yaml:"root_id" json:"root_id"`
	// CountChildren fills HasChildren by querying for at least one child
	// instead of trusting the stored flag.
	CountChildren bool          `koanf:"count_children" yaml:"count_children" json:"count_children"`
	Timeout       time.Duration `koanf:"timeout" yaml:"timeout" json:"timeout"`
}

// Validate checks that the collection is fully named.
func (c MongoConfig) Validate() error {
	if err := errors.ValidateURL(c.URI, "mongodb", "mongodb+srv"); err != nil {
		return err
	}
	if c.Database == "" || c.Collection == "" {
		return errors.Config("mongo database and collection are required")
	}
	return nil
}

// MongoLoader reads records from a MongoDB collection, querying children
// by parent_id. Network failures are retried with backoff.
type MongoLoader struct {
	client *mongo.Client
	coll   *mongo.Collection
	cfg    MongoConfig
}

// NewMongoLoader connects to MongoDB and pings the server.
func NewMongoLoader(ctx context.Context, cfg MongoConfig) (*MongoLoader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	opts := options.Client().ApplyURI(cfg.URI).SetTimeout(cfg.Timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongo")
	}
	err = cache.DefaultBackoff.Do(ctx, func() error {
		return classify(client.Ping(ctx, nil))
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongo")
	}
	return &MongoLoader{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
		cfg:    cfg,
	}, nil
}

// Name implements Loader.
func (l *MongoLoader) Name() string {
	return fmt.Sprintf("mongo:%s.%s", l.cfg.Database, l.cfg.Collection)
}

// Root implements Loader.
func (l *MongoLoader) Root(ctx context.Context) (*Record, error) {
	filter := bson.M{"parent_id": bson.M{"$in": bson.A{nil, ""}}}
	if l.cfg.RootID != "" {
		filter = bson.M{"_id": l.cfg.RootID}
	}
	var root Record
	err := cache.DefaultBackoff.Do(ctx, func() error {
		return classify(l.coll.FindOne(ctx, filter).Decode(&root))
	})
	if errors.Is(err, errors.ErrCodeNotFound) {
		return nil, errors.New(errors.ErrCodeNodeNotFound, "no root record in %s", l.Name())
	}
	if err != nil {
		return nil, err
	}
	root.ParentID = ""
	root.HasChildren = true
	return &root, nil
}

// Children implements Loader. Children are sorted by label.
func (l *MongoLoader) Children(ctx context.Context, parent *Record) ([]*Record, error) {
	var out []*Record
	err := cache.DefaultBackoff.Do(ctx, func() error {
		cur, err := l.coll.Find(ctx,
			bson.M{"parent_id": parent.ID},
			options.Find().SetSort(bson.D{{Key: "label", Value: 1}, {Key: "_id", Value: 1}}))
		if err != nil {
			return classify(err)
		}
		out = nil
		return classify(cur.All(ctx, &out))
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLoad, err, "children of %s", parent.ID)
	}
	if l.cfg.CountChildren {
		for _, r := range out {
			n, err := l.coll.CountDocuments(ctx, bson.M{"parent_id": r.ID}, options.Count().SetLimit(1))
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeLoad, err, "count children of %s", r.ID)
			}
			r.HasChildren = n > 0
		}
	}
	return out, nil
}

// Close disconnects the client.
func (l *MongoLoader) Close(ctx context.Context) error {
	return l.client.Disconnect(ctx)
}

// classify tags driver errors with NETWORK_ERROR or TIMEOUT so the
// backoff retries them, and maps "no documents" to NOT_FOUND.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case err == mongo.ErrNoDocuments:
		return errors.Wrap(errors.ErrCodeNotFound, err, "no documents")
	case mongo.IsTimeout(err):
		return errors.Wrap(errors.ErrCodeTimeout, err, "mongo")
	case mongo.IsNetworkError(err):
		return errors.Wrap(errors.ErrCodeNetwork, err, "mongo")
	}
	return err
}
