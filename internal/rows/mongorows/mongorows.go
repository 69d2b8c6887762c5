// Package mongorows reads rows from MongoDB collections named after the
// relational tables, one document per row.
package mongorows

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/five82/circle/internal/apperr"
	"github.com/five82/circle/internal/rows"
)

// finder is the part of *mongo.Collection the store uses.
type finder interface {
	Find(ctx context.Context, filter any, opts ...*options.FindOptions) (*mongo.Cursor, error)
}

// Store answers row queries from a MongoDB database.
type Store struct {
	collection func(name string) finder
}

var _ rows.Querier = (*Store)(nil)

// Connect opens a client for uri and pings it.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, fmt.Errorf("%w: mongo uri is empty", apperr.ErrValidation)
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: connect mongo: %w", apperr.ErrTransport, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: ping mongo: %w", apperr.ErrTransport, err)
	}
	return client, nil
}

// New reads from db.
func New(db *mongo.Database) *Store {
	return &Store{collection: func(name string) finder { return db.Collection(name) }}
}

// Select runs q against the collection named table.
func (s *Store) Select(ctx context.Context, table string, q rows.Query) ([]rows.Row, error) {
	if err := q.Validate(table); err != nil {
		return nil, err
	}
	opts := options.Find().SetProjection(projection(q.Cols))
	cur, err := s.collection(table).Find(ctx, filter(q), opts)
	if err != nil {
		return nil, fmt.Errorf("%w: find %s: %w", apperr.ErrTransport, table, err)
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", apperr.ErrTransport, table, err)
	}
	out := make([]rows.Row, 0, len(docs))
	for _, doc := range docs {
		out = append(out, normalize(doc))
	}
	return out, nil
}

func filter(q rows.Query) bson.M {
	f := bson.M{}
	for col, v := range q.Eq {
		f[col] = v
	}
	for col, values := range q.In {
		f[col] = bson.M{"$in": values}
	}
	return f
}

func projection(cols []string) bson.M {
	p := bson.M{"_id": 0}
	for _, col := range cols {
		p[col] = 1
	}
	return p
}

// normalize turns BSON values into the shapes rows.Row readers expect.
func normalize(doc bson.M) rows.Row {
	out := make(rows.Row, len(doc))
	for k, v := range doc {
		switch tv := v.(type) {
		case primitive.ObjectID:
			out[k] = tv.Hex()
		case primitive.DateTime:
			out[k] = tv.Time().UTC()
		case primitive.Binary:
			if id, err := uuid.FromBytes(tv.Data); err == nil && (tv.Subtype == 3 || tv.Subtype == 4) {
				out[k] = id.String()
			} else {
				out[k] = tv
			}
		case int32:
			out[k] = int64(tv)
		default:
			out[k] = v
		}
	}
	return out
}
