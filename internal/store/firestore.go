package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreClient implements Client on top of Cloud Firestore. Entities are
// encoded with their `firestore` struct tags.
type FirestoreClient struct {
	fs *firestore.Client
}

// NewFirestoreClient connects to the Firestore database of projectID. When the
// FIRESTORE_EMULATOR_HOST variable is set the SDK targets the emulator.
func NewFirestoreClient(ctx context.Context, projectID string) (*FirestoreClient, error) {
	fs, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &FirestoreClient{fs: fs}, nil
}

// Get implements Client.
func (c *FirestoreClient) Get(ctx context.Context, collection, id string) (*Document, error) {
	snap, err := c.fs.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return snapshotDoc(snap), nil
}

// List implements Client.
func (c *FirestoreClient) List(ctx context.Context, collection string) ([]*Document, error) {
	snaps, err := c.fs.Collection(collection).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return snapshotDocs(snaps), nil
}

// QueryByField implements Client.
func (c *FirestoreClient) QueryByField(ctx context.Context, collection, field, value string) ([]*Document, error) {
	if !validField(field) {
		return nil, ErrInvalidField
	}
	snaps, err := c.fs.Collection(collection).Where(field, "==", value).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return snapshotDocs(snaps), nil
}

// Set implements Client.
func (c *FirestoreClient) Set(ctx context.Context, collection, id string, data any) error {
	_, err := c.fs.Collection(collection).Doc(id).Set(ctx, data)
	return err
}

// Create implements Client. The id is generated client-side by the SDK.
func (c *FirestoreClient) Create(ctx context.Context, collection string, data any) (string, error) {
	ref := c.fs.Collection(collection).NewDoc()
	if _, err := ref.Set(ctx, data); err != nil {
		return "", err
	}
	return ref.ID, nil
}

// Delete implements Client. Firestore deletes of missing documents succeed.
func (c *FirestoreClient) Delete(ctx context.Context, collection, id string) error {
	_, err := c.fs.Collection(collection).Doc(id).Delete(ctx)
	if status.Code(err) == codes.NotFound {
		return nil
	}
	return err
}

// Close implements Client.
func (c *FirestoreClient) Close() error { return c.fs.Close() }

func snapshotDoc(snap *firestore.DocumentSnapshot) *Document {
	return NewDocument(snap.Ref.ID, snap.DataTo)
}

func snapshotDocs(snaps []*firestore.DocumentSnapshot) []*Document {
	out := make([]*Document, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, snapshotDoc(s))
	}
	return out
}
