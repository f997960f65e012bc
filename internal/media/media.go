package media

import "context"

// Store is the object-storage collaborator: it accepts raw encoded
// media and returns a stable retrieval URL. The production
// implementation lives in a separate service.
type Store interface {
	Upload(ctx context.Context, data string, mediaType string) (string, error)
}

// PassthroughStore returns the submitted data reference unchanged.
// Clients submit media as data URLs or pre-uploaded references, so the
// reference is already stable; this keeps handlers working without the
// external store.
type PassthroughStore struct{}

func (PassthroughStore) Upload(_ context.Context, data string, _ string) (string, error) {
	return data, nil
}
