package storage

import (
	"errors"
	"fmt"
	"strings"
)

// endpointTypes maps well-known endpoint hosts to their storage flavor.
var endpointTypes = []struct {
	suffix string
	kind   StorageType
}{
	{"r2.cloudflarestorage.com", StorageTypeR2},
	{"amazonaws.com", StorageTypeS3},
}

// NewStorage creates the remote bundle mirror described by cfg.
// Parameters:
//   - cfg: storage type, endpoint, credentials and bucket. An empty Type is
//     detected from the endpoint.
//
// Returns:
//   - ObjectStorage: S3-compatible client, or an in-memory store for "memory".
//   - error: non-nil if the type is unknown, the bucket is missing, or the
//     client cannot be created.
func NewStorage(cfg *S3Config) (ObjectStorage, error) {
	kind := cfg.Type
	if kind == "" {
		kind = detectStorageType(cfg.Endpoint)
	}

	switch kind {
	case StorageTypeMemory:
		return NewMemoryStorage(cfg.PublicURL), nil
	case StorageTypeR2, StorageTypeS3, StorageTypeS3Compatible:
	default:
		return nil, fmt.Errorf("unsupported storage type %q", kind)
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}

	resolved := *cfg
	resolved.Type = kind
	return NewS3Storage(&resolved)
}

func detectStorageType(endpoint string) StorageType {
	host := strings.ToLower(normalizeEndpoint(endpoint))
	for _, e := range endpointTypes {
		if strings.HasSuffix(host, e.suffix) {
			return e.kind
		}
	}
	return StorageTypeS3Compatible
}
