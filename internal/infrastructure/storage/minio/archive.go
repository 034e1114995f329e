package minio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"github.com/veriflowhq/veriflow/internal/infrastructure/monitoring/logging"
	"github.com/veriflowhq/veriflow/pkg/errors"
)

// EvidenceArchive stores provider payloads as JSON objects keyed by
// verification, one object per payload.
type EvidenceArchive struct {
	client *Client
	logger logging.Logger
}

// NewEvidenceArchive creates an archive over the given client.
func NewEvidenceArchive(client *Client, log logging.Logger) *EvidenceArchive {
	return &EvidenceArchive{client: client, logger: log}
}

func objectKey(verificationID uuid.UUID, name string) string {
	return fmt.Sprintf("verifications/%s/%s", verificationID, name)
}

// Archive serialises the payload and writes it under the verification's
// prefix. Existing objects with the same name are overwritten.
func (a *EvidenceArchive) Archive(ctx context.Context, verificationID uuid.UUID, name string, payload any) error {
	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.CodeSerialization, "failed to marshal evidence payload")
	}

	key := objectKey(verificationID, name)
	_, err = a.client.store.PutObject(ctx, a.client.cfg.Bucket, key,
		bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return errors.Wrap(err, errors.CodeUnavailable, "failed to store evidence")
	}

	a.logger.Debug("evidence archived",
		logging.String("key", key),
		logging.Int("bytes", len(body)),
	)
	return nil
}

// Fetch reads a previously archived payload back. Used by the review API to
// show what the provider actually returned.
func (a *EvidenceArchive) Fetch(ctx context.Context, verificationID uuid.UUID, name string) ([]byte, error) {
	key := objectKey(verificationID, name)
	obj, err := a.client.store.GetObject(ctx, a.client.cfg.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "failed to fetch evidence")
	}
	defer obj.Close()

	body, err := io.ReadAll(obj)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeNotFound, "evidence not found")
	}
	return body, nil
}
