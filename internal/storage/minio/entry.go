package minio

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"github.com/dtroode/gophkeeper-vault/internal/model"
)

const entriesPrefix = "entries"

var _ model.EntryStore = (*Client)(nil)

// entryDocument is the JSON object stored at entries/<owner>/<record>.json.
// SecretCiphertext is base64-encoded by encoding/json.
type entryDocument struct {
	OwnerID          uuid.UUID `json:"owner_id"`
	RecordID         uuid.UUID `json:"record_id"`
	Label            string    `json:"label"`
	Location         string    `json:"location,omitempty"`
	AccountName      string    `json:"account_name"`
	SecretCiphertext []byte    `json:"secret_ciphertext"`
	Notes            string    `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func objectKey(ownerID, recordID uuid.UUID) string {
	return path.Join(entriesPrefix, ownerID.String(), recordID.String()+".json")
}

func ownerPrefix(ownerID uuid.UUID) string {
	return path.Join(entriesPrefix, ownerID.String()) + "/"
}

// Create writes the document only if no object exists under its key.
func (c *Client) Create(ctx context.Context, entry model.Entry) error {
	data, err := json.Marshal(toDocument(entry))
	if err != nil {
		return fmt.Errorf("failed to encode entry: %w", err)
	}

	opts := minio.PutObjectOptions{}
	opts.SetMatchETagExcept("*")
	if err := c.upload(ctx, objectKey(entry.OwnerID, entry.ID), data, opts); err != nil {
		if isPreconditionFailed(err) {
			return model.ErrConflict
		}
		return fmt.Errorf("failed to upload entry: %w", err)
	}
	return nil
}

// Replace overwrites the document only if an object exists under its key.
func (c *Client) Replace(ctx context.Context, entry model.Entry) error {
	data, err := json.Marshal(toDocument(entry))
	if err != nil {
		return fmt.Errorf("failed to encode entry: %w", err)
	}

	opts := minio.PutObjectOptions{}
	opts.SetMatchETag("*")
	if err := c.upload(ctx, objectKey(entry.OwnerID, entry.ID), data, opts); err != nil {
		if isPreconditionFailed(err) || isNotFound(err) {
			return model.ErrNotFound
		}
		return fmt.Errorf("failed to upload entry: %w", err)
	}
	return nil
}

func (c *Client) Get(ctx context.Context, ownerID, recordID uuid.UUID) (model.Entry, error) {
	data, err := c.download(ctx, objectKey(ownerID, recordID))
	if err != nil {
		if isNotFound(err) {
			return model.Entry{}, model.ErrNotFound
		}
		return model.Entry{}, fmt.Errorf("failed to get object: %w", err)
	}
	return decodeEntry(data)
}

// Delete stats the object first since S3 deletes succeed for missing keys.
// S3 has no conditional delete, so two concurrent Deletes of one record can
// both pass the stat and report success. Sequential deletes get ErrNotFound.
func (c *Client) Delete(ctx context.Context, ownerID, recordID uuid.UUID) error {
	key := objectKey(ownerID, recordID)
	if _, err := c.api.StatObject(ctx, c.bucket, key, minio.StatObjectOptions{}); err != nil {
		if isNotFound(err) {
			return model.ErrNotFound
		}
		return fmt.Errorf("failed to stat object: %w", err)
	}

	if err := c.api.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// Scan lists the owner's prefix and loads every document. Objects removed
// between listing and loading are skipped.
func (c *Client) Scan(ctx context.Context, ownerID uuid.UUID) ([]model.Entry, error) {
	keys, err := c.listKeys(ctx, ownerPrefix(ownerID))
	if err != nil {
		return nil, err
	}

	entries := make([]model.Entry, 0, len(keys))
	for _, key := range keys {
		if !strings.HasSuffix(key, ".json") {
			continue
		}
		data, err := c.download(ctx, key)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("failed to get object: %w", err)
		}
		e, err := decodeEntry(data)
		if err != nil {
			return nil, err
		}
		if e.OwnerID != ownerID {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func toDocument(e model.Entry) entryDocument {
	return entryDocument{
		OwnerID:          e.OwnerID,
		RecordID:         e.ID,
		Label:            e.Label,
		Location:         e.Location,
		AccountName:      e.AccountName,
		SecretCiphertext: e.SecretCiphertext,
		Notes:            e.Notes,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func decodeEntry(data []byte) (model.Entry, error) {
	var doc entryDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.Entry{}, fmt.Errorf("failed to decode entry: %w", err)
	}
	return model.Entry{
		OwnerID:          doc.OwnerID,
		ID:               doc.RecordID,
		Label:            doc.Label,
		Location:         doc.Location,
		AccountName:      doc.AccountName,
		SecretCiphertext: doc.SecretCiphertext,
		Notes:            doc.Notes,
		CreatedAt:        doc.CreatedAt.UTC(),
		UpdatedAt:        doc.UpdatedAt.UTC(),
	}, nil
}
