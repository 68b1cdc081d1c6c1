package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/gophkeeper-vault/internal/logger"
	"github.com/dtroode/gophkeeper-vault/internal/metrics"
	"github.com/dtroode/gophkeeper-vault/internal/model"
)

const defaultMaxCreateAttempts = 3

// Vault implements the credential vault operations for authenticated owners.
// It keeps no state between calls.
type Vault struct {
	store  model.EntryStore
	cipher model.Cipher
	logger *logger.Logger

	now               func() time.Time
	newID             func() uuid.UUID
	maxCreateAttempts int
}

// VaultOption configures Vault.
type VaultOption func(*Vault)

// WithClock overrides the time source.
func WithClock(now func() time.Time) VaultOption {
	return func(v *Vault) {
		v.now = now
	}
}

// WithIDGenerator overrides random record id generation.
func WithIDGenerator(newID func() uuid.UUID) VaultOption {
	return func(v *Vault) {
		v.newID = newID
	}
}

// WithMaxCreateAttempts bounds retries on record id collisions.
func WithMaxCreateAttempts(n int) VaultOption {
	return func(v *Vault) {
		if n > 0 {
			v.maxCreateAttempts = n
		}
	}
}

func NewVault(store model.EntryStore, cipher model.Cipher, logger *logger.Logger, opts ...VaultOption) *Vault {
	v := &Vault{
		store:             store,
		cipher:            cipher,
		logger:            logger,
		now:               time.Now,
		newID:             uuid.New,
		maxCreateAttempts: defaultMaxCreateAttempts,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Create validates and seals the secret, then stores a new entry. Retries that
// carry the same RequestID resolve to the entry created by the first call.
func (s *Vault) Create(ctx context.Context, params model.CreateEntryParams) (_ model.Summary, err error) {
	defer s.observe("create", time.Now(), &err)

	if params.OwnerID == uuid.Nil {
		return model.Summary{}, model.ErrUnauthenticated
	}
	params.Label = strings.TrimSpace(params.Label)
	params.AccountName = strings.TrimSpace(params.AccountName)
	if err := validateCreate(params); err != nil {
		return model.Summary{}, err
	}

	blob, err := s.cipher.Seal(ctx, params.OwnerID, []byte(params.Secret))
	if err != nil {
		return model.Summary{}, s.classify("create", params.OwnerID, uuid.Nil, fmt.Errorf("failed to seal secret: %w", err))
	}

	now := s.timestamp()
	entry := model.Entry{
		OwnerID:          params.OwnerID,
		Label:            params.Label,
		Location:         params.Location,
		AccountName:      params.AccountName,
		SecretCiphertext: blob,
		Notes:            params.Notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	for attempt := 1; ; attempt++ {
		entry.ID = s.recordID(params)

		err := s.store.Create(ctx, entry)
		if err == nil {
			s.logger.Info("Vault service: entry created",
				"owner_id", entry.OwnerID,
				"record_id", entry.ID)
			return entry.Summary(), nil
		}
		if !errors.Is(err, model.ErrConflict) {
			return model.Summary{}, s.classify("create", entry.OwnerID, entry.ID, fmt.Errorf("failed to create entry: %w", err))
		}

		if params.RequestID != uuid.Nil {
			existing, err := s.store.Get(ctx, entry.OwnerID, entry.ID)
			if err == nil {
				s.logger.Info("Vault service: duplicate create request, returning existing entry",
					"owner_id", entry.OwnerID,
					"record_id", entry.ID,
					"request_id", params.RequestID)
				return existing.Summary(), nil
			}
			if !errors.Is(err, model.ErrNotFound) {
				return model.Summary{}, s.classify("create", entry.OwnerID, entry.ID, fmt.Errorf("failed to get existing entry: %w", err))
			}
		}

		if attempt >= s.maxCreateAttempts {
			s.logger.Error("Vault service: failed to allocate record id",
				"owner_id", entry.OwnerID,
				"attempts", attempt)
			return model.Summary{}, fmt.Errorf("create entry: %w", model.ErrDependencyUnavailable)
		}
		s.logger.Warn("Vault service: record id collision, retrying",
			"owner_id", entry.OwnerID,
			"attempt", attempt)
	}
}

// List returns summaries of all owner's entries ordered by label, then record id.
func (s *Vault) List(ctx context.Context, ownerID uuid.UUID) (_ []model.Summary, err error) {
	defer s.observe("list", time.Now(), &err)

	if ownerID == uuid.Nil {
		return nil, model.ErrUnauthenticated
	}

	entries, err := s.store.Scan(ctx, ownerID)
	if err != nil {
		return nil, s.classify("list", ownerID, uuid.Nil, fmt.Errorf("failed to scan entries: %w", err))
	}

	summaries := make([]model.Summary, 0, len(entries))
	for _, e := range entries {
		if e.OwnerID != ownerID {
			continue
		}
		summaries = append(summaries, e.Summary())
	}
	slices.SortFunc(summaries, func(a, b model.Summary) int {
		if c := cmp.Compare(a.Label, b.Label); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})

	return summaries, nil
}

// Get returns the entry summary. Entries of other owners are reported as not found.
func (s *Vault) Get(ctx context.Context, ownerID, recordID uuid.UUID) (_ model.Summary, err error) {
	defer s.observe("get", time.Now(), &err)

	entry, err := s.lookup(ctx, "get", ownerID, recordID)
	if err != nil {
		return model.Summary{}, err
	}
	return entry.Summary(), nil
}

// Reveal decrypts and returns the secret of the entry.
func (s *Vault) Reveal(ctx context.Context, ownerID, recordID uuid.UUID) (_ string, err error) {
	defer s.observe("reveal", time.Now(), &err)

	entry, err := s.lookup(ctx, "reveal", ownerID, recordID)
	if err != nil {
		return "", err
	}

	plaintext, err := s.cipher.Open(ctx, ownerID, entry.SecretCiphertext)
	if err != nil {
		if errors.Is(err, model.ErrDecryptionFailed) {
			metrics.IncDecryptionFailure()
			s.logger.Error("Vault service: secret failed integrity check",
				"owner_id", ownerID,
				"record_id", recordID,
				"error", err.Error())
			return "", fmt.Errorf("reveal entry: %w", model.ErrDecryptionFailed)
		}
		return "", s.classify("reveal", ownerID, recordID, fmt.Errorf("failed to open secret: %w", err))
	}

	s.logger.Info("Vault service: secret revealed",
		"owner_id", ownerID,
		"record_id", recordID)
	return string(plaintext), nil
}

// Update merges the supplied fields into the entry. The secret is re-sealed
// only when a new one is supplied.
func (s *Vault) Update(ctx context.Context, params model.UpdateEntryParams) (_ model.Summary, err error) {
	defer s.observe("update", time.Now(), &err)

	if params.OwnerID == uuid.Nil {
		return model.Summary{}, model.ErrUnauthenticated
	}
	params.Label = trimmed(params.Label)
	params.AccountName = trimmed(params.AccountName)
	if err := validateUpdate(params); err != nil {
		return model.Summary{}, err
	}

	current, err := s.lookup(ctx, "update", params.OwnerID, params.ID)
	if err != nil {
		return model.Summary{}, err
	}

	merged := current.Clone()
	if params.Label != nil {
		merged.Label = *params.Label
	}
	if params.Location != nil {
		merged.Location = *params.Location
	}
	if params.AccountName != nil {
		merged.AccountName = *params.AccountName
	}
	if params.Notes != nil {
		merged.Notes = *params.Notes
	}
	if params.Secret != nil {
		blob, err := s.cipher.Seal(ctx, params.OwnerID, []byte(*params.Secret))
		if err != nil {
			return model.Summary{}, s.classify("update", params.OwnerID, params.ID, fmt.Errorf("failed to seal secret: %w", err))
		}
		merged.SecretCiphertext = blob
	}

	merged.UpdatedAt = s.timestamp()
	if merged.UpdatedAt.Before(merged.CreatedAt) {
		merged.UpdatedAt = merged.CreatedAt
	}

	if err := s.store.Replace(ctx, merged); err != nil {
		return model.Summary{}, s.classify("update", params.OwnerID, params.ID, fmt.Errorf("failed to replace entry: %w", err))
	}

	s.logger.Info("Vault service: entry updated",
		"owner_id", params.OwnerID,
		"record_id", params.ID,
		"secret_changed", params.Secret != nil)
	return merged.Summary(), nil
}

// Delete removes the entry permanently.
func (s *Vault) Delete(ctx context.Context, ownerID, recordID uuid.UUID) (err error) {
	defer s.observe("delete", time.Now(), &err)

	if ownerID == uuid.Nil {
		return model.ErrUnauthenticated
	}

	if err := s.store.Delete(ctx, ownerID, recordID); err != nil {
		return s.classify("delete", ownerID, recordID, fmt.Errorf("failed to delete entry: %w", err))
	}

	s.logger.Info("Vault service: entry deleted",
		"owner_id", ownerID,
		"record_id", recordID)
	return nil
}

func (s *Vault) lookup(ctx context.Context, op string, ownerID, recordID uuid.UUID) (model.Entry, error) {
	if ownerID == uuid.Nil {
		return model.Entry{}, model.ErrUnauthenticated
	}

	entry, err := s.store.Get(ctx, ownerID, recordID)
	if err != nil {
		return model.Entry{}, s.classify(op, ownerID, recordID, fmt.Errorf("failed to get entry: %w", err))
	}
	if entry.OwnerID != ownerID {
		return model.Entry{}, fmt.Errorf("%s entry: %w", op, model.ErrNotFound)
	}
	return entry, nil
}

// classify returns err unchanged when it carries a caller-visible kind.
// Anything else is logged and replaced by a bare ErrDependencyUnavailable.
func (s *Vault) classify(op string, ownerID, recordID uuid.UUID, err error) error {
	if model.Kind(err) != model.ErrDependencyUnavailable {
		return err
	}

	s.logger.Error("Vault service: dependency failure",
		"op", op,
		"owner_id", ownerID,
		"record_id", recordID,
		"error", err.Error())
	return fmt.Errorf("%s entry: %w", op, model.ErrDependencyUnavailable)
}

func (s *Vault) observe(op string, start time.Time, err *error) {
	metrics.ObserveOperation(op, model.KindName(*err), time.Since(start))
}

func (s *Vault) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// recordID derives a stable id from the request id so that retried creates
// collide with the first attempt.
func (s *Vault) recordID(params model.CreateEntryParams) uuid.UUID {
	if params.RequestID != uuid.Nil {
		return uuid.NewSHA1(params.OwnerID, params.RequestID[:])
	}
	return s.newID()
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}
