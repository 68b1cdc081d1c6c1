package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dtroode/gophkeeper-vault/internal/model"
)

func validateCreate(p model.CreateEntryParams) error {
	checks := []error{
		validateText("label", p.Label, true, model.MaxLabelLength),
		validateText("location", p.Location, false, model.MaxLocationLength),
		validateText("account_name", p.AccountName, true, model.MaxAccountNameLength),
		validateText("notes", p.Notes, false, model.MaxNotesLength),
		validateSecret(p.Secret),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	return nil
}

func validateUpdate(p model.UpdateEntryParams) error {
	if p.Label != nil {
		if err := validateText("label", *p.Label, true, model.MaxLabelLength); err != nil {
			return err
		}
	}
	if p.Location != nil {
		if err := validateText("location", *p.Location, false, model.MaxLocationLength); err != nil {
			return err
		}
	}
	if p.AccountName != nil {
		if err := validateText("account_name", *p.AccountName, true, model.MaxAccountNameLength); err != nil {
			return err
		}
	}
	if p.Notes != nil {
		if err := validateText("notes", *p.Notes, false, model.MaxNotesLength); err != nil {
			return err
		}
	}
	if p.Secret != nil {
		if err := validateSecret(*p.Secret); err != nil {
			return err
		}
	}
	return nil
}

func validateText(field, value string, required bool, maxRunes int) error {
	if !utf8.ValidString(value) {
		return &model.ValidationError{Field: field, Reason: "must be valid UTF-8"}
	}
	if required && strings.TrimSpace(value) == "" {
		return &model.ValidationError{Field: field, Reason: "must not be blank"}
	}
	if utf8.RuneCountInString(value) > maxRunes {
		return &model.ValidationError{Field: field, Reason: fmt.Sprintf("must be at most %d characters", maxRunes)}
	}
	return nil
}

func validateSecret(secret string) error {
	if secret == "" {
		return &model.ValidationError{Field: "secret", Reason: "must not be empty"}
	}
	if !utf8.ValidString(secret) {
		return &model.ValidationError{Field: "secret", Reason: "must be valid UTF-8"}
	}
	if len(secret) > model.MaxSecretBytes {
		return &model.ValidationError{Field: "secret", Reason: fmt.Sprintf("must be at most %d bytes", model.MaxSecretBytes)}
	}
	return nil
}
