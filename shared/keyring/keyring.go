// Package keyring stores context tokens in the credential store of the
// operating system.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const ServiceName = "taskview"

type ErrSecretNotFound struct {
	Key string
	Err error
}

func (e *ErrSecretNotFound) Error() string {
	return fmt.Sprintf("secret %q not found: %s", e.Key, e.Err)
}

func (e *ErrSecretNotFound) Is(target error) bool {
	_, ok := target.(*ErrSecretNotFound)
	return ok
}

func (e *ErrSecretNotFound) Unwrap() error {
	return e.Err
}

type ErrSecretTooLarge struct {
	Key string
	Err error
}

func (e *ErrSecretTooLarge) Error() string {
	return fmt.Sprintf("secret %q is too large for the keyring: %s", e.Key, e.Err)
}

func (e *ErrSecretTooLarge) Unwrap() error {
	return e.Err
}

//go:generate mockgen -destination=../mocks/keyring_provider_mock.go -package=mocks . Provider
type Provider interface {
	Get(key string) (string, error)
	Set(key string, value string) error
	Delete(key string) error
}

type KeyringProvider struct {
	service string
}

func NewKeyringProvider() *KeyringProvider {
	return &KeyringProvider{service: ServiceName}
}

func (k *KeyringProvider) Get(key string) (string, error) {
	secret, err := keyring.Get(k.service, key)
	if err != nil {
		return "", toError(key, err)
	}
	return secret, nil
}

func (k *KeyringProvider) Set(key string, value string) error {
	return toError(key, keyring.Set(k.service, key, value))
}

func (k *KeyringProvider) Delete(key string) error {
	return toError(key, keyring.Delete(k.service, key))
}

func toError(key string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, keyring.ErrNotFound):
		return &ErrSecretNotFound{Key: key, Err: err}
	case errors.Is(err, keyring.ErrSetDataTooBig):
		return &ErrSecretTooLarge{Key: key, Err: err}
	}
	return err
}

var _ Provider = (*KeyringProvider)(nil)
