package crypto

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Keyring provides secure storage for the database encryption key
type Keyring interface {
	GetKey() (string, error)
	SetKey(password string) error
	DeleteKey() error
	IsAvailable() bool
}

const (
	ServiceName = "pharmabill"
	KeyName     = "db-encryption-key"

	// EnvKey holds the key on machines without a usable system keyring
	EnvKey = "PHARMABILL_DB_KEY"
)

// ErrNoKey is returned when no keyring holds the encryption key
var ErrNoKey = errors.New("encryption key not found")

// NewKeyring returns the environment keyring in front of the system keyring
func NewKeyring() Keyring {
	return Chain{&envKeyring{}, &systemKeyring{}}
}

// Chain tries each keyring in order. Reads return the first key found;
// writes go to the first available keyring that accepts them.
type Chain []Keyring

func (c Chain) GetKey() (string, error) {
	var errs []error
	for _, k := range c {
		key, err := k.GetKey()
		if err == nil {
			return key, nil
		}
		errs = append(errs, err)
	}
	return "", fmt.Errorf("%w: %w", ErrNoKey, errors.Join(errs...))
}

func (c Chain) SetKey(password string) error {
	var errs []error
	for _, k := range c {
		if err := k.SetKey(password); err != nil {
			errs = append(errs, err)
			continue
		}
		return nil
	}
	return errors.Join(errs...)
}

func (c Chain) DeleteKey() error {
	deleted := false
	for _, k := range c {
		if k.DeleteKey() == nil {
			deleted = true
		}
	}
	if !deleted {
		return ErrNoKey
	}
	return nil
}

func (c Chain) IsAvailable() bool {
	for _, k := range c {
		if k.IsAvailable() {
			return true
		}
	}
	return false
}

// ObtainKey returns the stored key, or asks prompt for a new one on first
// run and stores it
func ObtainKey(k Keyring, prompt func() (string, error)) (key string, created bool, err error) {
	if key, err := k.GetKey(); err == nil {
		return key, false, nil
	}

	key, err = prompt()
	if err != nil {
		return "", false, err
	}
	if strings.TrimSpace(key) == "" {
		return "", false, errors.New("password cannot be empty")
	}
	if err := k.SetKey(key); err != nil {
		return "", false, fmt.Errorf("failed to store encryption key: %w", err)
	}
	return key, true, nil
}

// envKeyring reads the key from PHARMABILL_DB_KEY
type envKeyring struct{}

func (k *envKeyring) GetKey() (string, error) {
	key := os.Getenv(EnvKey)
	if key == "" {
		return "", fmt.Errorf("%s environment variable not set", EnvKey)
	}
	return key, nil
}

func (k *envKeyring) SetKey(password string) error {
	return fmt.Errorf("cannot persist %s from the application", EnvKey)
}

func (k *envKeyring) DeleteKey() error {
	return fmt.Errorf("unset %s manually", EnvKey)
}

func (k *envKeyring) IsAvailable() bool {
	return os.Getenv(EnvKey) != ""
}
