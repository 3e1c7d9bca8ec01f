package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

// credentialFile holds the persisted API key under the config directory.
const credentialFile = "credentials"

// lockTimeout bounds how long a reader or writer waits for the file lock.
const lockTimeout = 5 * time.Second

// SaveAPIKey persists the API key to the credential file, replacing any
// previous value. The write is guarded by a file lock so concurrent
// processes never interleave partial writes.
func SaveAPIKey(key string) error {
	if key == "" {
		return ErrMissingAPIKey
	}
	dir, err := Dir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, credentialFile)

	release, err := acquireLock(path)
	if err != nil {
		return err
	}
	defer release()

	if err := os.WriteFile(path, []byte(key+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing credential file: %w", err)
	}
	return nil
}

// LoadAPIKey reads the persisted API key. A missing credential file yields
// ErrMissingAPIKey.
func LoadAPIKey() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, credentialFile)

	release, err := acquireLock(path)
	if err != nil {
		return "", err
	}
	defer release()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", ErrMissingAPIKey
	}
	if err != nil {
		return "", fmt.Errorf("reading credential file: %w", err)
	}
	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", ErrMissingAPIKey
	}
	return key, nil
}

// DeleteAPIKey removes the persisted credential, if any.
func DeleteAPIKey() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, credentialFile)

	release, err := acquireLock(path)
	if err != nil {
		return err
	}
	defer release()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing credential file: %w", err)
	}
	return nil
}

// acquireLock takes the sidecar file lock for path, returning the release
// function.
func acquireLock(path string) (func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	lock := flock.New(path + ".lock")
	ok, err := lock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("locking credential file: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("credential file is locked by another process")
	}
	return func() { _ = lock.Unlock() }, nil
}
