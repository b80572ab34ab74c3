// Package session holds the persisted session slot and the state machine
// built on top of it.
//
// A Store is a single slot: it holds at most one user record under Key.
// Three implementations exist: MemoryStore for tests and fallbacks,
// LevelStore for the terminal client, and CookieStore for browser requests.
// Manager wraps a Store and exposes login, register, and logout.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/model"
)

// Key is the fixed name of the slot holding the serialized user.
const Key = "healthSyncUser"

// TokenKey holds a remote server's bearer token in stores that keep one.
const TokenKey = "healthSyncToken"

var (
	// ErrNoSession is returned by Load when nothing is stored.
	ErrNoSession = errors.New("no session")
	// ErrCorrupt is returned by Load when the stored record cannot be decoded.
	ErrCorrupt = errors.New("corrupt session record")
	// ErrUnavailable wraps backend failures (closed database, I/O errors).
	ErrUnavailable = errors.New("session storage unavailable")
)

type Store interface {
	Save(ctx context.Context, u model.User) error
	// Load returns ErrNoSession when the slot is empty.
	Load(ctx context.Context) (model.User, error)
	// Clear is a no-op on an empty slot.
	Clear(ctx context.Context) error
}

func encodeUser(u model.User) ([]byte, error) {
	return json.Marshal(u)
}

func decodeUser(b []byte) (model.User, error) {
	var u model.User
	if err := json.Unmarshal(b, &u); err != nil {
		return model.User{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if u.ID == "" {
		return model.User{}, fmt.Errorf("%w: missing id", ErrCorrupt)
	}
	return u, nil
}
