package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/model"
)

// LevelStore persists the slot in a LevelDB database on local disk.
type LevelStore struct {
	db    *leveldb.DB
	owned bool
}

// OpenLevelStore opens (or creates) the database under dir. LevelDB holds an
// exclusive file lock, so a second process gets an error here.
func OpenLevelStore(dir string) (*LevelStore, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrUnavailable, dir, err)
	}
	return &LevelStore{db: db, owned: true}, nil
}

// NewLevelStore wraps an already open database; Close leaves it open.
func NewLevelStore(db *leveldb.DB) *LevelStore {
	return &LevelStore{db: db}
}

func (s *LevelStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

func (s *LevelStore) Save(_ context.Context, u model.User) error {
	b, err := encodeUser(u)
	if err != nil {
		return err
	}
	if err := s.db.Put([]byte(Key), b, &opt.WriteOptions{Sync: true}); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *LevelStore) Load(_ context.Context) (model.User, error) {
	b, err := s.db.Get([]byte(Key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return model.User{}, ErrNoSession
	}
	if err != nil {
		return model.User{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return decodeUser(b)
}

// Clear removes the user record and any API token saved next to it.
func (s *LevelStore) Clear(_ context.Context) error {
	b := new(leveldb.Batch)
	b.Delete([]byte(Key))
	b.Delete([]byte(TokenKey))
	if err := s.db.Write(b, &opt.WriteOptions{Sync: true}); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// SaveToken keeps the bearer token a remote server issued for the session.
func (s *LevelStore) SaveToken(_ context.Context, token string) error {
	if err := s.db.Put([]byte(TokenKey), []byte(token), &opt.WriteOptions{Sync: true}); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *LevelStore) Token(_ context.Context) (string, error) {
	b, err := s.db.Get([]byte(TokenKey), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return string(b), nil
}

// ProfilePrefix namespaces saved profiles, one key per user id. Profiles
// outlive logout.
const ProfilePrefix = "healthSyncProfile:"

func (s *LevelStore) SaveProfile(_ context.Context, p model.Profile) error {
	if p.UserID == "" {
		return errors.New("profile without user id")
	}
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if err := s.db.Put([]byte(ProfilePrefix+p.UserID), b, &opt.WriteOptions{Sync: true}); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Profile returns the saved profile for userID. ok is false when none was
// saved or the stored one cannot be decoded.
func (s *LevelStore) Profile(_ context.Context, userID string) (p model.Profile, ok bool, err error) {
	b, err := s.db.Get([]byte(ProfilePrefix+userID), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return model.Profile{}, false, nil
	}
	if err != nil {
		return model.Profile{}, false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if json.Unmarshal(b, &p) != nil {
		return model.Profile{}, false, nil
	}
	return p, true, nil
}
