// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"sync"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/chefgenie/internal/model"
	"github.com/mcoot/chefgenie/internal/storage"
)

// Suite runs backend-agnostic checks against Storage.
// Backend packages embed it and set Storage and Ctx in SetupTest.
type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
}

func (s *Suite) TestSetAndGet() {
	err := s.Storage.Set(s.Ctx, storage.UsersKey(), []byte(`[{"username":"Owner"}]`))
	s.Require().NoError(err)

	value, err := s.Storage.Get(s.Ctx, storage.UsersKey())
	s.Require().NoError(err)
	s.JSONEq(`[{"username":"Owner"}]`, string(value))
}

func (s *Suite) TestGetMissingKey() {
	_, err := s.Storage.Get(s.Ctx, storage.SessionKey("nobody"))
	s.ErrorIs(err, model.ErrKeyNotFound)
}

func (s *Suite) TestSetOverwrites() {
	key := storage.ScoresKey("client-1")
	s.Require().NoError(s.Storage.Set(s.Ctx, key, []byte(`{"user":1,"ai":0}`)))
	s.Require().NoError(s.Storage.Set(s.Ctx, key, []byte(`{"user":2,"ai":5}`)))

	value, err := s.Storage.Get(s.Ctx, key)
	s.Require().NoError(err)
	s.JSONEq(`{"user":2,"ai":5}`, string(value))
}

func (s *Suite) TestRemove() {
	key := storage.SessionKey("client-1")
	s.Require().NoError(s.Storage.Set(s.Ctx, key, []byte(`{}`)))

	s.Require().NoError(s.Storage.Remove(s.Ctx, key))

	_, err := s.Storage.Get(s.Ctx, key)
	s.ErrorIs(err, model.ErrKeyNotFound)
}

func (s *Suite) TestRemoveMissingKeyIsNotAnError() {
	s.NoError(s.Storage.Remove(s.Ctx, storage.VolumeKey("ghost")))
}

func (s *Suite) TestKeysAreIsolatedByOwner() {
	s.Require().NoError(s.Storage.Set(s.Ctx, storage.ScoresKey("a"), []byte(`{"user":1,"ai":0}`)))
	s.Require().NoError(s.Storage.Set(s.Ctx, storage.ScoresKey("b"), []byte(`{"user":0,"ai":3}`)))

	a, err := s.Storage.Get(s.Ctx, storage.ScoresKey("a"))
	s.Require().NoError(err)
	b, err := s.Storage.Get(s.Ctx, storage.ScoresKey("b"))
	s.Require().NoError(err)

	s.JSONEq(`{"user":1,"ai":0}`, string(a))
	s.JSONEq(`{"user":0,"ai":3}`, string(b))
}

func (s *Suite) TestJSONHelpers() {
	key := storage.ScoresKey("client-json")
	s.Require().NoError(storage.SetJSON(s.Ctx, s.Storage, key, model.Scores{User: 4, AI: 2}))

	var scores model.Scores
	s.Require().NoError(storage.GetJSON(s.Ctx, s.Storage, key, &scores))
	s.Equal(model.Scores{User: 4, AI: 2}, scores)
}

func (s *Suite) TestGetJSONCorruptValue() {
	key := storage.ScoresKey("client-corrupt")
	s.Require().NoError(s.Storage.Set(s.Ctx, key, []byte(`{not json`)))

	var scores model.Scores
	err := storage.GetJSON(s.Ctx, s.Storage, key, &scores)
	s.ErrorIs(err, storage.ErrCorrupt)
	s.NotErrorIs(err, model.ErrKeyNotFound)
}

func (s *Suite) TestConcurrentWrites() {
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Storage.Set(s.Ctx, storage.VolumeKey("shared"), []byte("50"))
		}()
	}
	wg.Wait()

	value, err := s.Storage.Get(s.Ctx, storage.VolumeKey("shared"))
	s.Require().NoError(err)
	s.Equal("50", string(value))
}
