/*
redfishtree is a Redfish resource-tree server.
Copyright (C) 2025  Matthew Burns

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Package accounts is the credential store the bootstrap embedder's
// session-login and account hooks delegate to. The core tree/HTTP
// pipeline never imports this package directly — credential validation
// is explicitly the embedder's concern, not the tree's.
package accounts

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used for every stored password.
const DefaultCost = 12

var ErrUnknownUser = errors.New("accounts: unknown user")
var ErrBadPassword = errors.New("accounts: bad password")

// Store is a username-keyed bcrypt-hashed password table, guarded by its
// own mutex. It is independent of the tree's lock: a PATCH hook changing
// a password and a login hook checking one never contend with unrelated
// tree reads.
type Store struct {
	mu   sync.RWMutex
	hash map[string]string
}

// New returns an empty Store.
func New() *Store {
	return &Store{hash: make(map[string]string)}
}

// Set hashes and stores password for username, replacing any existing
// password.
func (s *Store) Set(username, password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), DefaultCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hash[username] = string(hashed)
	return nil
}

// Verify checks password against the stored hash for username.
func (s *Store) Verify(username, password string) error {
	s.mu.RLock()
	hash, ok := s.hash[username]
	s.mu.RUnlock()
	if !ok {
		return ErrUnknownUser
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrBadPassword
	}
	return nil
}

// Delete removes a user's stored password.
func (s *Store) Delete(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hash, username)
}

// Has reports whether username has a stored password.
func (s *Store) Has(username string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.hash[username]
	return ok
}
