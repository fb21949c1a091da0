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

// Package session implements the bearer-token session store: the map
// from an X-Auth-Token value to the username that issued it and the
// session resource's own URI. It is guarded by its own mutex, entirely
// separate from the tree's lock.
package session

import (
	"encoding/hex"
	"sync"

	"github.com/google/uuid"
)

type entry struct {
	username string
	uri      string
}

// Store is the bearer-token session table. The zero value is not usable;
// construct with New.
type Store struct {
	mu      sync.Mutex
	byToken map[string]entry
}

// New returns an empty Store.
func New() *Store {
	return &Store{byToken: make(map[string]entry)}
}

// Issue mints a new token for username bound to the session resource at
// uri and records it. Tokens are unhyphenated 128-bit hex, matching the
// shape of a UUIDv4 without the dashes.
func (s *Store) Issue(username, uri string) string {
	id := uuid.New()
	token := hex.EncodeToString(id[:])

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byToken[token] = entry{username: username, uri: uri}
	return token
}

// Lookup returns the username a token was issued to, if it is still
// valid.
func (s *Store) Lookup(token string) (username string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byToken[token]
	return e.username, ok
}

// RevokeByToken deletes a session by its token, returning whether one was
// found.
func (s *Store) RevokeByToken(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byToken[token]; !ok {
		return false
	}
	delete(s.byToken, token)
	return true
}

// RevokeByURI deletes whichever session (there is at most one) was
// issued for the given session-resource URI. Used after a successful
// DELETE of the underlying Session resource, which is how a client logs
// out.
func (s *Store) RevokeByURI(uri string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, e := range s.byToken {
		if e.uri == uri {
			delete(s.byToken, token)
			return true
		}
	}
	return false
}
