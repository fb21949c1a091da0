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

package tree

import (
	"sync"

	"redfishtree/internal/schema"
)

// ErrKind classifies the ways a Tree operation can fail, matching the
// error taxonomy the HTTP pipeline maps to status codes.
type ErrKind int

const (
	ErrNotFound ErrKind = iota
	ErrUnauthorized
	ErrMethodNotAllowed
)

// Error is the error type every Tree operation returns. Allowed is only
// meaningful when Kind is ErrMethodNotAllowed: it carries the node's own
// allowed-methods set, per spec.
type Error struct {
	Kind    ErrKind
	Allowed schema.AllowedMethods
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrNotFound:
		return "redfish: not found"
	case ErrUnauthorized:
		return "redfish: unauthorized"
	case ErrMethodNotAllowed:
		return "redfish: method not allowed"
	default:
		return "redfish: error"
	}
}

func errNotFound() error      { return &Error{Kind: ErrNotFound} }
func errUnauthorized() error  { return &Error{Kind: ErrUnauthorized} }
func errMethodNotAllowed(a schema.AllowedMethods) error {
	return &Error{Kind: ErrMethodNotAllowed, Allowed: a}
}

// nodeView is a point-in-time, race-free snapshot of a node, taken while
// the Tree's lock is held. Every Tree method returns one of these rather
// than a live pointer into the tree, so callers can marshal it after the
// lock has been released.
type nodeView struct {
	uri            string
	body           map[string]interface{}
	allowedMethods schema.AllowedMethods
	describedBy    string
}

func (n *nodeView) URI() string                           { return n.uri }
func (n *nodeView) Body() map[string]interface{}          { return n.body }
func (n *nodeView) AllowedMethods() schema.AllowedMethods { return n.allowedMethods }
func (n *nodeView) DescribedBy() (string, bool)           { return n.describedBy, n.describedBy != "" }

func resourceView(r *Resource) Node {
	describedBy, _ := r.describedBy()
	return &nodeView{
		uri:            r.URI(),
		body:           r.body(),
		allowedMethods: r.allowedMethods(),
		describedBy:    describedBy,
	}
}

func collectionView(c *Collection) Node {
	describedBy, _ := c.describedBy()
	return &nodeView{
		uri:            c.URI(),
		body:           c.body(),
		allowedMethods: c.allowedMethods(),
		describedBy:    describedBy,
	}
}

// Tree is the in-memory Redfish resource tree. The zero value is not
// usable; construct with New. All operations are safe for concurrent use.
type Tree struct {
	mu sync.RWMutex

	resources   map[string]*Resource
	collections map[string]*Collection

	resourceTypes    []schema.ResourceType
	resourceTypeSeen map[string]bool

	collectionTypes    []schema.CollectionType
	collectionTypeSeen map[string]bool
}

// New returns an empty Tree.
func New() *Tree {
	return &Tree{
		resources:          make(map[string]*Resource),
		collections:        make(map[string]*Collection),
		resourceTypeSeen:   make(map[string]bool),
		collectionTypeSeen: make(map[string]bool),
	}
}

// AddResource registers a resource with the tree and records its schema
// type in the registry, if not already present. Intended for bootstrap
// population before the tree is served; callers mutating a live tree
// should prefer Create.
func (t *Tree) AddResource(r *Resource) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resources[r.uri] = r
	t.noteResourceType(r.resourceType)
}

// AddCollection registers a collection with the tree and records its
// schema type in the registry, if not already present.
func (t *Tree) AddCollection(c *Collection) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.collections[c.uri] = c
	t.noteCollectionType(c.collectionType)
}

func (t *Tree) noteResourceType(rt schema.ResourceType) {
	key := rt.Name + "|" + rt.Version.String()
	if t.resourceTypeSeen[key] {
		return
	}
	t.resourceTypeSeen[key] = true
	t.resourceTypes = append(t.resourceTypes, rt)
}

func (t *Tree) noteCollectionType(ct schema.CollectionType) {
	key := ct.Name + "|" + ct.Version.String()
	if t.collectionTypeSeen[key] {
		return
	}
	t.collectionTypeSeen[key] = true
	t.collectionTypes = append(t.collectionTypes, ct)
}

// ResourceTypes returns the resource schema types registered so far, in
// registration order.
func (t *Tree) ResourceTypes() []schema.ResourceType {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]schema.ResourceType(nil), t.resourceTypes...)
}

// CollectionTypes returns the collection schema types registered so far,
// in registration order.
func (t *Tree) CollectionTypes() []schema.CollectionType {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]schema.CollectionType(nil), t.collectionTypes...)
}

// anonymousGet is the sole URI an unauthenticated Get is allowed to reach.
const anonymousGet = "/redfish/v1"

// anonymousCreate is the sole URI an unauthenticated Create is allowed to
// target: the session collection, so a client can log in at all.
const anonymousCreate = "/redfish/v1/SessionService/Sessions"

// Get resolves a URI to a node. username is nil for an unauthenticated
// caller; every URI but anonymousGet requires a non-nil username.
func (t *Tree) Get(uri string, username *string) (Node, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if uri != anonymousGet && username == nil {
		return nil, errUnauthorized()
	}
	if r, ok := t.resources[uri]; ok {
		return resourceView(r), nil
	}
	if c, ok := t.collections[uri]; ok {
		return collectionView(c), nil
	}
	return nil, errNotFound()
}

// Create invokes the post hook of the collection at uri, inserts the
// resulting resource into the tree, and appends it to the collection's
// membership. Returns the new resource.
func (t *Tree) Create(uri string, req map[string]interface{}, username *string) (Node, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if uri != anonymousCreate && username == nil {
		return nil, errUnauthorized()
	}

	c, ok := t.collections[uri]
	if !ok {
		if r, ok := t.resources[uri]; ok {
			return nil, errMethodNotAllowed(r.allowedMethods())
		}
		return nil, errNotFound()
	}
	if c.post == nil {
		return nil, errMethodNotAllowed(c.allowedMethods())
	}

	member, err := c.post(c, req)
	if err != nil {
		return nil, err
	}

	t.resources[member.uri] = member
	t.noteResourceType(member.resourceType)
	c.appendMember(member.uri)

	return resourceView(member), nil
}

// Delete removes a resource from the tree, invoking its delete hook
// first and, on success, removing it from its collection's membership.
func (t *Tree) Delete(uri string, username *string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if username == nil {
		return errUnauthorized()
	}

	r, ok := t.resources[uri]
	if !ok {
		if c, ok := t.collections[uri]; ok {
			return errMethodNotAllowed(c.allowedMethods())
		}
		return errNotFound()
	}
	if r.delete == nil {
		return errMethodNotAllowed(r.allowedMethods())
	}
	if err := r.delete(r); err != nil {
		return err
	}

	if collURI, ok := r.CollectionURI(); ok {
		if c, ok := t.collections[collURI]; ok {
			c.removeMember(uri)
		}
	}
	delete(t.resources, uri)
	return nil
}

// Patch invokes a resource's patch hook with the given request body and
// returns the patched resource.
func (t *Tree) Patch(uri string, req map[string]interface{}, username *string) (Node, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if username == nil {
		return nil, errUnauthorized()
	}

	r, ok := t.resources[uri]
	if !ok {
		if c, ok := t.collections[uri]; ok {
			return nil, errMethodNotAllowed(c.allowedMethods())
		}
		return nil, errNotFound()
	}
	if r.patch == nil {
		return nil, errMethodNotAllowed(r.allowedMethods())
	}
	if err := r.patch(r, req); err != nil {
		return nil, err
	}
	return resourceView(r), nil
}
