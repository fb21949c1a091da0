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

import "redfishtree/internal/schema"

// PatchHook applies a validated PATCH body to a resource, mutating its
// Body in place. A nil PatchHook means the resource cannot be patched.
type PatchHook func(r *Resource, req map[string]interface{}) error

// DeleteHook runs any side effects a resource's deletion requires. A nil
// DeleteHook means the resource cannot be deleted.
type DeleteHook func(r *Resource) error

// Resource is a single Redfish resource: a JSON object addressed by its
// own URI, with per-instance patch/delete capability.
type Resource struct {
	uri          string
	resourceType schema.ResourceType
	termName     string
	collection   string // empty if this resource isn't a collection member
	hasColl      bool

	// Body holds the resource's JSON representation, including the five
	// canonical properties (@odata.id, @odata.etag, @odata.type, Id,
	// Name) stamped in at construction. Hooks mutate it directly.
	Body map[string]interface{}

	patch  PatchHook
	delete DeleteHook
}

// NewResource constructs a Resource, stamping in the canonical OData
// properties over a deep copy of rest.
func NewResource(uri, schemaName string, version schema.ResourceVersion, termName, name string, collection string, patch PatchHook, del DeleteHook, rest map[string]interface{}) *Resource {
	body := deepCopyBody(rest)
	body["@odata.id"] = uri
	body["@odata.etag"] = hardcodedETag
	body["@odata.type"] = "#" + schemaName + "." + version.String() + "." + termName
	body["Id"] = schema.URIID(uri)
	body["Name"] = name

	return &Resource{
		uri:          uri,
		resourceType: schema.NewDMTFResourceType(schemaName, version),
		termName:     termName,
		collection:   collection,
		hasColl:      collection != "",
		Body:         body,
		patch:        patch,
		delete:       del,
	}
}

func (r *Resource) URI() string { return r.uri }

func (r *Resource) body() map[string]interface{} {
	return deepCopyBody(r.Body)
}

func (r *Resource) allowedMethods() schema.AllowedMethods {
	return schema.AllowedMethods{
		Get:    true,
		Delete: r.delete != nil,
		Patch:  r.patch != nil,
	}
}

func (r *Resource) describedBy() (string, bool) {
	return r.resourceType.DescribedBy, true
}

// ResourceType reports the schema type this resource was registered
// under, for the schema-type registry.
func (r *Resource) ResourceType() schema.ResourceType { return r.resourceType }

// CollectionURI returns the URI of the collection this resource is a
// member of, if any.
func (r *Resource) CollectionURI() (string, bool) { return r.collection, r.hasColl }

// PostHook creates a new member resource from a POST body. It must not
// mutate the collection's membership itself — the Tree does that once
// the hook returns successfully — but may read existing members (e.g. to
// pick the next numeric Id).
type PostHook func(c *Collection, req map[string]interface{}) (*Resource, error)

// Collection is a Redfish collection: an ordered list of member URIs,
// with optional POST capability.
type Collection struct {
	uri            string
	collectionType schema.CollectionType
	name           string
	members        []string
	post           PostHook
}

// NewCollection constructs a Collection with the given initial members.
func NewCollection(uri, schemaName, name string, members []string, post PostHook) *Collection {
	return &Collection{
		uri:            uri,
		collectionType: schema.NewDMTFCollectionTypeV1(schemaName),
		name:           name,
		members:        append([]string(nil), members...),
		post:           post,
	}
}

func (c *Collection) URI() string { return c.uri }

// Members returns a copy of the collection's current member URI list, in
// membership order.
func (c *Collection) Members() []string {
	return append([]string(nil), c.members...)
}

func (c *Collection) body() map[string]interface{} {
	members := make([]interface{}, len(c.members))
	for i, m := range c.members {
		members[i] = map[string]interface{}{"@odata.id": m}
	}
	return map[string]interface{}{
		"@odata.id":           c.uri,
		"@odata.etag":         hardcodedETag,
		"@odata.type":         "#" + c.collectionType.Name + "." + c.collectionType.Name,
		"Name":                c.name,
		"Members":             members,
		"Members@odata.count": len(c.members),
	}
}

func (c *Collection) allowedMethods() schema.AllowedMethods {
	return schema.AllowedMethods{Get: true, Post: c.post != nil}
}

func (c *Collection) describedBy() (string, bool) {
	return c.collectionType.DescribedBy, true
}

// CollectionType reports the schema type this collection was registered
// under, for the schema-type registry.
func (c *Collection) CollectionType() schema.CollectionType { return c.collectionType }

func (c *Collection) appendMember(uri string) {
	c.members = append(c.members, uri)
}

func (c *Collection) removeMember(uri string) {
	for i, m := range c.members {
		if m == uri {
			c.members = append(c.members[:i], c.members[i+1:]...)
			return
		}
	}
}
