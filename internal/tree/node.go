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

// Package tree implements the in-memory Redfish resource tree: the
// Resource/Collection node types, their capability-bit/hook model, and
// the Tree store that serializes access to them.
package tree

import "redfishtree/internal/schema"

// hardcodedETag is the opaque etag value every node in this tree reports.
// The core spec treats the etag format as implementation-controlled and
// explicitly out of scope for real content hashing.
const hardcodedETag = `"HARDCODED_ETAG"`

// Node is the read-only view the HTTP layer works with: a resource or a
// collection, abstracted behind the properties every response needs.
type Node interface {
	URI() string
	Body() map[string]interface{}
	AllowedMethods() schema.AllowedMethods
	DescribedBy() (url string, ok bool)
}

func deepCopyJSON(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, v := range val {
			out[k] = deepCopyJSON(v)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, v := range val {
			out[i] = deepCopyJSON(v)
		}
		return out
	default:
		return val
	}
}

func deepCopyBody(body map[string]interface{}) map[string]interface{} {
	return deepCopyJSON(body).(map[string]interface{})
}
