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

package schema

import (
	"path"
	"sort"
	"strings"
)

// ODataServiceValue is one entry in the /redfish/v1/odata "value" array.
type ODataServiceValue struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ODataServiceDocument builds the /redfish/v1/odata body from the service
// root's own top-level properties. Entries are emitted in the service
// root's own property-iteration order; this implementation stores bodies
// as plain JSON objects, whose only well-defined iteration order is
// alphabetical by key (the reference implementation's serde_json::Map
// defaults to a BTreeMap, i.e. the same ordering), so that's what's used
// here. A synthetic "v1" singleton for the root itself is always first.
func ODataServiceDocument(serviceRoot map[string]interface{}) map[string]interface{} {
	newEntry := func(url string) ODataServiceValue {
		return ODataServiceValue{Kind: "Singleton", Name: path.Base(url), URL: url}
	}

	values := []ODataServiceValue{newEntry("/redfish/v1")}

	keys := make([]string, 0, len(serviceRoot))
	for k := range serviceRoot {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		obj, ok := serviceRoot[k].(map[string]interface{})
		if !ok {
			continue
		}
		if id, ok := obj["@odata.id"].(string); ok {
			values = append(values, newEntry(id))
		}
	}

	return map[string]interface{}{
		"@odata.id":      "/redfish/v1/odata",
		"@odata.context": "/redfish/v1/$metadata",
		"value":          values,
	}
}

// MetadataDocument renders the $metadata EDMX document: one Reference
// block per registered collection type, then one per resource type, then
// the unconditional RedfishExtensions reference, and finally the service
// container extension if a "ServiceRoot" resource type was registered.
//
// The exact whitespace here (including the missing space before the
// self-closing slash on the RedfishExtensions include, which every other
// Include in this document has) matches the fixtures this was distilled
// from; don't "clean it up".
func MetadataDocument(collectionTypes []CollectionType, resourceTypes []ResourceType) string {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	b.WriteString("<edmx:Edmx xmlns:edmx=\"http://docs.oasis-open.org/odata/ns/edmx\" Version=\"4.0\">\n")

	for _, ct := range collectionTypes {
		b.WriteString(ct.ToXML())
	}

	var serviceRootType *ResourceType
	for i, rt := range resourceTypes {
		b.WriteString(rt.ToXML())
		if rt.Name == "ServiceRoot" {
			serviceRootType = &resourceTypes[i]
		}
	}

	b.WriteString("  <edmx:Reference Uri=\"http://redfish.dmtf.org/schemas/v1/RedfishExtensions_v1.xml\">\n")
	b.WriteString("    <edmx:Include Namespace=\"RedfishExtensions.v1_0_0\" Alias=\"Redfish\"/>\n")
	b.WriteString("  </edmx:Reference>\n")

	if serviceRootType != nil {
		b.WriteString("  <edmx:DataServices>\n")
		b.WriteString("    <Schema xmlns=\"http://docs.oasis-open.org/odata/ns/edm\" Namespace=\"Service\">\n")
		b.WriteString("      <EntityContainer Name=\"Service\" Extends=\"" + serviceRootType.VersionedName() + ".ServiceContainer\" />\n")
		b.WriteString("    </Schema>\n  </edmx:DataServices>\n")
	}

	b.WriteString("</edmx:Edmx>\n")
	return b.String()
}
