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

// Package schema implements the DMTF Redfish schema-type registry: the
// value types a Tree uses to track which resource and collection schemas
// it has instantiated, and the derivation of their DMTF XML/JSON schema
// URLs.
package schema

import "fmt"

// AllowedMethods is the capability set a node (resource or collection)
// exposes through the Allow header. HEAD always mirrors GET.
type AllowedMethods struct {
	Get    bool
	Delete bool
	Patch  bool
	Post   bool
}

// String renders the methods in the fixed order GET,HEAD,DELETE,PATCH,POST.
func (a AllowedMethods) String() string {
	var methods []string
	if a.Get {
		methods = append(methods, "GET", "HEAD")
	}
	if a.Delete {
		methods = append(methods, "DELETE")
	}
	if a.Patch {
		methods = append(methods, "PATCH")
	}
	if a.Post {
		methods = append(methods, "POST")
	}
	out := ""
	for i, m := range methods {
		if i > 0 {
			out += ","
		}
		out += m
	}
	return out
}

// ResourceVersion is a resource schema's full major_minor_build version.
type ResourceVersion struct {
	Major, Minor, Build uint
}

func (v ResourceVersion) String() string {
	return fmt.Sprintf("v%d_%d_%d", v.Major, v.Minor, v.Build)
}

// CollectionVersion is a collection schema's version. DMTF collection
// schemas are, at present, always v1.
type CollectionVersion struct {
	N uint
}

func (v CollectionVersion) String() string {
	return fmt.Sprintf("v%d", v.N)
}

// ResourceType identifies a DMTF resource schema and its derived URLs.
type ResourceType struct {
	Name         string
	Version      ResourceVersion
	XMLSchemaURI string
	DescribedBy  string
}

// NewDMTFResourceType builds a ResourceType for a DMTF-published schema,
// deriving its XML schema URI and JSON describedBy URL from name+version.
func NewDMTFResourceType(name string, version ResourceVersion) ResourceType {
	return ResourceType{
		Name:         name,
		Version:      version,
		XMLSchemaURI: fmt.Sprintf("http://redfish.dmtf.org/schemas/v1/%s_v%d.xml", name, version.Major),
		DescribedBy:  fmt.Sprintf("https://redfish.dmtf.org/schemas/v1/%s.%s.json", name, version.String()),
	}
}

// VersionedName is "<Name>.<version>", the EDMX namespace DMTF uses for a
// resource's versioned schema (e.g. "ServiceRoot.v1_15_0").
func (r ResourceType) VersionedName() string {
	return r.Name + "." + r.Version.String()
}

// ToXML renders the edmx:Reference block a $metadata document includes
// for this resource type.
func (r ResourceType) ToXML() string {
	return "  <edmx:Reference Uri=\"" + r.XMLSchemaURI + "\">\n" +
		"    <edmx:Include Namespace=\"" + r.Name + "\" />\n" +
		"    <edmx:Include Namespace=\"" + r.VersionedName() + "\" />\n" +
		"  </edmx:Reference>\n"
}

// CollectionType identifies a DMTF collection schema and its derived URLs.
type CollectionType struct {
	Name         string
	Version      CollectionVersion
	XMLSchemaURI string
	DescribedBy  string
}

// NewDMTFCollectionType builds a CollectionType for a DMTF-published
// collection schema of the given version.
func NewDMTFCollectionType(name string, version CollectionVersion) CollectionType {
	return CollectionType{
		Name:         name,
		Version:      version,
		XMLSchemaURI: fmt.Sprintf("http://redfish.dmtf.org/schemas/v1/%s_%s.xml", name, version.String()),
		DescribedBy:  fmt.Sprintf("https://redfish.dmtf.org/schemas/v1/%s.json", name),
	}
}

// NewDMTFCollectionTypeV1 is the common case: every DMTF collection
// schema currently in use is v1.
func NewDMTFCollectionTypeV1(name string) CollectionType {
	return NewDMTFCollectionType(name, CollectionVersion{N: 1})
}

// ToXML renders the edmx:Reference block a $metadata document includes
// for this collection type.
func (c CollectionType) ToXML() string {
	return "  <edmx:Reference Uri=\"" + c.XMLSchemaURI + "\">\n" +
		"    <edmx:Include Namespace=\"" + c.Name + "\" />\n" +
		"  </edmx:Reference>\n"
}

// URIID derives the "Id" property DMTF expects a resource to carry from
// its own URI: the root service is special-cased to "RootService", and
// everything else is the final path segment.
func URIID(uri string) string {
	if uri == "/redfish/v1" {
		return "RootService"
	}
	i := len(uri) - 1
	for i >= 0 && uri[i] != '/' {
		i--
	}
	return uri[i+1:]
}
