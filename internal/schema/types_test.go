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

import "testing"

func TestURIID(t *testing.T) {
	if got := URIID("/redfish/v1"); got != "RootService" {
		t.Errorf("URIID(/redfish/v1) = %q, want RootService", got)
	}
	if got := URIID("/redfish/v1/Chassis"); got != "Chassis" {
		t.Errorf("URIID(/redfish/v1/Chassis) = %q, want Chassis", got)
	}
}

func TestCollectionVersionString(t *testing.T) {
	if got := (CollectionVersion{N: 1}).String(); got != "v1" {
		t.Errorf("got %q, want v1", got)
	}
}

func TestResourceVersionString(t *testing.T) {
	v := ResourceVersion{Major: 1, Minor: 2, Build: 3}
	if got := v.String(); got != "v1_2_3" {
		t.Errorf("got %q, want v1_2_3", got)
	}
}

func TestDMTFCollectionTypeXML(t *testing.T) {
	ct := NewDMTFCollectionTypeV1("SessionCollection")
	want := "  <edmx:Reference Uri=\"http://redfish.dmtf.org/schemas/v1/SessionCollection_v1.xml\">\n" +
		"    <edmx:Include Namespace=\"SessionCollection\" />\n" +
		"  </edmx:Reference>\n"
	if got := ct.ToXML(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDMTFResourceTypeXML(t *testing.T) {
	rt := NewDMTFResourceType("Role", ResourceVersion{Major: 1, Minor: 3, Build: 0})
	want := "  <edmx:Reference Uri=\"http://redfish.dmtf.org/schemas/v1/Role_v1.xml\">\n" +
		"    <edmx:Include Namespace=\"Role\" />\n" +
		"    <edmx:Include Namespace=\"Role.v1_3_0\" />\n" +
		"  </edmx:Reference>\n"
	if got := rt.ToXML(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestAllowedMethodsString(t *testing.T) {
	cases := []struct {
		in   AllowedMethods
		want string
	}{
		{AllowedMethods{Get: true}, "GET,HEAD"},
		{AllowedMethods{Get: true, Delete: true, Patch: true, Post: true}, "GET,HEAD,DELETE,PATCH,POST"},
		{AllowedMethods{Post: true}, "POST"},
		{AllowedMethods{}, ""},
	}
	for _, c := range cases {
		if got := c.in.String(); got != c.want {
			t.Errorf("AllowedMethods.String() = %q, want %q", got, c.want)
		}
	}
}

func TestResourceTypeDescribedBy(t *testing.T) {
	rt := NewDMTFResourceType("ServiceRoot", ResourceVersion{Major: 1, Minor: 15, Build: 0})
	if rt.DescribedBy != "https://redfish.dmtf.org/schemas/v1/ServiceRoot.v1_15_0.json" {
		t.Errorf("unexpected described_by: %s", rt.DescribedBy)
	}
}

func TestCollectionTypeDescribedBy(t *testing.T) {
	ct := NewDMTFCollectionTypeV1("RoleCollection")
	if ct.DescribedBy != "https://redfish.dmtf.org/schemas/v1/RoleCollection.json" {
		t.Errorf("unexpected described_by: %s", ct.DescribedBy)
	}
}
