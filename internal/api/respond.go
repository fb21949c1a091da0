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

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"redfishtree/internal/tree"
)

// writeStandardHeaders sets the two headers every response carries,
// success or failure.
func writeStandardHeaders(w http.ResponseWriter) {
	w.Header().Set("OData-Version", "4.0")
	w.Header().Set("Cache-Control", "no-cache")
}

func writeAllowHeader(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
}

func writeDescribedByHeader(w http.ResponseWriter, node tree.Node) {
	if url, ok := node.DescribedBy(); ok {
		w.Header().Set("Link", "<"+url+">; rel=describedby")
	}
}

// writeNodeResponse writes the GET/PATCH response for a tree node:
// standard headers, its own Allow set, a describedby Link, an ETag, and
// its JSON body. If includeBody is false (a HEAD request), the body is
// omitted but every header is still set.
func writeNodeResponse(w http.ResponseWriter, node tree.Node, includeBody bool) {
	writeStandardHeaders(w)
	writeAllowHeader(w, node.AllowedMethods().String())
	writeDescribedByHeader(w, node)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("ETag", node.Body()["@odata.etag"].(string))
	w.WriteHeader(http.StatusOK)
	if includeBody {
		writeJSONBody(w, node.Body())
	}
}

// writeNodeCreatedResponse writes the 201 response for a successful
// POST, with Location and an optional X-Auth-Token.
func writeNodeCreatedResponse(w http.ResponseWriter, node tree.Node, authToken string) {
	writeStandardHeaders(w)
	writeAllowHeader(w, node.AllowedMethods().String())
	writeDescribedByHeader(w, node)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("ETag", node.Body()["@odata.etag"].(string))
	w.Header().Set("Location", node.URI())
	if authToken != "" {
		w.Header().Set("X-Auth-Token", authToken)
	}
	w.WriteHeader(http.StatusCreated)
	writeJSONBody(w, node.Body())
}

// writeDeletedResponse writes the 204 response for a successful DELETE.
func writeDeletedResponse(w http.ResponseWriter) {
	writeStandardHeaders(w)
	w.WriteHeader(http.StatusNoContent)
}

// writeJSONResponse writes a non-node JSON document (the /redfish
// discovery stub, the odata service document) with the given status and
// fixed Allow set.
func writeJSONResponse(w http.ResponseWriter, status int, allow string, includeBody bool, data interface{}) {
	writeStandardHeaders(w)
	writeAllowHeader(w, allow)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if includeBody {
		writeJSONBody(w, data)
	}
}

// writeXMLResponse writes the $metadata document.
func writeXMLResponse(w http.ResponseWriter, allow string, includeBody bool, body string) {
	writeStandardHeaders(w)
	writeAllowHeader(w, allow)
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	if includeBody {
		_, _ = w.Write([]byte(body))
	}
}

func writeJSONBody(w http.ResponseWriter, data interface{}) {
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response body", "error", err)
	}
}
