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
	"net/http"

	"redfishtree/internal/tree"
)

// writeErrorResponse maps a tree.Error (or any other error, treated as
// NotFound) to its HTTP status and headers. Every error response in this
// core has an empty body — no Base.1.0.* ExtendedInfo, per spec.
func writeErrorResponse(w http.ResponseWriter, err error) {
	rfErr, ok := err.(*tree.Error)
	if !ok {
		writeStandardHeaders(w)
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch rfErr.Kind {
	case tree.ErrUnauthorized:
		writeUnauthorizedResponse(w)
	case tree.ErrMethodNotAllowed:
		writeStandardHeaders(w)
		writeAllowHeader(w, rfErr.Allowed.String())
		w.WriteHeader(http.StatusMethodNotAllowed)
	default:
		writeStandardHeaders(w)
		w.WriteHeader(http.StatusNotFound)
	}
}

func writeUnauthorizedResponse(w http.ResponseWriter) {
	writeStandardHeaders(w)
	w.Header().Set("WWW-Authenticate", `Basic realm="simple"`)
	w.WriteHeader(http.StatusUnauthorized)
}

func writeBadODataVersionResponse(w http.ResponseWriter) {
	writeStandardHeaders(w)
	w.WriteHeader(http.StatusPreconditionFailed)
}
