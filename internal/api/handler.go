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
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"redfishtree/internal/schema"
	"redfishtree/internal/tree"
)

var errBadContentType = errors.New("api: request body must be application/json")

// ServeHTTP implements the seven-step request pipeline: path
// normalization, the OData-Version precondition, identity resolution,
// body validation, POST URI normalization, dispatch, and response
// shaping.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := normalizePath(r.URL.Path)

	if v := r.Header.Get("OData-Version"); v != "" && v != "4.0" {
		writeBadODataVersionResponse(w)
		return
	}

	switch path {
	case "/redfish":
		h.handleRedfishDiscovery(w, r)
		return
	case "/redfish/v1/$metadata":
		h.handleMetadata(w, r)
		return
	case "/redfish/v1/odata":
		h.handleODataServiceDocument(w, r)
		return
	}

	if !strings.HasPrefix(path, "/redfish/") {
		writeErrorResponse(w, &tree.Error{Kind: tree.ErrNotFound})
		return
	}

	h.handleTreeRequest(w, r, path)
}

func normalizePath(p string) string {
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		return strings.TrimSuffix(p, "/")
	}
	return p
}

// handleRedfishDiscovery serves the fixed top-level discovery stub at
// /redfish. It is anonymous and needs no tree access at all.
func (h *Handler) handleRedfishDiscovery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeStandardHeaders(w)
		writeAllowHeader(w, "GET,HEAD")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSONResponse(w, http.StatusOK, "GET,HEAD", r.Method != http.MethodHead,
		map[string]interface{}{"v1": "/redfish/v1/"})
}

// handleMetadata serves the OData $metadata CSDL document generated from
// the tree's schema-type registry.
func (h *Handler) handleMetadata(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeStandardHeaders(w)
		writeAllowHeader(w, "GET,HEAD")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	body := schema.MetadataDocument(h.tree.CollectionTypes(), h.tree.ResourceTypes())
	writeXMLResponse(w, "GET,HEAD", r.Method != http.MethodHead, body)
}

// handleODataServiceDocument serves /redfish/v1/odata, built from the
// service root's own body.
func (h *Handler) handleODataServiceDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeStandardHeaders(w)
		writeAllowHeader(w, "GET,HEAD")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	node, err := h.tree.Get("/redfish/v1", nil)
	if err != nil {
		writeErrorResponse(w, err)
		return
	}
	doc := schema.ODataServiceDocument(node.Body())
	writeJSONResponse(w, http.StatusOK, "GET,HEAD", r.Method != http.MethodHead, doc)
}

// handleTreeRequest dispatches GET/HEAD/POST/PATCH/DELETE against the
// resource tree for everything under /redfish/ other than the three
// anonymous discovery endpoints handled above.
func (h *Handler) handleTreeRequest(w http.ResponseWriter, r *http.Request, path string) {
	username, err := h.resolveIdentity(r)
	if err != nil {
		writeErrorResponse(w, err)
		return
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		node, err := h.tree.Get(path, username)
		if err != nil {
			writeErrorResponse(w, err)
			return
		}
		writeNodeResponse(w, node, r.Method == http.MethodGet)

	case http.MethodPost:
		body, err := readJSONObject(r)
		if err != nil {
			writeBodyValidationError(w, err)
			return
		}
		createURI := strings.TrimSuffix(path, "/Members")
		node, err := h.tree.Create(createURI, body, username)
		if err != nil {
			writeErrorResponse(w, err)
			return
		}
		authToken := h.issueSessionTokenIfLogin(createURI, node)
		writeNodeCreatedResponse(w, node, authToken)

	case http.MethodPatch:
		body, err := readJSONObject(r)
		if err != nil {
			writeBodyValidationError(w, err)
			return
		}
		node, err := h.tree.Patch(path, body, username)
		if err != nil {
			writeErrorResponse(w, err)
			return
		}
		writeNodeResponse(w, node, true)

	case http.MethodDelete:
		if err := h.tree.Delete(path, username); err != nil {
			writeErrorResponse(w, err)
			return
		}
		h.sessions.RevokeByURI(path)
		writeDeletedResponse(w)

	default:
		node, err := h.tree.Get(path, username)
		if err != nil {
			writeErrorResponse(w, err)
			return
		}
		writeStandardHeaders(w)
		writeAllowHeader(w, node.AllowedMethods().String())
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// sessionCollectionURI is the one collection whose POST response carries
// a minted X-Auth-Token.
const sessionCollectionURI = "/redfish/v1/SessionService/Sessions"

func (h *Handler) issueSessionTokenIfLogin(createURI string, node tree.Node) string {
	if createURI != sessionCollectionURI {
		return ""
	}
	username, _ := node.Body()["UserName"].(string)
	return h.sessions.Issue(username, node.URI())
}

// resolveIdentity implements step 3 of the pipeline: X-Auth-Token first,
// then HTTP Basic syntax (not credential validation — that's delegated
// to hooks, e.g. the session-creation login hook), else anonymous.
func (h *Handler) resolveIdentity(r *http.Request) (*string, error) {
	if token := r.Header.Get("X-Auth-Token"); token != "" {
		username, ok := h.sessions.Lookup(token)
		if !ok {
			return nil, &tree.Error{Kind: tree.ErrUnauthorized}
		}
		return &username, nil
	}

	if auth := r.Header.Get("Authorization"); auth != "" {
		username, ok := parseBasicAuth(auth)
		if !ok {
			return nil, &tree.Error{Kind: tree.ErrUnauthorized}
		}
		return &username, nil
	}

	return nil, nil
}

func parseBasicAuth(header string) (username string, ok bool) {
	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", false
	}
	parts := strings.SplitN(string(decoded), ":", 2)
	if len(parts) != 2 {
		return "", false
	}
	return parts[0], true
}

// readJSONObject validates the Content-Type and decodes the body as a
// JSON object, per pipeline step 4. A Content-Type mismatch and a decode
// failure are distinguishable errors (errBadContentType vs. anything
// else) so callers can tell a 415 from a 400.
func readJSONObject(r *http.Request) (map[string]interface{}, error) {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "application/json") {
		return nil, errBadContentType
	}
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body, nil
}

// writeBodyValidationError maps a readJSONObject failure to its status:
// 415 for an unsupported Content-Type, 400 for anything else (a
// malformed or non-object JSON payload).
func writeBodyValidationError(w http.ResponseWriter, err error) {
	writeStandardHeaders(w)
	if errors.Is(err, errBadContentType) {
		w.WriteHeader(http.StatusUnsupportedMediaType)
		return
	}
	w.WriteHeader(http.StatusBadRequest)
}
