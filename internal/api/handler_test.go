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
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"redfishtree/internal/bootstrap"
	"redfishtree/internal/session"
)

// setupTestAPI builds a fresh bootstrap tree, session store, and Handler
// for a single test.
func setupTestAPI(t *testing.T) http.Handler {
	t.Helper()
	tr, _ := bootstrap.Build("admin123")
	return New(tr, session.New())
}

func do(t *testing.T, h http.Handler, method, path string, headers map[string]string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRedfishDiscovery(t *testing.T) {
	h := setupTestAPI(t)
	rec := do(t, h, http.MethodGet, "/redfish", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["v1"] != "/redfish/v1/" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestHeadServiceRootHasNoBody(t *testing.T) {
	h := setupTestAPI(t)
	rec := do(t, h, http.MethodHead, "/redfish/v1", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty body for HEAD, got %q", rec.Body.String())
	}
	if rec.Header().Get("ETag") == "" {
		t.Fatalf("expected ETag header on HEAD response")
	}
}

func TestGetServiceRootFidelity(t *testing.T) {
	h := setupTestAPI(t)
	rec := do(t, h, http.MethodGet, "/redfish/v1", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["@odata.id"] != "/redfish/v1" {
		t.Fatalf("expected @odata.id to match request URI, got %v", body["@odata.id"])
	}
	if rec.Header().Get("Allow") != "GET,HEAD" {
		t.Fatalf("unexpected Allow header: %q", rec.Header().Get("Allow"))
	}
}

func TestODataServiceDocument(t *testing.T) {
	h := setupTestAPI(t)
	rec := do(t, h, http.MethodGet, "/redfish/v1/odata", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["@odata.id"] != "/redfish/v1/odata" {
		t.Fatalf("unexpected @odata.id: %v", body["@odata.id"])
	}
	values, ok := body["value"].([]interface{})
	if !ok || len(values) == 0 {
		t.Fatalf("expected non-empty value array, got %v", body["value"])
	}
}

func TestMetadataDocument(t *testing.T) {
	h := setupTestAPI(t)
	rec := do(t, h, http.MethodGet, "/redfish/v1/$metadata", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/xml" {
		t.Fatalf("expected application/xml, got %q", rec.Header().Get("Content-Type"))
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("<edmx:Edmx")) {
		t.Fatalf("expected EDMX document, got %q", rec.Body.String())
	}
}

func TestODataVersionPrecondition(t *testing.T) {
	h := setupTestAPI(t)
	rec := do(t, h, http.MethodGet, "/redfish/v1", map[string]string{"OData-Version": "4.1"}, nil)
	if rec.Code != http.StatusPreconditionFailed {
		t.Fatalf("expected 412, got %d", rec.Code)
	}
}

func TestUnauthenticatedNonRootRejected(t *testing.T) {
	h := setupTestAPI(t)
	rec := do(t, h, http.MethodGet, "/redfish/v1/SessionService", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty error body, got %q", rec.Body.String())
	}
	if rec.Header().Get("WWW-Authenticate") == "" {
		t.Fatalf("expected WWW-Authenticate header")
	}
}

func TestNotFound(t *testing.T) {
	h := setupTestAPI(t)
	rec := do(t, h, http.MethodGet, "/redfish/v1/NoSuchThing", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty error body, got %q", rec.Body.String())
	}
}

func TestLoginThenSessionScopedAccessThenLogout(t *testing.T) {
	h := setupTestAPI(t)

	rec := do(t, h, http.MethodPost, "/redfish/v1/SessionService/Sessions", nil, map[string]string{
		"UserName": "admin",
		"Password": "admin123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	token := rec.Header().Get("X-Auth-Token")
	if token == "" {
		t.Fatalf("expected X-Auth-Token on login response")
	}
	var session map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode session body: %v", err)
	}
	sessionURI, _ := session["@odata.id"].(string)
	if sessionURI == "" {
		t.Fatalf("expected @odata.id in session body")
	}

	rec = do(t, h, http.MethodGet, "/redfish/v1/AccountService", map[string]string{"X-Auth-Token": token}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}

	before := do(t, h, http.MethodGet, "/redfish/v1/SessionService/Sessions", map[string]string{"X-Auth-Token": token}, nil)
	var beforeBody map[string]interface{}
	_ = json.Unmarshal(before.Body.Bytes(), &beforeBody)
	beforeCount := int(beforeBody["Members@odata.count"].(float64))

	rec = do(t, h, http.MethodDelete, sessionURI, map[string]string{"X-Auth-Token": token}, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on logout, got %d", rec.Code)
	}

	basic := "Basic " + base64.StdEncoding.EncodeToString([]byte("admin:admin123"))
	after := do(t, h, http.MethodGet, "/redfish/v1/SessionService/Sessions", map[string]string{"Authorization": basic}, nil)
	var afterBody map[string]interface{}
	_ = json.Unmarshal(after.Body.Bytes(), &afterBody)
	if afterCount := int(afterBody["Members@odata.count"].(float64)); afterCount != beforeCount-1 {
		t.Fatalf("expected logout to remove the session from its collection: %d members before, %d after", beforeCount, afterCount)
	}

	rec = do(t, h, http.MethodGet, "/redfish/v1/AccountService", map[string]string{"X-Auth-Token": token}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected revoked token to be rejected, got %d", rec.Code)
	}
}

func TestLoginWithBadCredentialsRejected(t *testing.T) {
	h := setupTestAPI(t)
	rec := do(t, h, http.MethodPost, "/redfish/v1/SessionService/Sessions", nil, map[string]string{
		"UserName": "admin",
		"Password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestPostToMembersSuffixEquivalentToCollection(t *testing.T) {
	h := setupTestAPI(t)
	rec := do(t, h, http.MethodPost, "/redfish/v1/SessionService/Sessions/Members", nil, map[string]string{
		"UserName": "admin",
		"Password": "admin123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 via /Members suffix, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPatchSessionServiceTimeout(t *testing.T) {
	h := setupTestAPI(t)
	rec := do(t, h, http.MethodPost, "/redfish/v1/SessionService/Sessions", nil, map[string]string{
		"UserName": "admin",
		"Password": "admin123",
	})
	token := rec.Header().Get("X-Auth-Token")

	rec = do(t, h, http.MethodPatch, "/redfish/v1/SessionService", map[string]string{"X-Auth-Token": token}, map[string]interface{}{
		"SessionTimeout": 120,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["SessionTimeout"].(float64) != 120 {
		t.Fatalf("expected SessionTimeout to update, got %v", body["SessionTimeout"])
	}
}

func TestPatchUnpatchableResourceIsMethodNotAllowed(t *testing.T) {
	h := setupTestAPI(t)
	rec := do(t, h, http.MethodPost, "/redfish/v1/SessionService/Sessions", nil, map[string]string{
		"UserName": "admin",
		"Password": "admin123",
	})
	token := rec.Header().Get("X-Auth-Token")

	rec = do(t, h, http.MethodPatch, "/redfish/v1/AccountService/Roles/Administrator", map[string]string{"X-Auth-Token": token}, map[string]interface{}{
		"RoleId": "Nope",
	})
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	if rec.Header().Get("Allow") != "GET,HEAD" {
		t.Fatalf("unexpected Allow: %q", rec.Header().Get("Allow"))
	}
}

func TestDeleteNonDeletableResourceIsMethodNotAllowed(t *testing.T) {
	h := setupTestAPI(t)
	rec := do(t, h, http.MethodPost, "/redfish/v1/SessionService/Sessions", nil, map[string]string{
		"UserName": "admin",
		"Password": "admin123",
	})
	token := rec.Header().Get("X-Auth-Token")

	rec = do(t, h, http.MethodDelete, "/redfish/v1/AccountService/Roles/Administrator", map[string]string{"X-Auth-Token": token}, nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestCreateAccountThenLoginWithIt(t *testing.T) {
	h := setupTestAPI(t)
	rec := do(t, h, http.MethodPost, "/redfish/v1/SessionService/Sessions", nil, map[string]string{
		"UserName": "admin",
		"Password": "admin123",
	})
	token := rec.Header().Get("X-Auth-Token")

	rec = do(t, h, http.MethodPost, "/redfish/v1/AccountService/Accounts", map[string]string{"X-Auth-Token": token}, map[string]interface{}{
		"UserName": "operator1",
		"Password": "hunter2hunter2",
		"RoleId":   "Operator",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodPost, "/redfish/v1/SessionService/Sessions", nil, map[string]string{
		"UserName": "operator1",
		"Password": "hunter2hunter2",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected new account to log in, got %d", rec.Code)
	}
}

func TestPostWithUnsupportedContentTypeIs415(t *testing.T) {
	h := setupTestAPI(t)
	req := httptest.NewRequest(http.MethodPost, "/redfish/v1/SessionService/Sessions",
		bytes.NewReader([]byte(`{"UserName":"admin","Password":"admin123"}`)))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty error body, got %q", rec.Body.String())
	}
}

func TestPatchWithUnsupportedContentTypeIs415(t *testing.T) {
	h := setupTestAPI(t)
	rec := do(t, h, http.MethodPost, "/redfish/v1/SessionService/Sessions", nil, map[string]string{
		"UserName": "admin",
		"Password": "admin123",
	})
	token := rec.Header().Get("X-Auth-Token")

	req := httptest.NewRequest(http.MethodPatch, "/redfish/v1/SessionService",
		bytes.NewReader([]byte(`{"SessionTimeout":120}`)))
	req.Header.Set("Content-Type", "application/xml")
	req.Header.Set("X-Auth-Token", token)
	rec2 := httptest.NewRecorder()
	h.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rec2.Code)
	}
}

func TestPostWithMalformedJSONIs400(t *testing.T) {
	h := setupTestAPI(t)
	req := httptest.NewRequest(http.MethodPost, "/redfish/v1/SessionService/Sessions",
		bytes.NewReader([]byte(`{not valid json`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty error body, got %q", rec.Body.String())
	}
}

func TestPostWithNonObjectJSONIs400(t *testing.T) {
	h := setupTestAPI(t)
	req := httptest.NewRequest(http.MethodPost, "/redfish/v1/SessionService/Sessions",
		bytes.NewReader([]byte(`"admin"`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-object JSON payload, got %d", rec.Code)
	}
}

func TestMethodNotAllowedOnCollectionWithoutPostHook(t *testing.T) {
	h := setupTestAPI(t)
	rec := do(t, h, http.MethodPost, "/redfish/v1/SessionService/Sessions", nil, map[string]string{
		"UserName": "admin",
		"Password": "admin123",
	})
	token := rec.Header().Get("X-Auth-Token")

	rec = do(t, h, http.MethodPost, "/redfish/v1/AccountService/Roles", map[string]string{"X-Auth-Token": token}, map[string]interface{}{
		"RoleId": "Nope",
	})
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
