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

// Package bootstrap builds the concrete resource tree this server ships
// with: ServiceRoot, SessionService and its Sessions collection,
// AccountService with its Accounts and Roles collections. It is the one
// place in the repository that knows both the tree package and the
// accounts package, wiring the latter's credential checks into the
// former's hooks.
package bootstrap

import (
	"fmt"

	"redfishtree/internal/accounts"
	"redfishtree/internal/schema"
	"redfishtree/internal/tree"
)

// adminUsername is the one account the tree ships with.
const adminUsername = "admin"

// Build constructs the fixture tree and its backing account store. The
// default admin password is handed in by the caller (the process
// entrypoint), which is responsible for sourcing it from configuration
// rather than hardcoding it here.
func Build(adminPassword string) (*tree.Tree, *accounts.Store) {
	store := accounts.New()
	if err := store.Set(adminUsername, adminPassword); err != nil {
		panic(fmt.Sprintf("bootstrap: failed to hash admin password: %v", err))
	}

	t := tree.New()

	t.AddResource(tree.NewResource(
		"/redfish/v1", "ServiceRoot", schema.ResourceVersion{Major: 1, Minor: 15, Build: 0},
		"ServiceRoot", "Root Service", "", nil, nil,
		map[string]interface{}{
			"RedfishVersion": "1.16.1",
			"UUID":           "92384634-2938-2342-8820-489239905423",
			"AccountService": map[string]interface{}{"@odata.id": "/redfish/v1/AccountService"},
			"SessionService": map[string]interface{}{"@odata.id": "/redfish/v1/SessionService"},
			"Links": map[string]interface{}{
				"Sessions": map[string]interface{}{"@odata.id": "/redfish/v1/SessionService/Sessions"},
			},
		},
	))

	t.AddResource(tree.NewResource(
		"/redfish/v1/SessionService", "SessionService", schema.ResourceVersion{Major: 1, Minor: 1, Build: 9},
		"SessionService", "Session Service", "",
		sessionServicePatchHook, nil,
		map[string]interface{}{
			"@Redfish.WriteableProperties": []interface{}{"SessionTimeout"},
			"SessionTimeout":               600,
			"Sessions":                     map[string]interface{}{"@odata.id": "/redfish/v1/SessionService/Sessions"},
		},
	))

	t.AddCollection(tree.NewCollection(
		"/redfish/v1/SessionService/Sessions", "SessionCollection", "Session Collection",
		[]string{"/redfish/v1/SessionService/Sessions/1"}, loginHook(store),
	))

	t.AddResource(tree.NewResource(
		"/redfish/v1/SessionService/Sessions/1", "Session", schema.ResourceVersion{Major: 1, Minor: 6, Build: 0},
		"Session", "Session 1", "/redfish/v1/SessionService/Sessions",
		nil, sessionDeleteHook,
		map[string]interface{}{"UserName": adminUsername, "Password": nil},
	))

	t.AddResource(tree.NewResource(
		"/redfish/v1/AccountService", "AccountService", schema.ResourceVersion{Major: 1, Minor: 12, Build: 0},
		"AccountService", "Account Service", "", nil, nil,
		map[string]interface{}{
			"Accounts": map[string]interface{}{"@odata.id": "/redfish/v1/AccountService/Accounts"},
			"Roles":    map[string]interface{}{"@odata.id": "/redfish/v1/AccountService/Roles"},
		},
	))

	t.AddCollection(tree.NewCollection(
		"/redfish/v1/AccountService/Accounts", "ManagerAccountCollection", "Account Collection",
		[]string{"/redfish/v1/AccountService/Accounts/admin"},
		createAccountHook(store),
	))

	t.AddResource(tree.NewResource(
		"/redfish/v1/AccountService/Accounts/admin", "ManagerAccount", schema.ResourceVersion{Major: 1, Minor: 10, Build: 0},
		"ManagerAccount", "Admin Account", "/redfish/v1/AccountService/Accounts",
		accountPatchHook(store), nil, // the admin account cannot be deleted
		map[string]interface{}{
			"@Redfish.WriteableProperties": []interface{}{"Password"},
			"UserName":                     adminUsername,
			"RoleId":                       "Administrator",
			"Links": map[string]interface{}{
				"Role": map[string]interface{}{"@odata.id": "/redfish/v1/AccountService/Roles/Administrator"},
			},
		},
	))

	t.AddCollection(tree.NewCollection(
		"/redfish/v1/AccountService/Roles", "RoleCollection", "Role Collection",
		[]string{
			"/redfish/v1/AccountService/Roles/Administrator",
			"/redfish/v1/AccountService/Roles/Operator",
			"/redfish/v1/AccountService/Roles/ReadOnly",
		},
		nil,
	))

	t.AddResource(role("Administrator", []string{"Login", "ConfigureManager", "ConfigureUsers", "ConfigureSelf", "ConfigureComponents"}))
	t.AddResource(role("Operator", []string{"Login", "ConfigureSelf", "ConfigureComponents"}))
	t.AddResource(role("ReadOnly", []string{"ConfigureSelf", "Login"}))

	return t, store
}

func role(id string, privileges []string) *tree.Resource {
	priv := make([]interface{}, len(privileges))
	for i, p := range privileges {
		priv[i] = p
	}
	return tree.NewResource(
		"/redfish/v1/AccountService/Roles/"+id, "Role", schema.ResourceVersion{Major: 1, Minor: 3, Build: 1},
		"Role", id+" Role", "/redfish/v1/AccountService/Roles",
		nil, nil,
		map[string]interface{}{
			"RoleId":             id,
			"IsPredefined":       true,
			"AssignedPrivileges": priv,
		},
	)
}

func sessionServicePatchHook(r *tree.Resource, req map[string]interface{}) error {
	timeout, ok := req["SessionTimeout"].(float64)
	if !ok {
		return &tree.Error{Kind: tree.ErrMethodNotAllowed}
	}
	r.Body["SessionTimeout"] = timeout
	return nil
}

// loginHook validates the posted credentials against store and, on
// success, builds the new Session resource. The core tree and HTTP
// pipeline never inspect a password; this hook and the account hooks
// below are the only places that read one.
func loginHook(store *accounts.Store) tree.PostHook {
	return func(c *tree.Collection, req map[string]interface{}) (*tree.Resource, error) {
		username, _ := req["UserName"].(string)
		password, _ := req["Password"].(string)
		if err := store.Verify(username, password); err != nil {
			return nil, &tree.Error{Kind: tree.ErrUnauthorized}
		}

		id := nextNumericID(c.Members())
		uri := fmt.Sprintf("%s/%d", c.URI(), id)
		return tree.NewResource(
			uri, "Session", schema.ResourceVersion{Major: 1, Minor: 6, Build: 0},
			"Session", fmt.Sprintf("Session %d", id), c.URI(),
			nil, sessionDeleteHook,
			map[string]interface{}{"UserName": username, "Password": nil},
		), nil
	}
}

func sessionDeleteHook(r *tree.Resource) error { return nil }

// createAccountHook validates a new account's credentials don't collide
// with an existing one and registers its password with store.
func createAccountHook(store *accounts.Store) tree.PostHook {
	return func(c *tree.Collection, req map[string]interface{}) (*tree.Resource, error) {
		username, _ := req["UserName"].(string)
		password, _ := req["Password"].(string)
		roleID, _ := req["RoleId"].(string)
		if username == "" || password == "" {
			return nil, &tree.Error{Kind: tree.ErrMethodNotAllowed}
		}
		if roleID == "" {
			roleID = "ReadOnly"
		}
		if store.Has(username) {
			return nil, &tree.Error{Kind: tree.ErrMethodNotAllowed}
		}
		if err := store.Set(username, password); err != nil {
			return nil, err
		}

		uri := c.URI() + "/" + username
		return tree.NewResource(
			uri, "ManagerAccount", schema.ResourceVersion{Major: 1, Minor: 10, Build: 0},
			"ManagerAccount", username+" Account", c.URI(),
			accountPatchHook(store), accountDeleteHook(store, username),
			map[string]interface{}{
				"@Redfish.WriteableProperties": []interface{}{"Password"},
				"UserName":                     username,
				"RoleId":                       roleID,
				"Links": map[string]interface{}{
					"Role": map[string]interface{}{"@odata.id": "/redfish/v1/AccountService/Roles/" + roleID},
				},
			},
		), nil
	}
}

func accountPatchHook(store *accounts.Store) tree.PatchHook {
	return func(r *tree.Resource, req map[string]interface{}) error {
		password, ok := req["Password"].(string)
		if !ok {
			return &tree.Error{Kind: tree.ErrMethodNotAllowed}
		}
		username, _ := r.Body["UserName"].(string)
		return store.Set(username, password)
	}
}

func accountDeleteHook(store *accounts.Store, username string) tree.DeleteHook {
	return func(r *tree.Resource) error {
		store.Delete(username)
		return nil
	}
}

func nextNumericID(members []string) int {
	highest := 0
	for _, m := range members {
		id := schema.URIID(m)
		n := 0
		_, _ = fmt.Sscanf(id, "%d", &n)
		if n > highest {
			highest = n
		}
	}
	return highest + 1
}
