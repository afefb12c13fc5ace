package store

import (
	"context"
	"errors"
	"testing"
)

func TestMemory_GetClient(t *testing.T) {
	s := NewMemory([]Client{{
		ClientID:   "mcp-zaxon",
		SecretHash: "$argon2id$...",
		GrantTypes: []string{"client_credentials"},
		Scopes:     []string{"deploy"},
		Tenant:     "zaxon",
	}})
	defer s.Close()

	c, err := s.GetClient(context.Background(), "mcp-zaxon")
	if err != nil {
		t.Fatalf("GetClient: %v", err)
	}
	if c.Tenant != "zaxon" {
		t.Errorf("Tenant = %q", c.Tenant)
	}

	// El store devuelve copias: mutar el resultado no toca el seed.
	c.Tenant = "mutado"
	c2, err := s.GetClient(context.Background(), "mcp-zaxon")
	if err != nil {
		t.Fatalf("GetClient: %v", err)
	}
	if c2.Tenant != "zaxon" {
		t.Errorf("Tenant mutado en el store: %q", c2.Tenant)
	}

	if _, err := s.GetClient(context.Background(), "fantasma"); !errors.Is(err, ErrNotFound) {
		t.Errorf("esperaba ErrNotFound, obtuve %v", err)
	}
}

func TestClient_GrantAllowed(t *testing.T) {
	c := &Client{GrantTypes: []string{"client_credentials", "refresh_token"}}
	if !c.GrantAllowed("client_credentials") {
		t.Error("client_credentials debería estar permitido")
	}
	if c.GrantAllowed("authorization_code") {
		t.Error("authorization_code no está en la lista")
	}

	// Lista vacía = nada permitido.
	vacio := &Client{}
	if vacio.GrantAllowed("client_credentials") {
		t.Error("sin grants configurados nada se permite")
	}
}

func TestClient_ScopeAllowed(t *testing.T) {
	c := &Client{Scopes: []string{"deploy", "basic_profile"}}
	if !c.ScopeAllowed("deploy") {
		t.Error("deploy debería estar permitido")
	}
	if c.ScopeAllowed("admin") {
		t.Error("admin no está en la lista")
	}
}
