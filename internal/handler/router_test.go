package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/careloop/voicebridge/internal/config"
	"github.com/careloop/voicebridge/internal/model/persona"
	relayService "github.com/careloop/voicebridge/internal/service/relay"
)

func TestHealthReportsRealtimeConfiguration(t *testing.T) {
	store := persona.NewMemoryStore(persona.Seed())
	svc := relayService.NewService(config.RealtimeConfig{APIKey: "sk-test"}, store)
	router := NewRouter(store, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode health payload: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected status: %v", body["status"])
	}
	if body["realtime"] != true {
		t.Fatalf("expected realtime true, got %v", body["realtime"])
	}
}

func TestHealthWithoutCredential(t *testing.T) {
	store := persona.NewMemoryStore(persona.Seed())
	svc := relayService.NewService(config.RealtimeConfig{}, store)
	router := NewRouter(store, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode health payload: %v", err)
	}
	if body["realtime"] != false {
		t.Fatalf("expected realtime false, got %v", body["realtime"])
	}
}

func TestUnknownRouteReturnsJSONError(t *testing.T) {
	store := persona.NewMemoryStore(persona.Seed())
	svc := relayService.NewService(config.RealtimeConfig{}, store)
	router := NewRouter(store, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/no-such-route", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	if body["error"] != "not found" {
		t.Fatalf("unexpected error body: %v", body)
	}
}

func TestMethodNotAllowedReturnsJSONError(t *testing.T) {
	store := persona.NewMemoryStore(persona.Seed())
	svc := relayService.NewService(config.RealtimeConfig{}, store)
	router := NewRouter(store, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/personas", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	if body["error"] != "method not allowed" {
		t.Fatalf("unexpected error body: %v", body)
	}
}

func TestPersonasRoute(t *testing.T) {
	store := persona.NewMemoryStore(persona.Seed())
	svc := relayService.NewService(config.RealtimeConfig{}, store)
	router := NewRouter(store, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/personas", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}
