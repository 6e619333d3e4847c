package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kirves-server/server/engine"
	"kirves-server/server/service"
	"kirves-server/server/store"
)

const identityHeader = "X-Player-Email"

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := service.New(store.NewMem(), time.Minute)
	srv := httptest.NewServer(Router(svc, HeaderIdentity{Header: identityHeader}))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, email string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if email != "" {
		req.Header.Set(identityHeader, email)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func TestHealth(t *testing.T) {
	srv := testServer(t)
	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("health check failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestIdentityRequired(t *testing.T) {
	srv := testServer(t)
	resp := do(t, http.MethodPost, srv.URL+"/api/kirves", "", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", resp.StatusCode)
	}
}

func TestCreateJoinAndAct(t *testing.T) {
	srv := testServer(t)

	var created engine.GameOut
	resp := do(t, http.MethodPost, srv.URL+"/api/kirves", "test1@example.com", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create: expected 200, got %d", resp.StatusCode)
	}
	decode(t, resp, &created)
	if created.ID == "" || created.Admin != "test1@example.com" {
		t.Fatalf("unexpected created game: %+v", created)
	}

	base := srv.URL + "/api/kirves/" + created.ID
	for _, email := range []string{"test2@example.com", "test3@example.com", "test4@example.com"} {
		resp := do(t, http.MethodPost, base+"/join", email, nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("join %s: expected 200, got %d", email, resp.StatusCode)
		}
	}

	// Duplicate join is the caller's error.
	resp = do(t, http.MethodPost, base+"/join", "test2@example.com", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate join: expected 400, got %d", resp.StatusCode)
	}

	// The newest joiner cuts; declining keeps the flow deterministic.
	var afterCut engine.GameOut
	resp = do(t, http.MethodPost, base+"/action", "test4@example.com",
		service.ActionIn{Action: engine.ActionCut, DeclineCut: true})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cut: expected 200, got %d", resp.StatusCode)
	}
	decode(t, resp, &afterCut)
	if afterCut.CanJoin {
		t.Fatalf("cut should close joining")
	}

	// Out-of-turn deal maps to 400.
	resp = do(t, http.MethodPost, base+"/action", "test2@example.com",
		service.ActionIn{Action: engine.ActionDeal})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("out-of-turn deal: expected 400, got %d", resp.StatusCode)
	}

	var afterDeal engine.GameOut
	resp = do(t, http.MethodPost, base+"/action", "test1@example.com",
		service.ActionIn{Action: engine.ActionDeal})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("deal: expected 200, got %d", resp.StatusCode)
	}
	decode(t, resp, &afterDeal)
	if len(afterDeal.MyCards) != engine.NumCardsPerPlayer {
		t.Fatalf("dealer should see 5 cards, got %d", len(afterDeal.MyCards))
	}

	// The view hides other hands but shows the viewer's own.
	var view engine.GameOut
	resp = do(t, http.MethodGet, base, "test3@example.com", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("view: expected 200, got %d", resp.StatusCode)
	}
	decode(t, resp, &view)
	if len(view.MyCards) != engine.NumCardsPerPlayer {
		t.Fatalf("viewer should see their own hand, got %d cards", len(view.MyCards))
	}

	// The deal opened hand 1 and initialized its log.
	resp = do(t, http.MethodGet, base+"/log/1", "test1@example.com", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("log: expected 200, got %d", resp.StatusCode)
	}
	var l service.ActionLog
	decode(t, resp, &l)
	if len(l.InitialState) == 0 || len(l.Items) == 0 {
		t.Fatalf("log missing content: %+v", l)
	}

	resp = do(t, http.MethodGet, base+"/log/7", "test1@example.com", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing log: expected 404, got %d", resp.StatusCode)
	}
}

func TestInactivateEndpoint(t *testing.T) {
	srv := testServer(t)

	var created engine.GameOut
	resp := do(t, http.MethodPost, srv.URL+"/api/kirves", "test1@example.com", nil)
	decode(t, resp, &created)
	base := srv.URL + "/api/kirves/" + created.ID

	resp = do(t, http.MethodDelete, base, "test2@example.com", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("non-admin delete: expected 403, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodDelete, base, "test1@example.com", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin delete: expected 200, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodGet, base, "test1@example.com", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("deleted game: expected 404, got %d", resp.StatusCode)
	}
}
