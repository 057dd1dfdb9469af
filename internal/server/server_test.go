package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"govline/internal/config"
	"govline/internal/db"
	"govline/internal/domain"
	"govline/internal/engine"
	"govline/internal/migrate"
	"govline/internal/record"
	"govline/internal/workflow"
)

type testServer struct {
	URL    string
	Engine engine.Engine
	client *http.Client
	close  func()
}

func (s *testServer) Client() *http.Client { return s.client }

func newTestServer(t *testing.T, auth AuthConfig) *testServer {
	t.Helper()
	workspace := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	flow, err := workflow.FromPreset("default")
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	e := engine.New(conn, config.Default("govline"), flow)
	handler, err := New(Config{Engine: e, BasePath: "/v0", Auth: auth})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	ts := &testServer{
		URL:    "http://" + ln.Addr().String(),
		Engine: e,
		client: &http.Client{},
		close: func() {
			srv.Shutdown(context.Background())
			ln.Close()
			conn.Close()
		},
	}
	t.Cleanup(ts.close)
	return ts
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
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
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, data
}

func registerSigner(t *testing.T, e engine.Engine, id string, roles ...string) record.KeySigner {
	t.Helper()
	pub, priv, err := record.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	_, err = e.CreateActor(context.Background(), domain.Actor{
		ID:        id,
		Type:      domain.ActorHuman,
		PublicKey: record.EncodePublicKey(pub),
		Roles:     roles,
	})
	if err != nil {
		t.Fatalf("create actor: %v", err)
	}
	return record.KeySigner{ID: id, Priv: priv}
}

func localHeaders(actorID string) map[string]string {
	return map[string]string{"X-Actor-Id": actorID}
}

func TestHealthSkipsAuth(t *testing.T) {
	srv := newTestServer(t, AuthConfig{JWTSecret: "secret"})
	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/health", nil, nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("health status %d: %s", res.StatusCode, string(data))
	}
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t, AuthConfig{JWTSecret: "secret"})
	res, _ := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/tasks", nil, nil)
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", res.StatusCode)
	}

	res, _ = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/tasks", nil, map[string]string{
		"Authorization": "Bearer not-a-token",
	})
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad token status %d, want 401", res.StatusCode)
	}
}

func TestJWTAuth(t *testing.T) {
	srv := newTestServer(t, AuthConfig{JWTSecret: "secret"})
	registerSigner(t, srv.Engine, "human:ana", "author")

	claims := jwt.RegisteredClaims{
		Subject:   "human:ana",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/tasks", map[string]any{
		"title": "Ship login flow",
	}, map[string]string{"Authorization": "Bearer " + token})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d: %s", res.StatusCode, string(data))
	}
}

func TestAPIKeyAuth(t *testing.T) {
	srv := newTestServer(t, AuthConfig{JWTSecret: "secret"})
	registerSigner(t, srv.Engine, "agent:bot", "author")
	plaintext, _, err := srv.Engine.CreateAPIKey(context.Background(), "agent:bot", "ci")
	if err != nil {
		t.Fatalf("create api key: %v", err)
	}

	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/tasks", map[string]any{
		"title": "Rotate credentials",
	}, map[string]string{"X-Api-Key": plaintext})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d: %s", res.StatusCode, string(data))
	}
	res, _ = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/tasks", nil, map[string]string{
		"X-Api-Key": "gvk_wrong",
	})
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong key status %d, want 401", res.StatusCode)
	}
}

func TestSignatureFlow(t *testing.T) {
	srv := newTestServer(t, AuthConfig{Disabled: true})
	ctx := context.Background()
	author := registerSigner(t, srv.Engine, "human:ana", "author")
	outsider := registerSigner(t, srv.Engine, "human:mallory", "viewer")

	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/tasks", map[string]any{
		"title": "Ship login flow",
	}, localHeaders(author.ID))
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d: %s", res.StatusCode, string(data))
	}
	var created TaskResponse
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatalf("unmarshal task: %v", err)
	}

	res, data = doJSON(t, srv.Client(), http.MethodGet,
		srv.URL+"/v0/tasks/"+created.ID+"/eligibility?actor_id="+author.ID+"&role=submitter&command=gv+task+submit", nil, localHeaders(author.ID))
	if res.StatusCode != http.StatusOK {
		t.Fatalf("eligibility status %d: %s", res.StatusCode, string(data))
	}
	var elig EligibilityResponse
	if err := json.Unmarshal(data, &elig); err != nil {
		t.Fatal(err)
	}
	if !elig.Eligible || elig.TransitionTo != "review" {
		t.Fatalf("eligibility = %+v", elig)
	}

	// The signature covers the task's current checksum.
	task, err := srv.Engine.Repo.GetTask(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	checksum, err := record.Checksum(task)
	if err != nil {
		t.Fatal(err)
	}
	sig := author.Sign("submitter", checksum, time.Now())
	res, data = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/tasks/"+created.ID+"/signatures", map[string]any{
		"command":   "gv task submit",
		"key_id":    sig.KeyID,
		"role":      sig.Role,
		"digest":    sig.Digest,
		"signature": sig.Signature,
		"signed_at": sig.SignedAt,
	}, localHeaders(author.ID))
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("sign status %d: %s", res.StatusCode, string(data))
	}
	var signed SubmitSignatureResponse
	if err := json.Unmarshal(data, &signed); err != nil {
		t.Fatal(err)
	}
	if !signed.Transferred || signed.Task.Status != "review" {
		t.Fatalf("after sign: %+v", signed)
	}

	// An actor outside the capability set is rejected with 403.
	task, _ = srv.Engine.Repo.GetTask(ctx, created.ID)
	checksum, _ = record.Checksum(task)
	bad := outsider.Sign("approver", checksum, time.Now())
	res, data = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/tasks/"+created.ID+"/signatures", map[string]any{
		"command":   "gv task approve",
		"key_id":    bad.KeyID,
		"role":      bad.Role,
		"digest":    bad.Digest,
		"signature": bad.Signature,
		"signed_at": bad.SignedAt,
	}, localHeaders(outsider.ID))
	if res.StatusCode != http.StatusForbidden {
		t.Fatalf("ineligible status %d: %s", res.StatusCode, string(data))
	}
}

func TestRunCommandReportsQuorumEnvelope(t *testing.T) {
	srv := newTestServer(t, AuthConfig{Disabled: true})
	author := registerSigner(t, srv.Engine, "human:ana", "author")

	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/tasks", map[string]any{
		"title": "Ship login flow",
	}, localHeaders(author.ID))
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d: %s", res.StatusCode, string(data))
	}
	var created TaskResponse
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatal(err)
	}

	res, data = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/tasks/"+created.ID+"/commands", map[string]any{
		"command": "gv task submit",
	}, localHeaders(author.ID))
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, want 422: %s", res.StatusCode, string(data))
	}
	var envelope struct {
		Error apiErrorBody `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		t.Fatal(err)
	}
	if envelope.Error.Code != "quorum_not_met" {
		t.Fatalf("error code = %s, want quorum_not_met", envelope.Error.Code)
	}
}

func TestMethodologyEndpoints(t *testing.T) {
	srv := newTestServer(t, AuthConfig{Disabled: true})
	headers := localHeaders("human:ana")

	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/methodology", nil, headers)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("methodology status %d: %s", res.StatusCode, string(data))
	}
	var model struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &model); err != nil {
		t.Fatal(err)
	}
	if model.Name != "default" {
		t.Fatalf("methodology name = %s", model.Name)
	}

	res, _ = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/methodology/transitions?from=draft&to=review", nil, headers)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("resolve status %d", res.StatusCode)
	}
	res, _ = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/methodology/transitions?from=archived&to=draft", nil, headers)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("unresolvable status %d, want 404", res.StatusCode)
	}

	res, data = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/methodology/validate",
		map[string]any{"version": "not-semver", "name": "x", "state_transitions": map[string]any{}}, headers)
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("validate status %d: %s", res.StatusCode, string(data))
	}
}

func TestBoardEndpoint(t *testing.T) {
	srv := newTestServer(t, AuthConfig{Disabled: true})
	author := registerSigner(t, srv.Engine, "human:ana", "author")
	headers := localHeaders(author.ID)

	if _, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/tasks", map[string]any{"title": "One"}, headers); data == nil {
		t.Fatal("create failed")
	}
	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/board/default", nil, headers)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("board status %d: %s", res.StatusCode, string(data))
	}
	var board BoardResponse
	if err := json.Unmarshal(data, &board); err != nil {
		t.Fatal(err)
	}
	if len(board.Columns) != 4 {
		t.Fatalf("columns = %d, want 4", len(board.Columns))
	}

	res, _ = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/board/nope", nil, headers)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown view status %d, want 404", res.StatusCode)
	}
}

func TestExecutionsAndExport(t *testing.T) {
	srv := newTestServer(t, AuthConfig{Disabled: true})
	author := registerSigner(t, srv.Engine, "human:ana", "author")
	headers := localHeaders(author.ID)

	res, data := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/tasks", map[string]any{
		"title": "Tune cache eviction",
	}, headers)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d: %s", res.StatusCode, string(data))
	}
	var created TaskResponse
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatal(err)
	}

	res, data = doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/v0/tasks/"+created.ID+"/executions", map[string]any{
		"type":   "progress",
		"result": "benchmarked lru vs arc",
	}, headers)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("execution status %d: %s", res.StatusCode, string(data))
	}

	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/tasks/"+created.ID+"/executions", nil, headers)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list executions status %d: %s", res.StatusCode, string(data))
	}
	var execs []ExecutionResponse
	if err := json.Unmarshal(data, &execs); err != nil {
		t.Fatal(err)
	}
	if len(execs) != 1 || execs[0].Result != "benchmarked lru vs arc" {
		t.Fatalf("executions = %+v", execs)
	}

	res, data = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/tasks/"+created.ID+"/export", nil, headers)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("export status %d: %s", res.StatusCode, string(data))
	}
	var env record.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatal(err)
	}
	if env.Type != "task" || env.Checksum == "" {
		t.Fatalf("envelope = %+v", env)
	}

	res, _ = doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/v0/tasks/missing/export", nil, headers)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("export missing status %d, want 404", res.StatusCode)
	}
}
