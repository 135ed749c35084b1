//go:build integration

package router

// End-to-end flow against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"frota/internal/config"
	"frota/internal/dto"
	"frota/internal/handler"
	"frota/internal/infra"
	"frota/internal/middleware"
	"frota/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

type e2eEnv struct {
	server *httptest.Server
	rdb    *redis.Client
	token  string
}

func setupE2E(t *testing.T) *e2eEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:16-alpine",
		tcPostgres.WithDatabase("frota_test"),
		tcPostgres.WithUsername("frota"),
		tcPostgres.WithPassword("frota"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })
	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })
	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		ReportStoragePath:  t.TempDir(),
		MaxUploadMB:        5,
		RateLimitPerMinute: 1000,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	svcs := NewServices(cfg, db, worker.NewDispatcher(rdb), nil)
	_, err = svcs.Auth.SalvarOperador(ctx, dto.SalvarOperadorRequest{
		Username: "gestor", Nome: "Gestor E2E", Password: "senha-e2e-123", Rol: middleware.RolMaster,
	})
	require.NoError(t, err)

	r := New(cfg, svcs, middleware.NewRedisCounter(rdb, "rl-test"), handler.DatabaseCheck(db), handler.RedisCheck(rdb))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	env := &e2eEnv{server: srv, rdb: rdb}
	body, _ := json.Marshal(dto.LoginRequest{Username: "gestor", Password: "senha-e2e-123"})
	resp := env.do(t, http.MethodPost, "/v1/auth/login", bytes.NewBuffer(body), "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login dto.LoginResponse
	decodeJSON(t, resp, &login)
	env.token = login.AccessToken
	return env
}

func (e *e2eEnv) do(t *testing.T, method, path string, body *bytes.Buffer, contentType string) *http.Response {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req, err := http.NewRequest(method, e.server.URL+path, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func fleetUpload(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()
	files := map[string]string{
		"vehicles":      "id,placa,marca,modelo,status,tipo\nv1,ABC1D23,Fiat,Strada,DISPONÍVEL,Utilitário\n",
		"vehicle_uses":  "id,data_inicio,data_fim,utilizador,vehicle_id\nu1,2025-09-01 08:00:00,2025-09-01 10:00:00,ana@frota.com,v1\n",
		"maintenances":  "id,vehicle_id,data_manutencao,descricao,custo\nm1,v1,2025-08-10,Troca de óleo,\"350,00\"\n",
		"users":         "id,nome,email\nf1,Ana,ana@frota.com\n",
		"point_records": "id,created_at,tipo,utilizador,data,latitude,longitude\np1,,ENTRADA,ana@frota.com,2025-09-01 08:00:00,,\np2,,SAÍDA,ana@frota.com,2025-09-01 17:00:00,,\n",
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := mw.CreateFormFile(name, name+".csv")
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.WriteField("nome", "Setembro"))
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestE2E_ImportAndReports(t *testing.T) {
	env := setupE2E(t)

	resp := env.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	body, ct := fleetUpload(t)
	resp = env.do(t, http.MethodPost, "/v1/datasets", body, ct)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var imported dto.ImportResponse
	decodeJSON(t, resp, &imported)
	assert.EqualValues(t, 2, imported.Linhas.RegistrosPonto)

	base := "/v1/datasets/" + imported.ID

	resp = env.do(t, http.MethodGet, base+"/overview", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var overview map[string]any
	decodeJSON(t, resp, &overview)
	assert.Equal(t, "350", overview["total_maintenance_cost"])

	resp = env.do(t, http.MethodGet, base+"/hours?period_type=DAY", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var hoursReport map[string]any
	decodeJSON(t, resp, &hoursReport)
	assert.Equal(t, "9", hoursReport["total_hours"])

	resp = env.do(t, http.MethodGet, base+"/maintenances/vehicles/v1", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodDelete, base, nil, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = env.do(t, http.MethodGet, base+"/overview", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestE2E_SampleDatasetHasNoHours(t *testing.T) {
	env := setupE2E(t)

	resp := env.do(t, http.MethodPost, "/v1/datasets/sample", nil, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var imported dto.ImportResponse
	decodeJSON(t, resp, &imported)
	assert.Equal(t, "exemplo", imported.Origem)

	resp = env.do(t, http.MethodGet, "/v1/datasets/"+imported.ID+"/hours", nil, "")
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var unavailable map[string]any
	decodeJSON(t, resp, &unavailable)
	assert.Equal(t, "no_pairs", unavailable["reason"])

	resp = env.do(t, http.MethodGet, "/v1/datasets", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []dto.DatasetResponse
	decodeJSON(t, resp, &list)
	require.Len(t, list, 1)
	assert.EqualValues(t, imported.Linhas.Veiculos, list[0].Linhas.Veiculos)
}

func TestE2E_EmailHoursQueuesJob(t *testing.T) {
	env := setupE2E(t)

	body, ct := fleetUpload(t)
	resp := env.do(t, http.MethodPost, "/v1/datasets", body, ct)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var imported dto.ImportResponse
	decodeJSON(t, resp, &imported)

	req, _ := json.Marshal(dto.EmailHoursRequest{To: "rh@frota.com", PeriodType: "MONTH"})
	resp = env.do(t, http.MethodPost, "/v1/datasets/"+imported.ID+"/hours/email", bytes.NewBuffer(req), "application/json")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp.Body.Close()

	n, err := env.rdb.LLen(context.Background(), worker.QueueReportEmail).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
