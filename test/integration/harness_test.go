//go:build integration

package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/aevon-lab/pulse/internal/core/storage/postgres"
	"github.com/aevon-lab/pulse/internal/geo"
	"github.com/aevon-lab/pulse/internal/ingestion"
	"github.com/aevon-lab/pulse/internal/migrations"
	"github.com/aevon-lab/pulse/internal/projection"
	"github.com/aevon-lab/pulse/internal/server"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type integrationHarness struct {
	baseURL    string
	client     *http.Client
	db         *sql.DB
	cancel     context.CancelFunc
	serverDone chan error
	adapter    *postgres.Adapter
}

func (h *integrationHarness) close(t *testing.T) {
	t.Helper()

	h.cancel()
	select {
	case <-h.serverDone:
	case <-time.After(5 * time.Second):
		t.Log("server shutdown timed out")
	}

	require.NoError(t, h.adapter.Close())
}

func startHarness(t *testing.T) *integrationHarness {
	t.Helper()

	dsn := testDSN(t)

	adapter, err := postgres.NewAdapter(dsn, postgres.PoolOptions{MaxOpenConns: 10, MaxIdleConns: 10})
	require.NoError(t, err)
	require.NoError(t, migrations.RunMigrations(adapter.DB(), true))
	require.NoError(t, adapter.Prepare(context.Background()))

	geocoder := geo.NewNominatimClient(geo.NominatimConfig{
		URL:       fakeNominatim(t).URL,
		Timeout:   2 * time.Second,
		UserAgent: "pulse-integration",
	}, nil)

	ingestionSvc := ingestion.NewService(adapter, geocoder, nil, 1)
	projectionSvc := projection.NewService(postgres.NewAggregateAdapter(adapter.DB()), nil)

	addr := fmt.Sprintf("127.0.0.1:%d", freePort(t))
	httpServer := server.New(server.Options{Addr: addr, Mode: "release"}, adapter, nil)
	ingestionSvc.RegisterRoutes(httpServer.Engine)
	projectionSvc.RegisterRoutes(httpServer.Engine)

	ctx, cancel := context.WithCancel(context.Background())
	serverDone := make(chan error, 1)
	go func() { serverDone <- httpServer.Run(ctx) }()

	baseURL := "http://" + addr
	waitForHealthy(t, baseURL)

	return &integrationHarness{
		baseURL:    baseURL,
		client:     &http.Client{Timeout: 5 * time.Second},
		db:         adapter.DB(),
		cancel:     cancel,
		serverDone: serverDone,
		adapter:    adapter,
	}
}

// testDSN returns PULSE_TEST_DSN when set, otherwise starts a throwaway Postgres container.
func testDSN(t *testing.T) string {
	t.Helper()

	if dsn := os.Getenv("PULSE_TEST_DSN"); dsn != "" {
		return dsn
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("pulse_test"),
		tcpostgres.WithUsername("pulse"),
		tcpostgres.WithPassword("pulse_test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Skipf("Failed to start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := container.Terminate(cleanupCtx); err != nil {
			t.Errorf("Failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

// fakeNominatim resolves points south of -20 and west of -55 to Argentina and the rest to Brazil.
func fakeNominatim(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lat, _ := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
		lon, _ := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
		country := "Brazil"
		if lat < -20 && lon < -55 {
			country = "Argentina"
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"address": map[string]string{"country": country},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func resetDatabase(t *testing.T, db *sql.DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := db.ExecContext(ctx, `TRUNCATE TABLE metrics RESTART IDENTITY`)
	require.NoError(t, err)
}

func waitForHealthy(t *testing.T, baseURL string) {
	t.Helper()

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/health")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Fatalf("server did not become healthy at %s", baseURL)
}

func postJSON(t *testing.T, client *http.Client, endpoint string, payload interface{}) (int, []byte) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, respBody
}

func getJSON(t *testing.T, client *http.Client, endpoint string) (int, []byte) {
	t.Helper()

	resp, err := client.Get(endpoint)
	require.NoError(t, err)
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, respBody
}

func freePort(t *testing.T) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}
