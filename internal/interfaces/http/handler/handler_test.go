package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	appdashboard "github.com/stockpilot/backend/internal/application/dashboard"
	appincoming "github.com/stockpilot/backend/internal/application/incoming"
	appinventory "github.com/stockpilot/backend/internal/application/inventory"
	appproduction "github.com/stockpilot/backend/internal/application/production"
	apptransfer "github.com/stockpilot/backend/internal/application/transfer"
	"github.com/stockpilot/backend/internal/domain/inventory"
	"github.com/stockpilot/backend/internal/infrastructure/auth"
	"github.com/stockpilot/backend/internal/infrastructure/cache"
	"github.com/stockpilot/backend/internal/infrastructure/config"
	"github.com/stockpilot/backend/internal/infrastructure/persistence"
	"github.com/stockpilot/backend/internal/infrastructure/storage"
	"github.com/stockpilot/backend/internal/interfaces/http/dto"
	"github.com/stockpilot/backend/internal/interfaces/http/middleware"
	"github.com/stockpilot/backend/internal/interfaces/http/router"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

const testPassword = "correct-horse"

// stubPlatform is a canned Shopify stand-in for handler tests
type stubPlatform struct {
	snapshot inventory.Snapshot
}

func (p *stubPlatform) FetchStockLevels(_ context.Context) (inventory.Snapshot, error) {
	return p.snapshot, nil
}

func (p *stubPlatform) UpdateStock(_ context.Context, _ string, updates []inventory.StockUpdate) (*inventory.SyncResult, error) {
	result := &inventory.SyncResult{
		TotalCount:   len(updates),
		SuccessCount: len(updates),
		SyncedAt:     time.Now(),
	}
	result.Finalize()
	return result, nil
}

type testServer struct {
	engine      *gin.Engine
	editorToken string
	viewerToken string
	docs        *storage.DocumentStore
}

// newTestServer wires the full HTTP surface over an in-memory store with
// one editor and one viewer account.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log := zap.NewNop()
	docs := storage.NewDocumentStore(storage.NewMemoryStore(), log)

	transferRepo := persistence.NewBlobTransferRepository(docs)
	productionRepo := persistence.NewBlobProductionRepository(docs)
	projection := appincoming.NewProjectionService(docs, log)

	platform := &stubPlatform{snapshot: inventory.Snapshot{
		"Warehouse A": {
			"SKU-1": {SKU: "SKU-1", Available: 500, OnHand: 500},
			"SKU-2": {SKU: "SKU-2", Available: 3, OnHand: 3},
		},
	}}
	inventorySvc := appinventory.NewService(docs, platform, cache.NewInMemoryDedupStore(), 5, time.Hour, log)
	transferSvc := apptransfer.NewService(transferRepo, projection, inventorySvc, false, log)
	productionSvc := appproduction.NewService(productionRepo, log)
	dashboardSvc := appdashboard.NewService(docs, log)

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	authenticator := auth.NewAuthenticator([]config.AuthUser{
		{Username: "edith", Email: "edith@example.com", PasswordHash: string(hash), Role: "editor"},
		{Username: "vic", Email: "vic@example.com", PasswordHash: string(hash), Role: "viewer"},
	})
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:          "handler-test-secret",
		TokenExpiration: time.Hour,
		Issuer:          "stockpilot-test",
	})

	engine := gin.New()
	systemHandler := NewSystemHandler("test")
	engine.GET("/health", systemHandler.Health)

	r := router.NewRouter(engine, router.WithMiddleware(middleware.JWTAuth(jwtService, log)))
	r.RegisterPublic(NewAuthHandler(authenticator, jwtService))
	r.Register(systemHandler).
		Register(NewTransferHandler(transferSvc)).
		Register(NewIncomingHandler(projection, transferRepo)).
		Register(NewProductionHandler(productionSvc)).
		Register(NewInventoryHandler(inventorySvc)).
		Register(NewDashboardHandler(dashboardSvc))
	r.Setup()

	editorToken, err := jwtService.GenerateToken("edith", "edith@example.com", "editor")
	require.NoError(t, err)
	viewerToken, err := jwtService.GenerateToken("vic", "vic@example.com", "viewer")
	require.NoError(t, err)

	return &testServer{
		engine:      engine,
		editorToken: editorToken.AccessToken,
		viewerToken: viewerToken.AccessToken,
		docs:        docs,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	env := decodeEnvelope(t, w)
	require.True(t, env.Success, "expected success envelope, got %s", w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := decodeEnvelope(t, w)
	require.False(t, env.Success, "expected error envelope, got %s", w.Body.String())
	require.NotNil(t, env.Error)
	return env.Error.Code
}
