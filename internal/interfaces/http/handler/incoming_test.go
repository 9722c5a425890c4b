package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apptransfer "github.com/stockpilot/backend/internal/application/transfer"
	"github.com/stockpilot/backend/internal/domain/incoming"
)

func TestIncomingProjectionOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	w := srv.do(t, "GET", "/api/v1/incoming", srv.viewerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var empty incoming.Cache
	decodeData(t, w, &empty)
	assert.Empty(t, empty.Destinations)

	created := createTransfer(t, srv, "sea")
	w = srv.do(t, "POST", "/api/v1/transfers/"+created.ID.String()+"/dispatch", srv.editorToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = srv.do(t, "GET", "/api/v1/incoming", srv.viewerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cache incoming.Cache
	decodeData(t, w, &cache)
	require.Contains(t, cache.Destinations, "Warehouse B")
	sku := cache.Destinations["Warehouse B"]["SKU-1"]
	require.NotNil(t, sku)
	assert.Equal(t, 100, sku.InboundSea)
	assert.Zero(t, sku.InboundAir)
	require.Len(t, sku.SeaTransfers, 1)
	assert.Equal(t, created.ID, sku.SeaTransfers[0].TransferID)
}

func TestIncomingRebuildOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	created := createTransfer(t, srv, "air_express")
	w := srv.do(t, "POST", "/api/v1/transfers/"+created.ID.String()+"/dispatch", srv.editorToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = srv.do(t, "POST", "/api/v1/transfers/"+created.ID.String()+"/deliveries", srv.editorToken, apptransfer.DeliveryRequest{
		Deltas: map[string]int{"SKU-1": 30},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = srv.do(t, "POST", "/api/v1/incoming/rebuild", srv.editorToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var rebuilt incoming.Cache
	decodeData(t, w, &rebuilt)
	sku := rebuilt.Destinations["Warehouse B"]["SKU-1"]
	require.NotNil(t, sku)
	assert.Equal(t, 70, sku.InboundAir)

	w = srv.do(t, "POST", "/api/v1/incoming/rebuild", srv.viewerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
