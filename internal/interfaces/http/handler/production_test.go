package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appproduction "github.com/stockpilot/backend/internal/application/production"
	"github.com/stockpilot/backend/internal/interfaces/http/dto"
)

func createOrder(t *testing.T, srv *testServer, orderNumber string) *appproduction.OrderResponse {
	t.Helper()

	w := srv.do(t, "POST", "/api/v1/production-orders", srv.editorToken, appproduction.CreateOrderRequest{
		OrderNumber: orderNumber,
		Factory:     "Shenzhen Plant",
		Destination: "Warehouse A",
		Items: []appproduction.ItemRequest{
			{SKU: "SKU-1", Quantity: 200},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp appproduction.OrderResponse
	decodeData(t, w, &resp)
	return &resp
}

func TestProductionOrderLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	created := createOrder(t, srv, "PO-1001")
	assert.Equal(t, "in_production", created.Status)

	base := "/api/v1/production-orders/" + created.ID.String()

	w := srv.do(t, "POST", base+"/deliveries", srv.editorToken, appproduction.DeliveryRequest{
		Deltas: map[string]int{"SKU-1": 80},
		Note:   "first batch",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var partial appproduction.OrderResponse
	decodeData(t, w, &partial)
	assert.Equal(t, "partial", partial.Status)
	assert.Equal(t, 120, partial.Items[0].Remaining)

	w = srv.do(t, "POST", base+"/deliveries", srv.editorToken, appproduction.DeliveryRequest{
		Deltas: map[string]int{"SKU-1": 120},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var completed appproduction.OrderResponse
	decodeData(t, w, &completed)
	assert.Equal(t, "completed", completed.Status)

	w = srv.do(t, "GET", base+"/activity", srv.viewerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var activity []appproduction.ActivityResponse
	decodeData(t, w, &activity)
	require.Len(t, activity, 3)
	assert.Equal(t, "created", activity[0].Action)
	assert.Equal(t, "delivery", activity[1].Action)
	assert.Equal(t, "edith", activity[1].Actor)
}

func TestProductionOrderCancel(t *testing.T) {
	srv := newTestServer(t)

	created := createOrder(t, srv, "PO-2001")
	base := "/api/v1/production-orders/" + created.ID.String()

	w := srv.do(t, "POST", base+"/cancel", srv.editorToken, appproduction.CancelOrderRequest{
		Reason: "factory closed",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var cancelled appproduction.OrderResponse
	decodeData(t, w, &cancelled)
	assert.Equal(t, "cancelled", cancelled.Status)

	w = srv.do(t, "POST", base+"/deliveries", srv.editorToken, appproduction.DeliveryRequest{
		Deltas: map[string]int{"SKU-1": 10},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidState, errorCode(t, w))
}

func TestProductionOrderListAndRoles(t *testing.T) {
	srv := newTestServer(t)

	createOrder(t, srv, "PO-3001")
	createOrder(t, srv, "PO-3002")

	w := srv.do(t, "GET", "/api/v1/production-orders?factory=Shenzhen+Plant", srv.viewerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var orders []appproduction.OrderResponse
	decodeData(t, w, &orders)
	assert.Len(t, orders, 2)

	w = srv.do(t, "POST", "/api/v1/production-orders", srv.viewerToken, appproduction.CreateOrderRequest{
		OrderNumber: "PO-3003",
		Factory:     "Shenzhen Plant",
		Destination: "Warehouse A",
		Items:       []appproduction.ItemRequest{{SKU: "SKU-1", Quantity: 1}},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
