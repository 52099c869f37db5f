// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/danielhkuo/lunchpick/middleware"
	"github.com/danielhkuo/lunchpick/models"
	"github.com/danielhkuo/lunchpick/ordering"
)

type OrderHandler struct {
	engine *ordering.Engine
}

func NewOrderHandler(engine *ordering.Engine) *OrderHandler {
	return &OrderHandler{engine: engine}
}

// GetSummary handles GET /orders
func (h *OrderHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	summary, err := h.engine.Summary(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, summary)
}

// SubmitOrder handles POST /orders
func (h *OrderHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.SubmitOrderRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	order, created, err := h.engine.SubmitOrder(r.Context(), user.ID, req.DishName, models.ToCents(req.Price))
	if err != nil {
		writeError(w, r, err)
		return
	}

	status, msg := http.StatusOK, "Order updated"
	if created {
		status, msg = http.StatusCreated, "Order placed"
	}
	middleware.JSONResponse(w, status, models.SubmitOrderResponse{
		Order:   order,
		Created: created,
		Message: msg,
	})
}

// CloseOrders handles POST /orders/close
func (h *OrderHandler) CloseOrders(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req models.CloseOrdersRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	closure, err := h.engine.CloseOrders(r.Context(), user.ID, models.ToCents(req.DeliveryFee))
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, closure)
}

// TogglePaid handles POST /orders/{id}/paid
func (h *OrderHandler) TogglePaid(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	orderID := r.PathValue("id")
	if orderID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "order id is required")
		return
	}

	paid, err := h.engine.TogglePaid(r.Context(), user.ID, orderID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.TogglePaidResponse{OrderID: orderID, Paid: paid})
}

// GetHistory handles GET /history?week=N where N is 0 for this week, -1 for last week
func (h *OrderHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	week := 0
	if raw := r.URL.Query().Get("week"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n > 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "week must be 0 or a negative number")
			return
		}
		week = n
	}

	history, err := h.engine.History(r.Context(), user.ID, week)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, history)
}
