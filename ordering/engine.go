// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ordering

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/danielhkuo/lunchpick/auth"
	"github.com/danielhkuo/lunchpick/db"
	"github.com/danielhkuo/lunchpick/models"
	"github.com/danielhkuo/lunchpick/schedule"
)

// WinnerSource yields the winning restaurant of the day containing now,
// once voting has closed at that instant
type WinnerSource interface {
	WinnerAt(ctx context.Context, now time.Time) (models.CandidateTally, bool, error)
}

// AdminChecker reports whether a user holds the admin flag
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// Engine handles orders against the day's winning restaurant
type Engine struct {
	store   db.Store
	clock   schedule.Clock
	window  schedule.Window
	winners WinnerSource
	admins  AdminChecker
	logger  *slog.Logger
}

func NewEngine(store db.Store, clock schedule.Clock, window schedule.Window, winners WinnerSource, admins AdminChecker, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:   store,
		clock:   clock,
		window:  window,
		winners: winners,
		admins:  admins,
		logger:  logger,
	}
}

// TodayWinner returns the restaurant orders go to today
func (e *Engine) TodayWinner(ctx context.Context) (models.Candidate, error) {
	return e.winnerAt(ctx, e.clock.Now())
}

func (e *Engine) winnerAt(ctx context.Context, now time.Time) (models.Candidate, error) {
	winner, ok, err := e.winners.WinnerAt(ctx, now)
	if err != nil {
		return models.Candidate{}, err
	}
	if !ok {
		return models.Candidate{}, ErrNoWinner
	}
	return winner.Candidate, nil
}

// closure returns the closing record of the day, or nil when still open
func (e *Engine) closure(ctx context.Context, day, restaurantID string) (*models.Closure, error) {
	c, err := e.store.GetClosure(ctx, day, restaurantID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load closure: %w", err)
	}
	return &c, nil
}

func applyClosure(o *models.Order, c *models.Closure) {
	if c == nil {
		return
	}
	fee := c.DeliveryFeeCents
	o.Closed = true
	o.DeliveryFeeCents = &fee
}

// SubmitOrder places or replaces the user's order for today's winner.
// The boolean reports whether a new order was created.
func (e *Engine) SubmitOrder(ctx context.Context, userID, dishName string, priceCents int64) (models.Order, bool, error) {
	dishName = strings.TrimSpace(dishName)
	if dishName == "" || priceCents < 0 || priceCents > models.MaxAmountCents {
		return models.Order{}, false, ErrInvalidOrder
	}

	now := e.clock.Now()
	day := e.window.DayKey(now)

	winner, err := e.winnerAt(ctx, now)
	if err != nil {
		return models.Order{}, false, err
	}

	closed, err := e.closure(ctx, day, winner.ID)
	if err != nil {
		return models.Order{}, false, err
	}
	if closed != nil {
		return models.Order{}, false, ErrOrdersClosed
	}

	candidate := models.Order{
		ID:             auth.NewID(),
		UserID:         userID,
		RestaurantID:   winner.ID,
		RestaurantName: winner.Name,
		DishName:       dishName,
		PriceCents:     priceCents,
		Day:            day,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	order, created, err := e.store.UpsertOrder(ctx, candidate)
	if errors.Is(err, db.ErrConflict) {
		// A concurrent first submission inserted the row; this pass updates it
		order, created, err = e.store.UpsertOrder(ctx, candidate)
	}
	if err != nil {
		return models.Order{}, false, fmt.Errorf("failed to save order: %w", err)
	}

	e.logger.Info("order submitted",
		"order_id", order.ID,
		"user_id", userID,
		"restaurant_id", winner.ID,
		"price_cents", priceCents,
		"created", created,
	)
	return order, created, nil
}

// canManage reports whether actorID is the orderer or an admin
func (e *Engine) canManage(ctx context.Context, actorID, ordererID string) (bool, error) {
	if actorID == ordererID {
		return true, nil
	}
	admin, err := e.admins.IsAdmin(ctx, actorID)
	if err != nil {
		return false, fmt.Errorf("failed to check admin flag: %w", err)
	}
	return admin, nil
}

// CloseOrders freezes today's orders and records the delivery fee.
// The winner's proposer becomes the orderer.
func (e *Engine) CloseOrders(ctx context.Context, closerID string, deliveryFeeCents int64) (models.Closure, error) {
	if deliveryFeeCents < 0 {
		return models.Closure{}, ErrNegativeFee
	}
	if deliveryFeeCents > models.MaxAmountCents {
		return models.Closure{}, ErrFeeTooLarge
	}

	now := e.clock.Now()
	winner, err := e.winnerAt(ctx, now)
	if err != nil {
		return models.Closure{}, err
	}

	allowed, err := e.canManage(ctx, closerID, winner.ProposerID)
	if err != nil {
		return models.Closure{}, err
	}
	if !allowed {
		return models.Closure{}, ErrForbidden
	}

	closure := models.Closure{
		Day:              e.window.DayKey(now),
		RestaurantID:     winner.ID,
		DeliveryFeeCents: deliveryFeeCents,
		ClosedBy:         closerID,
		OrdererID:        winner.ProposerID,
		ClosedAt:         now,
	}

	err = e.store.InsertClosure(ctx, closure)
	if errors.Is(err, db.ErrConflict) {
		return models.Closure{}, ErrOrdersClosed
	}
	if err != nil {
		return models.Closure{}, fmt.Errorf("failed to close orders: %w", err)
	}

	e.logger.Info("orders closed",
		"day", closure.Day,
		"restaurant_id", winner.ID,
		"delivery_fee_cents", deliveryFeeCents,
		"closed_by", closerID,
	)
	return closure, nil
}

// TogglePaid flips the paid flag of a closed order and returns the new value
func (e *Engine) TogglePaid(ctx context.Context, actorID, orderID string) (bool, error) {
	order, err := e.store.GetOrder(ctx, orderID)
	if errors.Is(err, db.ErrNotFound) {
		return false, ErrOrderNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to load order: %w", err)
	}

	closure, err := e.closure(ctx, order.Day, order.RestaurantID)
	if err != nil {
		return false, err
	}
	if closure == nil {
		return false, ErrOrdersOpen
	}

	allowed, err := e.canManage(ctx, actorID, closure.OrdererID)
	if err != nil {
		return false, err
	}
	if !allowed {
		return false, ErrForbidden
	}

	paid, err := e.store.TogglePaid(ctx, orderID, e.clock.Now())
	if errors.Is(err, db.ErrNotFound) {
		return false, ErrOrderNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to toggle paid flag: %w", err)
	}

	e.logger.Info("payment toggled", "order_id", orderID, "paid", paid, "actor_id", actorID)
	return paid, nil
}

// TodayOrders returns the orders for today's winner with closure fields filled
func (e *Engine) TodayOrders(ctx context.Context) (models.Candidate, []models.Order, *models.Closure, error) {
	return e.ordersAt(ctx, e.clock.Now())
}

func (e *Engine) ordersAt(ctx context.Context, now time.Time) (models.Candidate, []models.Order, *models.Closure, error) {
	winner, err := e.winnerAt(ctx, now)
	if err != nil {
		return models.Candidate{}, nil, nil, err
	}

	day := e.window.DayKey(now)
	orders, err := e.store.ListOrders(ctx, day, winner.ID)
	if err != nil {
		return models.Candidate{}, nil, nil, fmt.Errorf("failed to list orders: %w", err)
	}
	closure, err := e.closure(ctx, day, winner.ID)
	if err != nil {
		return models.Candidate{}, nil, nil, err
	}

	for i := range orders {
		applyClosure(&orders[i], closure)
	}
	return winner, orders, closure, nil
}

// Summary aggregates today's orders as seen by viewerID
func (e *Engine) Summary(ctx context.Context, viewerID string) (models.OrderSummary, error) {
	now := e.clock.Now()
	winner, orders, closure, err := e.ordersAt(ctx, now)
	if err != nil {
		return models.OrderSummary{}, err
	}

	profiles, err := e.store.ListProfiles(ctx)
	if err != nil {
		return models.OrderSummary{}, fmt.Errorf("failed to list profiles: %w", err)
	}
	byUser := make(map[string]models.Profile, len(profiles))
	for _, p := range profiles {
		byUser[p.UserID] = p
	}

	summary := models.OrderSummary{
		Day:          e.window.DayKey(now),
		Restaurant:   &winner,
		Participants: make([]models.Participant, 0, len(orders)),
		Closed:       closure != nil,
		IsOrderer:    viewerID == winner.ProposerID,
	}
	if closure != nil {
		fee := closure.DeliveryFeeCents
		summary.DeliveryFeeCents = &fee
	}
	if p, ok := byUser[winner.ProposerID]; ok {
		summary.Orderer = &p
	}

	for i, o := range orders {
		participant := models.Participant{Order: o, Bill: ComputeBill(o.UserID, orders)}
		if p, ok := byUser[o.UserID]; ok {
			participant.Profile = &p
		}
		summary.Participants = append(summary.Participants, participant)
		summary.TotalCents += o.PriceCents

		if o.UserID == viewerID {
			summary.MyOrder = &orders[i]
			bill := participant.Bill
			summary.MyBill = &bill
		}
	}
	summary.Total = models.FormatCents(summary.TotalCents)

	if closure == nil {
		allowed, err := e.canManage(ctx, viewerID, winner.ProposerID)
		if err != nil {
			return models.OrderSummary{}, err
		}
		summary.CanClose = allowed
	}

	return summary, nil
}

// History lists the user's orders in the Monday-Sunday week weekOffset weeks
// from today (0 = this week, -1 = last week), newest first.
func (e *Engine) History(ctx context.Context, userID string, weekOffset int) (models.OrderHistory, error) {
	from, to := e.window.WeekRange(e.clock.Now(), weekOffset)

	orders, err := e.store.ListOrdersByUser(ctx, userID, from, to)
	if err != nil {
		return models.OrderHistory{}, fmt.Errorf("failed to list order history: %w", err)
	}

	var total int64
	for i := range orders {
		closure, err := e.closure(ctx, orders[i].Day, orders[i].RestaurantID)
		if err != nil {
			return models.OrderHistory{}, err
		}
		applyClosure(&orders[i], closure)
		total += orders[i].PriceCents
	}

	return models.OrderHistory{
		WeekStart:  from,
		WeekEnd:    to,
		Orders:     orders,
		TotalCents: total,
		Total:      models.FormatCents(total),
	}, nil
}
