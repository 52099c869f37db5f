// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// Voting phase constants
const (
	PhaseOpen   = "open"
	PhaseClosed = "closed"
)

// DayLayout is the calendar-date layout used for day keys
const DayLayout = "2006-01-02"

// Request types

type ProposeCandidateRequest struct {
	Name    string `json:"name"`
	MenuURL string `json:"menu_url"`
}

type SwitchVoteRequest struct {
	CandidateID string `json:"candidate_id"`
}

// Price is a decimal amount in the team currency (e.g. 7.50)
type SubmitOrderRequest struct {
	DishName string  `json:"dish_name"`
	Price    float64 `json:"price"`
}

type CloseOrdersRequest struct {
	DeliveryFee float64 `json:"delivery_fee"`
}

type SaveProfileRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
}

// Response types

type StatusResponse struct {
	Day        string     `json:"day"`
	Phase      string     `json:"phase"`
	Deadline   time.Time  `json:"deadline"`
	TimeLeft   string     `json:"time_left"`
	ClosesIn   string     `json:"closes_in"`
	Winner     *Candidate `json:"winner,omitempty"`
	Now        time.Time  `json:"now"`
	NextChange time.Time  `json:"next_change"`
}

type CandidateListResponse struct {
	Day        string           `json:"day"`
	Phase      string           `json:"phase"`
	Candidates []CandidateTally `json:"candidates"`
	MyVotes    []string         `json:"my_votes"`
	TotalVotes int              `json:"total_votes"`
}

type VoteResponse struct {
	CandidateID string `json:"candidate_id"`
	Applied     bool   `json:"applied"`
	Message     string `json:"message"`
}

type WinnerResponse struct {
	Day    string     `json:"day"`
	Winner *Candidate `json:"winner"`
	Votes  int        `json:"votes"`
}

type SubmitOrderResponse struct {
	Order   Order  `json:"order"`
	Created bool   `json:"created"`
	Message string `json:"message"`
}

type TogglePaidResponse struct {
	OrderID string `json:"order_id"`
	Paid    bool   `json:"paid"`
}

type MeResponse struct {
	UserID      string   `json:"user_id"`
	DisplayName string   `json:"display_name"`
	Profile     *Profile `json:"profile,omitempty"`
}

// Domain types

type Candidate struct {
	ID         string    `json:"id" bson:"_id"`
	Name       string    `json:"name" bson:"name"`
	MenuURL    string    `json:"menu_url" bson:"menu_url"`
	ProposerID string    `json:"proposer_id" bson:"proposer_id"`
	Day        string    `json:"day" bson:"day"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

type CandidateTally struct {
	Candidate
	Votes int `json:"votes"`
}

// DirectoryEntry is a restaurant remembered for autocomplete
type DirectoryEntry struct {
	ID      string `json:"id" bson:"_id"`
	Name    string `json:"name" bson:"name"`
	MenuURL string `json:"menu_url" bson:"menu_url"`
}

type Vote struct {
	ID          string    `json:"id" bson:"_id"`
	VoterID     string    `json:"voter_id" bson:"voter_id"`
	CandidateID string    `json:"candidate_id" bson:"candidate_id"`
	Day         string    `json:"day" bson:"day"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

type Order struct {
	ID             string    `json:"id" bson:"_id"`
	UserID         string    `json:"user_id" bson:"user_id"`
	RestaurantID   string    `json:"restaurant_id" bson:"restaurant_id"`
	RestaurantName string    `json:"restaurant_name" bson:"restaurant_name"`
	DishName       string    `json:"dish_name" bson:"dish_name"`
	PriceCents     int64     `json:"price_cents" bson:"price_cents"`
	Day            string    `json:"day" bson:"day"`
	Paid           bool      `json:"paid" bson:"paid"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`

	// Filled from the day's Closure on read, never stored on the order
	Closed           bool   `json:"closed" bson:"-"`
	DeliveryFeeCents *int64 `json:"delivery_fee_cents,omitempty" bson:"-"`
}

// Closure freezes the orders of one restaurant on one day
type Closure struct {
	Day              string    `json:"day" bson:"day"`
	RestaurantID     string    `json:"restaurant_id" bson:"restaurant_id"`
	DeliveryFeeCents int64     `json:"delivery_fee_cents" bson:"delivery_fee_cents"`
	ClosedBy         string    `json:"closed_by" bson:"closed_by"`
	OrdererID        string    `json:"orderer_id" bson:"orderer_id"`
	ClosedAt         time.Time `json:"closed_at" bson:"closed_at"`
}

type Profile struct {
	UserID      string    `json:"user_id" bson:"_id"`
	FirstName   string    `json:"first_name" bson:"first_name"`
	LastName    string    `json:"last_name" bson:"last_name"`
	PhoneNumber string    `json:"phone_number" bson:"phone_number"`
	IsAdmin     bool      `json:"is_admin" bson:"is_admin"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// Bill is what one participant owes the orderer
type Bill struct {
	UserID             string `json:"user_id"`
	OwnDishCents       int64  `json:"own_dish_cents"`
	DeliveryShareCents int64  `json:"delivery_share_cents"`
	TotalCents         int64  `json:"total_cents"`
	Total              string `json:"total"`
}

type Participant struct {
	Order   Order    `json:"order"`
	Profile *Profile `json:"profile,omitempty"`
	Bill    Bill     `json:"bill"`
}

type OrderSummary struct {
	Day              string        `json:"day"`
	Restaurant       *Candidate    `json:"restaurant"`
	Participants     []Participant `json:"participants"`
	Closed           bool          `json:"closed"`
	DeliveryFeeCents *int64        `json:"delivery_fee_cents,omitempty"`
	TotalCents       int64         `json:"total_cents"`
	Total            string        `json:"total"`
	MyOrder          *Order        `json:"my_order,omitempty"`
	MyBill           *Bill         `json:"my_bill,omitempty"`
	IsOrderer        bool          `json:"is_orderer"`
	CanClose         bool          `json:"can_close"`
	// Orderer is who places the order and collects payment
	Orderer *Profile `json:"orderer,omitempty"`
}

type OrderHistory struct {
	WeekStart  string  `json:"week_start"`
	WeekEnd    string  `json:"week_end"`
	Orders     []Order `json:"orders"`
	TotalCents int64   `json:"total_cents"`
	Total      string  `json:"total"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// MaxAmountCents caps any single price or fee (100,000.00)
const MaxAmountCents int64 = 10_000_000

// ToCents converts a decimal amount to cents, rounding half away from zero.
// Amounts beyond the cap come back as MaxAmountCents+1 (or its negative) so
// callers can reject them.
func ToCents(amount float64) int64 {
	cents := math.Round(amount * 100)
	switch {
	case math.IsNaN(cents):
		return MaxAmountCents + 1
	case cents > float64(MaxAmountCents):
		return MaxAmountCents + 1
	case cents < -float64(MaxAmountCents):
		return -(MaxAmountCents + 1)
	}
	return int64(cents)
}

// FormatCents renders cents as a decimal amount with two places, e.g. "1,234.50"
func FormatCents(cents int64) string {
	return humanize.FormatFloat("#,###.##", float64(cents)/100)
}
