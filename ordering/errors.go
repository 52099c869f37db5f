// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ordering

import (
	"errors"

	"github.com/danielhkuo/lunchpick/voting"
)

var (
	// ErrVotingOpen is shared with the voting engine so callers can match either
	ErrVotingOpen = voting.ErrVotingOpen

	ErrNoWinner      = errors.New("no restaurant won today's vote")
	ErrInvalidOrder  = errors.New("dish name is required and price must be between 0 and 100,000")
	ErrOrdersClosed  = errors.New("orders are closed for today")
	ErrOrdersOpen    = errors.New("orders are still open")
	ErrNegativeFee   = errors.New("delivery fee must not be negative")
	ErrFeeTooLarge   = errors.New("delivery fee must not exceed 100,000")
	ErrForbidden     = errors.New("only the orderer or an admin may do this")
	ErrOrderNotFound = errors.New("order not found")
)
