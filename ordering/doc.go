// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package ordering collects the afternoon's orders for the winning
// restaurant, closes them with a delivery fee, and splits the fee into bills.
package ordering
