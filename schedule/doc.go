// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package schedule models the daily voting window and runs hooks at its
// boundaries. Time always comes from a Clock so tests can drive it.
package schedule
