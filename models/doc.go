// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

Money is carried as integer cents (PriceCents, DeliveryFeeCents). Requests
accept decimal amounts, converted with ToCents, and responses add a
formatted string from FormatCents next to each cents total.

Day keys are calendar dates in the configured time zone, formatted with
DayLayout. Phase is PhaseOpen before the deadline and PhaseClosed after.

Candidate, Vote, DirectoryEntry, Order, Closure, and Profile carry both json
and bson tags so the same structs serve the HTTP API and the MongoDB store.
*/
package models
