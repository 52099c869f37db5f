// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import "errors"

var (
	ErrMissingField       = errors.New("restaurant name and menu link are required")
	ErrVotingClosed       = errors.New("voting is closed for today")
	ErrVotingOpen         = errors.New("voting is still open")
	ErrInvalidPhone       = errors.New("a profile with a valid 9-digit phone number is required to propose")
	ErrDuplicateCandidate = errors.New("a restaurant with this menu link is already proposed today")
	ErrCandidateNotFound  = errors.New("candidate not found")
)
