// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package voting runs the morning half of the day: proposing restaurants,
voting, and picking the winner.

Candidates and votes belong to one day key. Once the deadline passes, every
write fails with ErrVotingClosed and the winner is fixed: the candidate with
the most votes, ties going to the one proposed first.

Vote operations of the same voter are single-flight inside one process. A
call that arrives while another is running returns applied=false.
*/
package voting
