// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package profiles manages team member profiles: names, the 9-digit phone
// number the orderer is paid to, and the admin flag.
package profiles
