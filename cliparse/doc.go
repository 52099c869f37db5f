// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

ParseFlags returns a Config with all server settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags

	-p          Server port
	-d          Database URL
	-t          Database type (sqlite, postgres, mongo)
	-db-name    MongoDB database name
	-jwt-secret Token signing secret
	-tz         Time zone for day boundaries
	-deadline   Voting deadline, HH:MM
	-env-file   Dotenv file (default .env)

# Environment Variables

	PORT             → -p (default 3318)
	DATABASE_URL     → -d (required)
	DATABASE_TYPE    → -t (default sqlite)
	DATABASE_NAME    → -db-name (default lunchpick)
	AUTH_JWT_SECRET  → -jwt-secret (required)
	TIMEZONE         → -tz (default Local)
	VOTING_DEADLINE  → -deadline (default 12:00)

CLI flags take precedence over environment variables, which take precedence
over the dotenv file.

ParseTokenFlags parses the arguments of the token subcommand.
*/
package cliparse
