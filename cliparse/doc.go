// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - DatabaseURL: connection string (default: file:notetally.db)
  - SessionSalt: secret for session token hashing (required)
  - AdminUsername: login name granted admin rights (default: admin)
  - ExportConfidence: default export cut-off (default: 0.60)
  - MaxUploadBytes: XML upload limit (default: 50 MiB)
  - SessionTTL: session lifetime (default: 7 days)
  - LogLevel: slog level (default: info)

# CLI Flags

	-p, --port              Server port
	-d, --database-url      Database URL
	-t, --database-type     sqlite or postgres
	-c, --config            YAML config file
	--session-salt          Session token salt
	--admin-username        Admin login name
	--export-confidence     Export cut-off
	--max-upload-bytes      Upload limit
	--session-ttl           Session lifetime
	--log-level             Log level

# Environment Variables

	PORT, DATABASE_URL, DATABASE_TYPE, SESSION_SALT, ADMIN_USERNAME,
	EXPORT_CONFIDENCE, MAX_UPLOAD_BYTES, SESSION_TTL, LOG_LEVEL,
	NOTETALLY_CONFIG (path of the YAML file)

# Precedence

CLI flags take precedence over environment variables, which take
precedence over the YAML file, which takes precedence over defaults.

# Validation

ParseFlags returns an error if SESSION_SALT is missing, the database type
is unknown, or a numeric value is out of range.
*/
package cliparse
