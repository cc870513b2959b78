// Package config assembles the runtime configuration for acfileserver.
//
// Configuration comes from three layers, later layers winning:
//
//  1. Built-in defaults (DefaultPort, DefaultFilesDir, ...).
//  2. An optional acfileserver.jsonc settings file. The file format is
//     JSONC (JSON with Comments), parsed with github.com/tidwall/jsonc.
//  3. A .env file plus the process environment, loaded with
//     github.com/joho/godotenv. Variables already present in the process
//     environment are never overridden by the .env file.
//
// Admin credentials (ADMIN_USERNAME / ADMIN_PASSWORD) fall back to
// "admin" / "password" when unset. The admin panel route (ADMIN_ROUTE) is
// generated fresh as a random 16-character alphanumeric token for every
// process when unset, so the panel URL is unguessable unless pinned.
package config
