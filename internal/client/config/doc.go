// Package config loads runtime configuration for the gigbook CLI.
//
// Sources, later ones overriding earlier ones:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. A .env file in the working directory and GIGBOOK_* environment
//     variables (GIGBOOK_BASE_URL, GIGBOOK_ENV, GIGBOOK_DEV_HOST,
//     GIGBOOK_DEV_PORT, GIGBOOK_HTTP_TIMEOUT, GIGBOOK_OFFLINE, GIGBOOK_ONLINE_CHECK_INTERVAL,
//     GIGBOOK_DATA_DIR, GIGBOOK_CREDENTIALS, GIGBOOK_KEYRING_SERVICE,
//     GIGBOOK_LOG_LEVEL).
//  4. Command-line flags.
//
// The JSON file uses timex.Duration, so http_timeout may be "15s" or
// integer nanoseconds:
//
//	{
//	  "environment": "development",
//	  "dev_port": 3000,
//	  "http_timeout": "10s",
//	  "credential_backend": "file"
//	}
package config
