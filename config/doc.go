// Package config loads client definitions with Viper.
//
// Files are searched for in ./cmd/<service>/, ./config/ and the working
// directory (clients.yml, then config.yml). A .env file found next to them is
// loaded into the environment first, and environment variables override
// file values:
//
//	cfg, err := config.LoadClients("orders")
//	entry, ok := cfg.Client("billing")
//	opts := entry.TransportOptions()
//
// CLIENTS_BILLING_BASE_URL overrides clients.billing.base_url.
package config
