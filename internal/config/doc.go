// Package config loads service configuration.
//
// # Sources
//
// Values are resolved in this order, later sources winning:
//
//	1. Built-in defaults (Default)
//	2. YAML file named by WASTE_CONFIG_FILE, else config.yaml or configs/config.yaml
//	3. Environment variables with the WASTE_ prefix, after loading .env if present
//
// # Environment Variables
//
//	WASTE_SERVER_PORT=8080
//	WASTE_DATA_SOURCE=data.xlsx
//	WASTE_DATA_SHEET=Zvozy
//	WASTE_DATA_IDENTIFIER_COLUMN="Číslo čipu"
//	WASTE_DATA_DATE_COLUMN="Dátum zvozu"
//	WASTE_DATA_MASS_COLUMN="Počet kg odpadu"
//	WASTE_DATA_PRICE_PER_KG=0.25
//	WASTE_SECURITY_ADMIN_KEY=...      (ADMIN_KEY is accepted as a fallback)
//	WASTE_LOGGING_LEVEL=debug
//
// An empty admin key disables the cache invalidation endpoint.
package config
