// Package config provides centralized configuration management for salesreport.
// It loads configuration from multiple sources, validates it, and exposes a
// type-safe API to the rest of the application.
//
// # Configuration Sources
//
// Configuration is resolved from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern SALES_<SECTION>_<FIELD>:
//
//	SALES_LOGGING_LEVEL=debug
//	SALES_LOGGING_FORMAT=json
//	SALES_INPUT_DELIMITER=;
//	SALES_REPORT_CURRENCY_SYMBOL=€
//	SALES_EXPORT_FORMATS=csv,xlsx
//	SALES_TELEMETRY_METRICS_FILE=/var/lib/node_exporter/salesreport.prom
//
// # Configuration File
//
// When no path is given, Load looks for salesreport.yaml in the working
// directory and then in configs/. A missing file is not an error; a file
// that was named explicitly must exist.
//
//	logging:
//	  level: info
//	  format: text
//	export:
//	  dir: out
//	  formats: [csv, xlsx]
//
// # Validation
//
// Struct constraints are enforced with go-playground/validator; the input
// delimiter and report locale are checked by hand. Every failure is returned
// as an ErrTypeConfig application error.
package config
