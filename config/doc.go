// Package config provides ImageFlow configuration management.
//
// Configuration is assembled from defaults, an optional YAML file and
// IMAGEFLOW_* environment variables, with the variable names of the older
// Python SDK (GEMINI_API_KEY, OUTPUT_DIR, IMAGE_QUALITY, LOGGING_ENABLED)
// honoured as aliases. Validate reports CONFIGURATION_ERRORs.
package config
