// Package config handles configuration loading for recall-gateway.
//
// Configuration is loaded from a YAML file with environment variable
// expansion (${VAR_NAME} syntax) and validated before use.
//
// Default locations (in order):
//
//  1. Path from RECALL_CONFIG environment variable
//  2. ~/.config/recall/gateway.yaml (or XDG_CONFIG_HOME equivalent)
//
// Sections:
//
//	server:
//	  http_addr: "127.0.0.1:8080"
//
//	database:
//	  path: "/var/lib/recall/recall.db"
//
//	openai:
//	  api_key: "${OPENAI_API_KEY}"   # required
//	  base_url: ""                    # empty means the public API
//	  model: "gpt-3.5-turbo-1106"
//
//	logging:
//	  level: "info"    # debug, info, warn, error
//	  format: "text"   # text (colorized) or json
package config
