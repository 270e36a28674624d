// Gateway is the NPC dialog gateway: game clients call its HTTP API and it
// forwards inference tasks to one locally attached AI worker over a
// websocket.
//
// Usage:
//
//	# Start with defaults and environment overrides
//	gateway run
//
//	# Start with a configuration file, reloading it on change
//	gateway run --config /etc/gateway/config.yaml
//
//	# Produce HMAC headers for a request body
//	gateway sign --secret s3cret --body-file body.json
//
//	# Show the effective configuration
//	gateway config --config config.yaml
package main

func main() {
	Execute()
}
