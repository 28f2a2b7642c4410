package main

// General API documentation for swaggo. Run `swag init -g cmd/signalscope/docs.go`
// to regenerate; build with -tags=swagger to serve it under /swagger/.
//
// @title           signalscope debug API
// @version         1.0.0
// @description     Read-only telemetry for reactive state: snapshots, history and live events.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
