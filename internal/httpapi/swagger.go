//go:build swagger

package httpapi

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"

	"signalscope/internal/protocol"
)

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {"get": {"tags": ["debug"], "summary": "Liveness", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/snapshot": {"get": {"tags": ["debug"], "summary": "Full registry snapshot", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/events": {"get": {"tags": ["debug"], "summary": "Global event history", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/registry": {"get": {"tags": ["debug"], "summary": "Registry counts and controllers", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/protocol": {"get": {"tags": ["debug"], "summary": "Protocol capabilities", "produces": ["application/json"], "responses": {"200": {"description": "OK"}}}},
        "/stream": {"get": {"tags": ["debug"], "summary": "Live event stream (SSE)", "produces": ["text/event-stream"], "responses": {"200": {"description": "OK"}}}},
        "/ws": {"get": {"tags": ["debug"], "summary": "Live event stream (WebSocket)", "responses": {"101": {"description": "Switching Protocols"}}}}
    }
}`

// swaggerInfo holds the exported Swagger metadata.
var swaggerInfo = &swag.Spec{
	Version:          protocol.Version,
	BasePath:         "/",
	Title:            "signalscope debug API",
	Description:      "Read-only telemetry for reactive state: snapshots, history and live events.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(swaggerInfo.InstanceName(), swaggerInfo)
}

// MountSwagger serves the Swagger UI under /swagger/.
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}
