// Package docs registers the API document served at /v1/openapi.json.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/login": {
            "post": {
                "summary": "Host login",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {"200": {"description": "host token"}, "401": {"description": "invalid credentials"}}
            }
        },
        "/sessions": {
            "post": {
                "summary": "Start an interview session",
                "responses": {"201": {"description": "session with the opening turn and a respondent token"}}
            }
        },
        "/sessions/{sessionId}": {
            "get": {
                "summary": "Get session state",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "sessionId", "type": "string", "required": true}],
                "responses": {"200": {"description": "session"}, "404": {"description": "unknown session"}}
            },
            "delete": {
                "summary": "Abandon a session",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "sessionId", "type": "string", "required": true}],
                "responses": {"204": {"description": "archived"}, "409": {"description": "session busy"}}
            }
        },
        "/sessions/{sessionId}/answers": {
            "post": {
                "summary": "Submit the answer to the current turn",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "sessionId", "type": "string", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitAnswerRequest"}}
                ],
                "responses": {
                    "200": {"description": "score record and next turn or completion"},
                    "400": {"description": "empty answer"},
                    "409": {"description": "session complete, busy or turn mismatch"},
                    "502": {"description": "malformed evaluation or failed job"},
                    "504": {"description": "job timed out"}
                }
            }
        },
        "/sessions/{sessionId}/draft": {
            "get": {
                "summary": "Get the saved draft",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "sessionId", "type": "string", "required": true}],
                "responses": {"200": {"description": "draft"}, "404": {"description": "no draft"}}
            },
            "put": {
                "summary": "Save a draft answer",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"in": "path", "name": "sessionId", "type": "string", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitAnswerRequest"}}
                ],
                "responses": {"200": {"description": "saved"}}
            }
        },
        "/sessions/{sessionId}/summary": {
            "get": {
                "summary": "Closing narrative and composite outcome",
                "security": [{"BearerAuth": []}],
                "parameters": [{"in": "path", "name": "sessionId", "type": "string", "required": true}],
                "responses": {"200": {"description": "summary report"}, "409": {"description": "session not complete"}}
            }
        },
        "/admin/sessions": {
            "get": {"summary": "List sessions", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "sessions"}}}
        },
        "/admin/sessions/{sessionId}": {
            "get": {"summary": "Get any session", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "session"}}}
        },
        "/admin/sessions/{sessionId}/summary": {
            "get": {"summary": "Get any session summary", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "summary report"}}}
        },
        "/admin/outcomes": {
            "get": {"summary": "Outcome board", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "ranked outcomes"}}}
        },
        "/admin/traits": {
            "get": {"summary": "Per-trait score statistics", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "trait stats"}}}
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "SubmitAnswerRequest": {
            "type": "object",
            "properties": {"turnIndex": {"type": "integer"}, "answer": {"type": "string"}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "GRIT Interview API",
	Description:      "Structured GRIT interview sessions scored by an external reasoning service",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
