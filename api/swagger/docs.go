// Package swagger registers the OpenAPI description served by the dev-mode
// Swagger UI. Regenerate with: swag init -g cmd/campaigndesk/main.go -o api/swagger
package swagger

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
    "paths": {
        "/health": {
            "get": {
                "description": "Returns service health status with version information.",
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/server.HealthResponse"}}}
            }
        },
        "/auth/login": {
            "post": {
                "description": "Sign in with the admin pair or a registered account.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [{"description": "Login credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/auth.LoginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.SessionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/auth.AuthProblem"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/auth.AuthProblem"}}
                }
            }
        },
        "/auth/guest": {
            "post": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Continue as guest",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.SessionResponse"}}}
            }
        },
        "/tools/content": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["tools"],
                "summary": "Generate campaign content",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/tools.ContentRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/tools.TextResponse"}},
                    "502": {"description": "Bad Gateway"}
                }
            }
        },
        "/campaigns": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["campaign"],
                "summary": "List campaigns",
                "parameters": [
                    {"type": "string", "description": "Search text", "name": "q", "in": "query"},
                    {"type": "string", "description": "Status filter", "name": "status", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/campaign.Campaign"}}}}
            }
        },
        "/settings": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["settings"],
                "summary": "Get preferences",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/settings.Preferences"}}}
            }
        }
    },
    "definitions": {
        "server.HealthResponse": {
            "type": "object",
            "properties": {
                "service": {"type": "string", "example": "campaigndesk"},
                "status": {"type": "string", "example": "ok"},
                "version": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "auth.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "admin@app.com"},
                "password": {"type": "string", "example": "admin123"}
            }
        },
        "auth.User": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "id": {"type": "string"},
                "name": {"type": "string"},
                "role": {"type": "string", "enum": ["admin", "user", "guest"]}
            }
        },
        "auth.SessionResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "expires_in": {"type": "integer"},
                "user": {"$ref": "#/definitions/auth.User"}
            }
        },
        "auth.AuthProblem": {
            "type": "object",
            "properties": {
                "detail": {"type": "string", "example": "invalid or expired access token"},
                "status": {"type": "integer", "example": 401},
                "title": {"type": "string", "example": "Unauthorized"},
                "type": {"type": "string", "example": "https://campaigndesk.dev/problems/auth-error"}
            }
        },
        "tools.ContentRequest": {
            "type": "object",
            "properties": {
                "kind": {"type": "string", "example": "speech"},
                "request": {"type": "string", "example": "Discurso para comício sobre educação"}
            }
        },
        "tools.TextResponse": {
            "type": "object",
            "properties": {"text": {"type": "string"}}
        },
        "campaign.Campaign": {
            "type": "object",
            "properties": {
                "budget": {"type": "string"},
                "created_at": {"type": "string"},
                "description": {"type": "string"},
                "end_date": {"type": "string"},
                "id": {"type": "string"},
                "name": {"type": "string"},
                "start_date": {"type": "string"},
                "status": {"type": "string", "enum": ["active", "planned", "completed"]},
                "target_audience": {"type": "string"}
            }
        },
        "settings.Preferences": {
            "type": "object",
            "properties": {
                "email_alerts": {"type": "boolean"},
                "notifications": {"type": "boolean"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "JWT Bearer token. Format: \"Bearer {token}\"",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "campaigndesk API",
	Description:      "Campaign toolkit API: generation tools, campaign data and settings.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
