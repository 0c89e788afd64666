// Package docs ships the OpenAPI document served at /swagger/doc.json.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{escape .Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/identity/v1/register": {
            "post": {
                "tags": ["identity"],
                "summary": "Register a new account and receive a signed token",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Username or email taken"}
                }
            }
        },
        "/identity/v1/login": {
            "post": {
                "tags": ["identity"],
                "summary": "Exchange credentials for a signed token",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/identity/v1/users/{user_id}": {
            "get": {
                "tags": ["identity"],
                "summary": "Fetch a user profile (self, staff, or admin)",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthenticated"},
                    "403": {"description": "Forbidden"}
                }
            }
        },
        "/issues/v1/issues": {
            "get": {
                "tags": ["issues"],
                "summary": "Browse reported issues (public)",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["issues"],
                "summary": "Report a civic issue (authenticated, Idempotency-Key required)",
                "responses": {
                    "201": {"description": "Created"},
                    "401": {"description": "Unauthenticated"}
                }
            }
        },
        "/issues/v1/issues/{issue_id}/status": {
            "put": {
                "tags": ["issues"],
                "summary": "Move an issue through the triage lifecycle (staff or admin)",
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden"},
                    "409": {"description": "Invalid transition"}
                }
            }
        },
        "/engagement/v1/issues/{issue_id}/comments": {
            "get": {
                "tags": ["engagement"],
                "summary": "List comments on an issue (public, newest first)",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["engagement"],
                "summary": "Comment on an issue (authenticated)",
                "responses": {
                    "201": {"description": "Created"},
                    "401": {"description": "Unauthenticated"}
                }
            }
        },
        "/engagement/v1/issues/{issue_id}/upvote": {
            "post": {
                "tags": ["engagement"],
                "summary": "Upvote an issue, once per user",
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Already upvoted"}
                }
            }
        },
        "/alerts/v1/notifications": {
            "get": {
                "tags": ["alerts"],
                "summary": "List the caller's own notifications",
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Unauthenticated"}
                }
            }
        },
        "/alerts/v1/broadcasts": {
            "post": {
                "tags": ["alerts"],
                "summary": "Publish an area-wide alert (staff or admin, Idempotency-Key required)",
                "responses": {
                    "202": {"description": "Accepted"},
                    "403": {"description": "Forbidden"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "CivicPulse API",
	Description:      "Civic issue reporting, engagement, and alerting platform.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
