package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Gestion des Heures API",
        "description": "Teaching hours declaration and approval workflow",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Authentication", "description": "Login, token refresh and password management"},
        {"name": "Declarations", "description": "Teaching hours declarations and the approval chain"},
        {"name": "Hierarchy", "description": "Department / track / level / semester / course structure"},
        {"name": "Notifications", "description": "In-app notifications"},
        {"name": "Statistics", "description": "Role-scoped dashboards"},
        {"name": "Exports", "description": "CSV and PDF reports"},
        {"name": "Users", "description": "Account administration"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "responses": {
                    "200": {"description": "Tokens and user profile"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "responses": {
                    "200": {"description": "New token pair"},
                    "401": {"description": "Invalid refresh token"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Revoke refresh token",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Logged out"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user profile",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Profile"}
                }
            }
        },
        "/declarations": {
            "get": {
                "tags": ["Declarations"],
                "summary": "List declarations visible to the caller",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Declarations"}
                }
            },
            "post": {
                "tags": ["Declarations"],
                "summary": "Submit a teaching hours declaration",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created declaration"},
                    "400": {"description": "Validation failure"},
                    "403": {"description": "Role may not declare"}
                }
            }
        },
        "/declarations/pending": {
            "get": {
                "tags": ["Declarations"],
                "summary": "Declarations awaiting the caller's decision",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Pending declarations"}
                }
            }
        },
        "/declarations/export": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export visible declarations as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Report file"}
                }
            }
        },
        "/declarations/{id}": {
            "get": {
                "tags": ["Declarations"],
                "summary": "Fetch one declaration",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Declaration"},
                    "404": {"description": "Not found or not visible"}
                }
            },
            "put": {
                "tags": ["Declarations"],
                "summary": "Edit a pending or rejected declaration",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Updated declaration"},
                    "409": {"description": "Concurrent modification"}
                }
            },
            "delete": {
                "tags": ["Declarations"],
                "summary": "Delete an editable declaration",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/declarations/{id}/approve": {
            "post": {
                "tags": ["Declarations"],
                "summary": "Advance one step in the approval chain",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Declaration after transition"},
                    "403": {"description": "Actor may not act on this status"},
                    "409": {"description": "Concurrent modification"}
                }
            }
        },
        "/declarations/{id}/reject": {
            "post": {
                "tags": ["Declarations"],
                "summary": "Reject with a mandatory reason",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Rejected declaration"},
                    "400": {"description": "Missing reason"}
                }
            }
        },
        "/declarations/{id}/resubmit": {
            "post": {
                "tags": ["Declarations"],
                "summary": "Resubmit a rejected declaration",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Declaration back in the chain"}
                }
            }
        },
        "/departments": {
            "get": {
                "tags": ["Hierarchy"],
                "summary": "List departments",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Departments"}
                }
            },
            "post": {
                "tags": ["Hierarchy"],
                "summary": "Create a department",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created department"}
                }
            }
        },
        "/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List notifications for the current user",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Notifications"}
                }
            }
        },
        "/notifications/unread-count": {
            "get": {
                "tags": ["Notifications"],
                "summary": "Count unread notifications",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Unread count"}
                }
            }
        },
        "/stats": {
            "get": {
                "tags": ["Statistics"],
                "summary": "Declaration statistics scoped to the caller's role",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Counters and hour totals"}
                }
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List user accounts",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Users"}
                }
            },
            "post": {
                "tags": ["Users"],
                "summary": "Provision a user account",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created user"},
                    "409": {"description": "Email already in use"}
                }
            }
        }
    },
    "definitions": {
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
