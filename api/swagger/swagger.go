package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Workforce Enrollment API",
        "description": "Enrollment lifecycle, funding pathways and partner compliance",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Auth", "description": "Session and credential management"},
        {"name": "Enrollments", "description": "Enrollment lifecycle and unified views"},
        {"name": "Funding", "description": "Funding pathway assignment and sponsorship events"},
        {"name": "Partners", "description": "Training partner registry"},
        {"name": "Documents", "description": "Partner compliance document ledger"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate with email and password",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token pair", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Exchange a refresh token for a new token pair",
                "responses": {
                    "200": {"description": "Token pair", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid refresh token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Auth"],
                "security": [{"BearerAuth": []}],
                "summary": "Invalidate the current session",
                "responses": {
                    "204": {"description": "Logged out"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "security": [{"BearerAuth": []}],
                "summary": "Current user profile",
                "responses": {
                    "200": {"description": "Profile", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments": {
            "post": {
                "tags": ["Enrollments"],
                "security": [{"BearerAuth": []}],
                "summary": "Enroll the caller into a program",
                "description": "Runs the eligibility gate, duplicate check and pathway-specific payment setup.",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateEnrollmentRequest"}}
                ],
                "responses": {
                    "200": {"description": "Enrollment created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Eligibility requirements not met", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already enrolled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "Payment setup failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["Enrollments"],
                "security": [{"BearerAuth": []}],
                "summary": "Unified enrollment view across all sources",
                "responses": {
                    "200": {"description": "Normalized enrollments, newest first", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "All sources unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/active": {
            "get": {
                "tags": ["Enrollments"],
                "security": [{"BearerAuth": []}],
                "summary": "Active enrollments only",
                "responses": {
                    "200": {"description": "Active subset of the unified view", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/{id}/credential-eligibility": {
            "get": {
                "tags": ["Enrollments"],
                "security": [{"BearerAuth": []}],
                "summary": "Whether a credential may be issued",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Decision with reason", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Enrollment not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/{id}/access": {
            "get": {
                "tags": ["Enrollments"],
                "security": [{"BearerAuth": []}],
                "summary": "Whether course content is accessible",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Decision with reason", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Not the enrollment owner", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/intakes/{id}/pathway": {
            "post": {
                "tags": ["Funding"],
                "security": [{"BearerAuth": []}],
                "summary": "Assign a funding pathway to a completed intake",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignPathwayRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated intake record", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Unknown pathway", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Screening prerequisites missing", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sponsorships/{id}/separation": {
            "post": {
                "tags": ["Funding"],
                "security": [{"BearerAuth": []}],
                "summary": "Record an employment separation",
                "description": "Pauses the sponsored enrollment and marks the sponsorship separated. Admin only.",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SeparationRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated sponsorship", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Sponsorship not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Separation already recorded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/partners": {
            "post": {
                "tags": ["Partners"],
                "security": [{"BearerAuth": []}],
                "summary": "Register a training partner",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterPartnerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Partner in draft status", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Unknown program", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["Partners"],
                "security": [{"BearerAuth": []}],
                "summary": "List partners",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer", "default": 20},
                    {"name": "offset", "in": "query", "type": "integer", "default": 0}
                ],
                "responses": {
                    "200": {"description": "Partner list", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/partners/{id}": {
            "get": {
                "tags": ["Partners"],
                "security": [{"BearerAuth": []}],
                "summary": "Fetch a partner",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Partner", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/partners/{id}/compliance-report": {
            "get": {
                "tags": ["Partners"],
                "security": [{"BearerAuth": []}],
                "summary": "Export a compliance report",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "produces": ["text/csv", "application/pdf"],
                "responses": {
                    "200": {"description": "Report file"},
                    "400": {"description": "Unknown format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/partners/{id}/documents": {
            "post": {
                "tags": ["Documents"],
                "security": [{"BearerAuth": []}],
                "summary": "Upload a compliance document",
                "description": "Replaces any prior document of the same type for the same program and state.",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "file", "in": "formData", "required": true, "type": "file"},
                    {"name": "document_type", "in": "formData", "required": true, "type": "string"},
                    {"name": "program_id", "in": "formData", "type": "string"},
                    {"name": "state", "in": "formData", "type": "string"},
                    {"name": "expires_at", "in": "formData", "type": "string", "format": "date-time"}
                ],
                "responses": {
                    "200": {"description": "Stored document with checklist state", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failures", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Partner scope mismatch", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/partners/{id}/documents/status": {
            "get": {
                "tags": ["Documents"],
                "security": [{"BearerAuth": []}],
                "summary": "Document checklist status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Required types joined against uploads", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/partners/{id}/documents/{docId}/download-url": {
            "get": {
                "tags": ["Documents"],
                "security": [{"BearerAuth": []}],
                "summary": "Issue a signed download link",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "docId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Signed token and URL", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Document not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/partners/{id}/documents/{docId}/review": {
            "post": {
                "tags": ["Documents"],
                "security": [{"BearerAuth": []}],
                "summary": "Record a review decision on a document",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "docId", "in": "path", "required": true, "type": "string"},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReviewDocumentRequest"}}
                ],
                "responses": {
                    "200": {"description": "Reviewed document with partner status", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Document not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/partners/{id}/documents/{docId}": {
            "delete": {
                "tags": ["Documents"],
                "security": [{"BearerAuth": []}],
                "summary": "Delete a document",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "docId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Document not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/documents/download": {
            "get": {
                "tags": ["Documents"],
                "summary": "Download a document by signed token",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "produces": ["application/octet-stream"],
                "responses": {
                    "200": {"description": "Document file"},
                    "403": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "CreateEnrollmentRequest": {
            "type": "object",
            "required": ["program_id"],
            "properties": {
                "program_id": {"type": "string"}
            }
        },
        "AssignPathwayRequest": {
            "type": "object",
            "required": ["funding_pathway"],
            "properties": {
                "funding_pathway": {
                    "type": "string",
                    "enum": ["workforce_funded", "employer_sponsored", "structured_tuition"]
                }
            }
        },
        "ReviewDocumentRequest": {
            "type": "object",
            "required": ["accept"],
            "properties": {
                "accept": {"type": "boolean"}
            }
        },
        "SeparationRequest": {
            "type": "object",
            "required": ["reason"],
            "properties": {
                "reason": {"type": "string"}
            }
        },
        "RegisterPartnerRequest": {
            "type": "object",
            "required": ["legal_name", "programs"],
            "properties": {
                "legal_name": {"type": "string"},
                "programs": {"type": "array", "items": {"type": "string"}},
                "states": {"type": "array", "items": {"type": "string"}}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "limit": {"type": "integer"},
                "total": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "array", "items": {"type": "string"}},
                "action": {"type": "string"},
                "meta": {"type": "object"}
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
