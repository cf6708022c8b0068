package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "TKM Project API",
        "description": "Registrations, contact inquiries and the admin dashboard for the TKM music school",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Programs", "description": "Class catalogue"},
        {"name": "Registrations", "description": "Student registrations, teacher applications and contact inquiries"},
        {"name": "Drafts", "description": "Server-held form drafts"},
        {"name": "Auth", "description": "Admin sign-in"},
        {"name": "Dashboard", "description": "Live admin dashboard"},
        {"name": "Exports", "description": "Dashboard exports"}
    ],
    "paths": {
        "/programs": {
            "get": {
                "tags": ["Programs"],
                "summary": "List class programs",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/registrations/students": {
            "post": {
                "tags": ["Registrations"],
                "summary": "Submit a student registration",
                "parameters": [
                    {"name": "Idempotency-Key", "in": "header", "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StudentRegistration"}}
                ],
                "responses": {
                    "200": {"description": "Submitted", "schema": {"$ref": "#/definitions/SubmissionResult"}},
                    "400": {"description": "Invalid form", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Relay failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/registrations/teachers": {
            "post": {
                "tags": ["Registrations"],
                "summary": "Submit a teacher application",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "Idempotency-Key", "in": "header", "type": "string"},
                    {"name": "fullName", "in": "formData", "required": true, "type": "string"},
                    {"name": "email", "in": "formData", "required": true, "type": "string"},
                    {"name": "phone", "in": "formData", "required": true, "type": "string"},
                    {"name": "instruments", "in": "formData", "required": true, "type": "string"},
                    {"name": "qualifications", "in": "formData", "required": true, "type": "string"},
                    {"name": "experience", "in": "formData", "type": "string"},
                    {"name": "sendCopy", "in": "formData", "type": "boolean"},
                    {"name": "cvFile", "in": "formData", "type": "file"}
                ],
                "responses": {
                    "200": {"description": "Submitted", "schema": {"$ref": "#/definitions/SubmissionResult"}},
                    "413": {"description": "CV too large", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid form", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/contact": {
            "post": {
                "tags": ["Registrations"],
                "summary": "Send a contact inquiry",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ContactInquiry"}}
                ],
                "responses": {
                    "200": {"description": "Sent", "schema": {"$ref": "#/definitions/SubmissionResult"}},
                    "400": {"description": "Invalid form", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/drafts/{form}": {
            "post": {
                "tags": ["Drafts"],
                "summary": "Open a draft for student, teacher or contact",
                "parameters": [
                    {"name": "form", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/drafts/{id}": {
            "get": {
                "tags": ["Drafts"],
                "summary": "Get a draft",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found or expired"}
                }
            },
            "delete": {
                "tags": ["Drafts"],
                "summary": "Discard a draft",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Discarded"}
                }
            }
        },
        "/drafts/{id}/fields": {
            "patch": {
                "tags": ["Drafts"],
                "summary": "Change one field",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/FieldChangeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/drafts/{id}/classes": {
            "post": {
                "tags": ["Drafts"],
                "summary": "Select a class on a student draft",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChoiceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/drafts/{id}/instruments": {
            "post": {
                "tags": ["Drafts"],
                "summary": "Toggle an instrument on a teacher draft",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChoiceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/drafts/{id}/submit": {
            "post": {
                "tags": ["Drafts"],
                "summary": "Submit a draft",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Submitted", "schema": {"$ref": "#/definitions/SubmissionResult"}},
                    "400": {"description": "Invalid form", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Relay failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Admin sign-in",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid email or password"},
                    "429": {"description": "Too many attempts"}
                }
            }
        },
        "/admin/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current admin",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Dashboard snapshot",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "view", "in": "query", "type": "string", "enum": ["overview", "students", "teachers", "analytics"]},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "program", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/dashboard/stream": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Dashboard updates as server-sent events",
                "produces": ["text/event-stream"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "view", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "program", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Event stream"}
                }
            }
        },
        "/admin/exports/{view}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download an export of a dashboard view",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "view", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["xlsx", "csv", "pdf", "doc"]},
                    {"name": "variant", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "program", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        },
        "/admin/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Store an export behind a signed link",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ExportLink"}}
                }
            }
        },
        "/export/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Fetch a stored export",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "404": {"description": "Expired or unknown link"}
                }
            }
        }
    },
    "definitions": {
        "StudentRegistration": {
            "type": "object",
            "properties": {
                "parentName": {"type": "string"},
                "studentName": {"type": "string"},
                "studentDob": {"type": "string", "format": "date"},
                "skillLevel": {"type": "string"},
                "priorExperience": {"type": "string"},
                "classes": {"type": "string"},
                "address": {"type": "string"},
                "phone": {"type": "string"},
                "email": {"type": "string"},
                "referral": {"type": "string"},
                "emergencyContactName": {"type": "string"},
                "emergencyContactPhone": {"type": "string"},
                "medicalInfo": {"type": "string"},
                "consent": {"type": "boolean"},
                "sendCopy": {"type": "boolean"},
                "botField": {"type": "string"}
            }
        },
        "ContactInquiry": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "subject": {"type": "string"},
                "message": {"type": "string"},
                "botField": {"type": "string"}
            }
        },
        "FieldChangeRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "value": {}
            }
        },
        "ChoiceRequest": {
            "type": "object",
            "required": ["value"],
            "properties": {
                "value": {"type": "string"}
            }
        },
        "SubmissionResult": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "redirect": {"type": "string"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "ExportRequest": {
            "type": "object",
            "properties": {
                "view": {"type": "string"},
                "format": {"type": "string"},
                "variant": {"type": "string"},
                "search": {"type": "string"},
                "program": {"type": "string"}
            }
        },
        "ExportLink": {
            "type": "object",
            "properties": {
                "filename": {"type": "string"},
                "url": {"type": "string"},
                "token": {"type": "string"},
                "expiresAt": {"type": "string", "format": "date-time"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "details": {"type": "object"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
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
