package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Salon Reports API",
        "description": "Scheduled report processing for salon organizations",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"},
        "CronSecret": {"type": "apiKey", "name": "X-Cron-Secret", "in": "header"}
    },
    "tags": [
        {"name": "Scheduled Reports", "description": "Recurring report definitions and their runs"},
        {"name": "Operations", "description": "Health, readiness and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Operations"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Operations"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "A dependency is unreachable"}
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": ["Operations"],
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {
                    "200": {"description": "Metrics in Prometheus exposition format"}
                }
            }
        },
        "/api/v1/scheduled-reports/process": {
            "post": {
                "tags": ["Scheduled Reports"],
                "summary": "Run one scan over due scheduled reports",
                "security": [{"CronSecret": []}, {"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Scan finished", "schema": {"$ref": "#/definitions/ProcessReportsResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ProcessReportsError"}},
                    "409": {"description": "Another scan holds the lock", "schema": {"$ref": "#/definitions/ProcessReportsError"}},
                    "500": {"description": "Scan aborted", "schema": {"$ref": "#/definitions/ProcessReportsError"}}
                }
            }
        },
        "/api/v1/scheduled-reports": {
            "get": {
                "tags": ["Scheduled Reports"],
                "summary": "List scheduled reports",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "organizationId", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Scheduled Reports"],
                "summary": "Create a scheduled report",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateScheduledReportRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/scheduled-reports/{id}": {
            "get": {
                "tags": ["Scheduled Reports"],
                "summary": "Get a scheduled report",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/scheduled-reports/{id}/active": {
            "patch": {
                "tags": ["Scheduled Reports"],
                "summary": "Pause or resume a scheduled report",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetActiveRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/scheduled-reports/{id}/runs": {
            "get": {
                "tags": ["Scheduled Reports"],
                "summary": "List runs of a scheduled report",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "ReportScanResult": {
            "type": "object",
            "properties": {
                "reportId": {"type": "string"},
                "name": {"type": "string"},
                "status": {"type": "string", "enum": ["completed", "failed"]},
                "nextRunAt": {"type": "string", "format": "date-time"},
                "error": {"type": "string"}
            },
            "required": ["reportId", "name", "status"]
        },
        "ProcessReportsResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "processed": {"type": "integer"},
                "results": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/ReportScanResult"}
                }
            }
        },
        "ProcessReportsError": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "error": {"type": "string"}
            }
        },
        "Recipient": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "userId": {"type": "string"}
            },
            "required": ["email"]
        },
        "ScheduleConfig": {
            "type": "object",
            "properties": {
                "dayOfWeek": {"type": "integer"},
                "dayOfMonth": {"type": "integer"},
                "timeUtc": {"type": "string", "example": "09:00"},
                "timezone": {"type": "string"}
            }
        },
        "CreateScheduledReportRequest": {
            "type": "object",
            "properties": {
                "organizationId": {"type": "string"},
                "templateId": {"type": "string"},
                "reportType": {"type": "string"},
                "name": {"type": "string"},
                "scheduleType": {"type": "string", "enum": ["daily", "weekly", "monthly", "first_of_month", "last_of_month"]},
                "scheduleConfig": {"$ref": "#/definitions/ScheduleConfig"},
                "recipients": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/Recipient"}
                },
                "format": {"type": "string", "enum": ["pdf", "csv", "xlsx"]},
                "filters": {"type": "object"}
            },
            "required": ["organizationId", "name", "scheduleType", "recipients"]
        },
        "SetActiveRequest": {
            "type": "object",
            "properties": {
                "isActive": {"type": "boolean"}
            },
            "required": ["isActive"]
        },
        "ScheduledReport": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "organizationId": {"type": "string"},
                "templateId": {"type": "string"},
                "reportType": {"type": "string"},
                "name": {"type": "string"},
                "scheduleType": {"type": "string"},
                "scheduleConfig": {"$ref": "#/definitions/ScheduleConfig"},
                "recipients": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/Recipient"}
                },
                "format": {"type": "string"},
                "nextRunAt": {"type": "string", "format": "date-time"},
                "lastRunAt": {"type": "string", "format": "date-time"},
                "isActive": {"type": "boolean"}
            }
        },
        "ScheduledReportRun": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "scheduledReportId": {"type": "string"},
                "status": {"type": "string", "enum": ["running", "completed", "failed"]},
                "startedAt": {"type": "string", "format": "date-time"},
                "completedAt": {"type": "string", "format": "date-time"},
                "fileUrl": {"type": "string"},
                "recipientCount": {"type": "integer"},
                "errorMessage": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
