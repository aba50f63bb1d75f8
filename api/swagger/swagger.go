package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA ADP Scoring API",
        "description": "Assessment scoring, grading and term result service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Assessment Schemes", "description": "CA/exam/project configuration per class, subject and term"},
        {"name": "Grading Schemes", "description": "Grade boundary tables per term"},
        {"name": "Scores", "description": "Score entry, preview and publication"},
        {"name": "Term Results", "description": "Aggregated term summaries"},
        {"name": "Metrics", "description": "Service counters"}
    ],
    "paths": {
        "/assessment-schemes": {
            "get": {
                "tags": ["Assessment Schemes"],
                "summary": "List assessment schemes",
                "parameters": [
                    {"name": "classId", "in": "query", "type": "string"},
                    {"name": "subjectId", "in": "query", "type": "string"},
                    {"name": "termId", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Assessment Schemes"],
                "summary": "Create assessment scheme",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAssessmentSchemeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Scheme already exists for scope", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Invalid configuration", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assessment-schemes/{id}": {
            "get": {
                "tags": ["Assessment Schemes"],
                "summary": "Get assessment scheme",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "put": {
                "tags": ["Assessment Schemes"],
                "summary": "Update assessment scheme",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateAssessmentSchemeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Scheme finalized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assessment-schemes/{id}/finalize": {
            "post": {
                "tags": ["Assessment Schemes"],
                "summary": "Finalize assessment scheme",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/assessment-schemes/{id}/recalculate": {
            "post": {
                "tags": ["Assessment Schemes"],
                "summary": "Recalculate stored scores of a scheme",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Recalculation already in progress", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/recalculations/{jobId}": {
            "get": {
                "tags": ["Assessment Schemes"],
                "summary": "Get recalculation job status",
                "parameters": [{"name": "jobId", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/grading-schemes": {
            "get": {
                "tags": ["Grading Schemes"],
                "summary": "List grading schemes",
                "parameters": [{"name": "termId", "in": "query", "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Grading Schemes"],
                "summary": "Create grading scheme",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateGradingSchemeRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/grading-schemes/{id}": {
            "get": {
                "tags": ["Grading Schemes"],
                "summary": "Get grading scheme",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "put": {
                "tags": ["Grading Schemes"],
                "summary": "Update grading scheme",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateGradingSchemeRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/scores/preview": {
            "post": {
                "tags": ["Scores"],
                "summary": "Preview score calculation",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PreviewScoreRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/scores": {
            "get": {
                "tags": ["Scores"],
                "summary": "List stored scores",
                "parameters": [
                    {"name": "schemeId", "in": "query", "type": "string"},
                    {"name": "studentId", "in": "query", "type": "string"},
                    {"name": "classId", "in": "query", "type": "string"},
                    {"name": "subjectId", "in": "query", "type": "string"},
                    {"name": "termId", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Scores"],
                "summary": "Submit a student's scores",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitScoreRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Percentage not covered by grade boundaries", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/scores/bulk": {
            "post": {
                "tags": ["Scores"],
                "summary": "Submit scores for many students",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BulkScoreRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/scores/{id}/publish": {
            "put": {
                "tags": ["Scores"],
                "summary": "Publish or withdraw a score record",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PublishScoreRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/students/{studentId}/term-results/{termId}": {
            "get": {
                "tags": ["Term Results"],
                "summary": "Get a student's term result",
                "description": "Parents and students only see published subject scores.",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "termId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": ["Metrics"],
                "summary": "Scoring service metrics snapshot",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "AssessmentComponentConfig": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "componentKey": {"type": "string"},
                "maxScore": {"type": "number"},
                "weight": {"type": "number"},
                "isOptional": {"type": "boolean"}
            }
        },
        "ExamConfig": {
            "type": "object",
            "properties": {
                "enabled": {"type": "boolean"},
                "name": {"type": "string"},
                "maxScore": {"type": "number"},
                "weight": {"type": "number"}
            }
        },
        "ProjectConfig": {
            "type": "object",
            "properties": {
                "enabled": {"type": "boolean"},
                "name": {"type": "string"},
                "maxScore": {"type": "number"},
                "isOptional": {"type": "boolean"},
                "weight": {"type": "number"}
            }
        },
        "AssessmentConfig": {
            "type": "object",
            "properties": {
                "numberOfCAs": {"type": "integer"},
                "caConfigs": {"type": "array", "items": {"$ref": "#/definitions/AssessmentComponentConfig"}},
                "exam": {"$ref": "#/definitions/ExamConfig"},
                "project": {"$ref": "#/definitions/ProjectConfig"},
                "calculationMethod": {"type": "string", "enum": ["sum", "weighted_average"]},
                "totalMaxScore": {"type": "number"}
            }
        },
        "GradeBoundary": {
            "type": "object",
            "properties": {
                "grade": {"type": "string"},
                "minScore": {"type": "number"},
                "maxScore": {"type": "number"},
                "description": {"type": "string"}
            }
        },
        "GradingConfig": {
            "type": "object",
            "properties": {
                "system": {"type": "string"},
                "gradeBoundaries": {"type": "array", "items": {"$ref": "#/definitions/GradeBoundary"}},
                "passMark": {"type": "number"},
                "displayPreference": {"type": "object"}
            }
        },
        "ScoreInput": {
            "type": "object",
            "additionalProperties": {"type": "number"}
        },
        "CreateAssessmentSchemeRequest": {
            "type": "object",
            "required": ["class_id", "subject_id", "term_id", "config"],
            "properties": {
                "class_id": {"type": "string"},
                "subject_id": {"type": "string"},
                "term_id": {"type": "string"},
                "config": {"$ref": "#/definitions/AssessmentConfig"}
            }
        },
        "UpdateAssessmentSchemeRequest": {
            "type": "object",
            "required": ["config"],
            "properties": {
                "config": {"$ref": "#/definitions/AssessmentConfig"}
            }
        },
        "CreateGradingSchemeRequest": {
            "type": "object",
            "required": ["term_id", "name"],
            "properties": {
                "term_id": {"type": "string"},
                "name": {"type": "string"},
                "preset": {"type": "string", "enum": ["waec"]},
                "config": {"$ref": "#/definitions/GradingConfig"}
            }
        },
        "UpdateGradingSchemeRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "config": {"$ref": "#/definitions/GradingConfig"}
            }
        },
        "PreviewScoreRequest": {
            "type": "object",
            "required": ["scheme_id"],
            "properties": {
                "scheme_id": {"type": "string"},
                "scores": {"$ref": "#/definitions/ScoreInput"}
            }
        },
        "SubmitScoreRequest": {
            "type": "object",
            "required": ["scheme_id", "student_id"],
            "properties": {
                "scheme_id": {"type": "string"},
                "student_id": {"type": "string"},
                "scores": {"$ref": "#/definitions/ScoreInput"},
                "is_absent": {"type": "boolean"},
                "is_exempted": {"type": "boolean"}
            }
        },
        "BulkScoreEntry": {
            "type": "object",
            "required": ["student_id"],
            "properties": {
                "student_id": {"type": "string"},
                "scores": {"$ref": "#/definitions/ScoreInput"},
                "is_absent": {"type": "boolean"},
                "is_exempted": {"type": "boolean"}
            }
        },
        "BulkScoreRequest": {
            "type": "object",
            "required": ["scheme_id", "entries"],
            "properties": {
                "scheme_id": {"type": "string"},
                "mode": {"type": "string", "enum": ["atomic", "partialOnError"]},
                "entries": {"type": "array", "items": {"$ref": "#/definitions/BulkScoreEntry"}}
            }
        },
        "PublishScoreRequest": {
            "type": "object",
            "required": ["published"],
            "properties": {
                "published": {"type": "boolean"}
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
                "status": {"type": "integer"},
                "details": {"type": "array", "items": {"type": "string"}}
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
