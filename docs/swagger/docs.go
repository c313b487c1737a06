// Package swagger holds the OpenAPI description served under /docs.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "url": "https://github.com/killallgit/voicenote-api"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Service name and version",
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            }
        },
        "/health": {
            "get": {
                "description": "Reports database connectivity and whether ffmpeg and ffprobe can be executed.",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            }
        },
        "/api/voices/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["voices"],
                "summary": "List recordings",
                "parameters": [
                    {"type": "integer", "default": 50, "description": "Page size", "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "description": "Offset", "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "object"}}}
            },
            "post": {
                "description": "Stores the audio, splits it, transcribes every segment and saves the merged transcript as a note.\nProcessing happens inside the request; a 201 means the note exists.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["voices"],
                "summary": "Upload a voice recording",
                "parameters": [
                    {"type": "file", "description": "Audio file (m4a, mp4, aac, ogg, wav, mpeg)", "name": "audio", "in": "formData", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created; Location header points at the recording"},
                    "400": {"description": "Missing file or unsupported MIME type", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "500": {"description": "Processing failed", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/api/voices/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["voices"],
                "summary": "Get a recording",
                "parameters": [{"type": "string", "description": "Recording ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.RecordingResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/api/voices/{id}/process": {
            "post": {
                "description": "Runs the pipeline for a recording in uploaded, done or failed state and returns the hand-off record.",
                "produces": ["application/json"],
                "tags": ["voices"],
                "summary": "Reprocess a recording",
                "parameters": [{"type": "string", "description": "Recording ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/api/notes/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["notes"],
                "summary": "Get a note",
                "parameters": [{"type": "string", "description": "Note ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.NoteResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        },
        "/api/notes/{id}/content": {
            "get": {
                "produces": ["text/plain"],
                "tags": ["notes"],
                "summary": "Download a transcript note",
                "parameters": [{"type": "string", "description": "Note ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Transcript text", "schema": {"type": "string"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "error"},
                "message": {"type": "string", "example": "recording not found"},
                "error": {"type": "string", "example": "NOT_FOUND"},
                "details": {"type": "object", "additionalProperties": true}
            }
        },
        "types.NoteResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "format": {"type": "string", "example": "txt"},
                "file_name": {"type": "string", "example": "lecture_note.txt"},
                "size_bytes": {"type": "integer", "example": 2048},
                "content_path": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "types.RecordingResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "original_name": {"type": "string", "example": "lecture.m4a"},
                "mime_type": {"type": "string", "example": "audio/m4a"},
                "size_bytes": {"type": "integer"},
                "duration_sec": {"type": "integer", "example": 300},
                "status": {"type": "string", "enum": ["uploaded", "processing", "done", "failed"]},
                "notes": {"type": "array", "items": {"$ref": "#/definitions/types.NoteResponse"}},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Voicenote API",
	Description:      "Turns uploaded voice recordings into transcript notes",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
