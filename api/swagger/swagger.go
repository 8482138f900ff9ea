package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Aura API",
        "description": "Mission assignments, group voting and aura rewards",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Assignments", "description": "Mission slots and group voting"},
        {"name": "Missions", "description": "Main-story mission catalog"},
        {"name": "History", "description": "Resolved mission outcomes"},
        {"name": "Profiles", "description": "User profile and aura balance"}
    ],
    "paths": {
        "/assignments": {
            "post": {
                "tags": ["Assignments"],
                "summary": "Create the assignment for the authenticated user",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Assignment already exists", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments/{user_id}": {
            "get": {
                "tags": ["Assignments"],
                "summary": "Get a user's assignment",
                "parameters": [
                    {"name": "user_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments/{user_id}/missions": {
            "get": {
                "tags": ["Assignments"],
                "summary": "Get the full mission records behind the populated slots",
                "parameters": [
                    {"name": "user_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments/missions/{type}": {
            "put": {
                "tags": ["Assignments"],
                "summary": "Replace the mission held in a slot",
                "parameters": [
                    {"name": "type", "in": "path", "required": true, "type": "string", "enum": ["mission", "secondary_mission"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Slot cannot be replaced", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments/missions/params": {
            "put": {
                "tags": ["Assignments"],
                "summary": "Partially update a mission slot",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSlotParamsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "No valid parameters", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments/{user_id}/missions/votes": {
            "put": {
                "tags": ["Assignments"],
                "summary": "Cast a vote on another user's mission slot",
                "parameters": [
                    {"name": "user_id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/VoteRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "406": {"description": "Voting round full or resolved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate vote", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/missions": {
            "get": {
                "tags": ["Missions"],
                "summary": "List the mission catalog",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/missions/{id}": {
            "get": {
                "tags": ["Missions"],
                "summary": "Get one catalog mission",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/missions/logros": {
            "get": {
                "tags": ["Missions"],
                "summary": "List mission achievements",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/missions/init-data": {
            "post": {
                "tags": ["Missions"],
                "summary": "Seed the catalog from the configured JSON file",
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/history": {
            "get": {
                "tags": ["History"],
                "summary": "List the authenticated user's history",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/history/events": {
            "post": {
                "tags": ["History"],
                "summary": "Archive an outcome event",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Event"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/history/group/{group_id}": {
            "get": {
                "tags": ["History"],
                "summary": "List the recent history of every group member",
                "parameters": [
                    {"name": "group_id", "in": "path", "required": true, "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Group not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/history/group/{group_id}/export": {
            "get": {
                "tags": ["History"],
                "summary": "Export the group history as CSV or PDF",
                "parameters": [
                    {"name": "group_id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/profiles": {
            "get": {
                "tags": ["Profiles"],
                "summary": "Get the authenticated user's profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/profiles/aura": {
            "put": {
                "tags": ["Profiles"],
                "summary": "Apply a signed manual correction to the authenticated user's aura",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AdjustAuraRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "MissionSlot": {
            "type": "object",
            "properties": {
                "mission_id": {"type": "string"},
                "mission_name": {"type": "string"},
                "status": {"type": "string"},
                "creation_date": {"type": "string"},
                "result": {"type": "string"},
                "like": {"type": "integer"},
                "dislike": {"type": "integer"},
                "voters": {"type": "array", "items": {"type": "string"}}
            }
        },
        "Assignment": {
            "type": "object",
            "properties": {
                "person_id": {"type": "string"},
                "person_name": {"type": "string"},
                "mission": {"$ref": "#/definitions/MissionSlot"},
                "secondary_mission": {"$ref": "#/definitions/MissionSlot"},
                "group_mission": {"$ref": "#/definitions/MissionSlot"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "Event": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user_id": {"type": "string"},
                "mission_id": {"type": "string"},
                "name": {"type": "string"},
                "tipo": {"type": "string"},
                "result": {"type": "string"},
                "status": {"type": "string"},
                "created": {"type": "string"},
                "logro_name": {"type": "string"}
            }
        },
        "UpdateSlotParamsRequest": {
            "type": "object",
            "properties": {
                "mission_type": {"type": "string"},
                "status": {"type": "string"},
                "result": {"type": "string"},
                "like": {"type": "integer"},
                "dislike": {"type": "integer"}
            },
            "required": ["mission_type"]
        },
        "VoteRequest": {
            "type": "object",
            "properties": {
                "mission_type": {"type": "string"},
                "like": {"type": "boolean"},
                "group_size": {"type": "integer"}
            },
            "required": ["mission_type", "group_size"]
        },
        "AdjustAuraRequest": {
            "type": "object",
            "properties": {
                "delta": {"type": "integer"}
            },
            "required": ["delta"]
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
                "pagination": {"type": "object"},
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
