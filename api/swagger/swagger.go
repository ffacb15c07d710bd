package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Timetable API",
        "description": "Weekly timetable generation, editing and publishing",
        "version": "1.0.0"
    },
    "basePath": "/",
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
        {
            "name": "Timetable",
            "description": "Drafts, slot edits, workloads and stored versions"
        },
        {
            "name": "Health",
            "description": "Probes"
        }
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": [
                    "Health"
                ],
                "summary": "Liveness probe",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "tags": [
                    "Health"
                ],
                "summary": "Readiness probe",
                "responses": {
                    "200": {
                        "description": "Ready"
                    },
                    "503": {
                        "description": "A dependency is unreachable"
                    }
                }
            }
        },
        "/api/v1/grid": {
            "get": {
                "tags": [
                    "Timetable"
                ],
                "summary": "Weekly grid",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/api/v1/timetables": {
            "get": {
                "tags": [
                    "Timetable"
                ],
                "summary": "List stored timetables",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "termId",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "Term ID"
                    },
                    {
                        "name": "section",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "Section"
                    },
                    {
                        "name": "status",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "DRAFT, PUBLISHED or ARCHIVED"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/timetables/generate": {
            "post": {
                "tags": [
                    "Timetable"
                ],
                "summary": "Generate a timetable draft",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/GenerateTimetableRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid payload",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "412": {
                        "description": "No roster for the term and section",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/timetables/drafts/{id}": {
            "get": {
                "tags": [
                    "Timetable"
                ],
                "summary": "Get a draft",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Draft ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Draft not found or expired",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "delete": {
                "tags": [
                    "Timetable"
                ],
                "summary": "Discard a draft",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Draft ID"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Discarded"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/timetables/drafts/{id}/availability": {
            "get": {
                "tags": [
                    "Timetable"
                ],
                "summary": "Legal placements for a day",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Draft ID"
                    },
                    {
                        "name": "day",
                        "in": "query",
                        "required": true,
                        "type": "string",
                        "description": "Day name or 1-7"
                    },
                    {
                        "name": "kind",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "theory or lab"
                    },
                    {
                        "name": "start",
                        "in": "query",
                        "required": false,
                        "type": "integer",
                        "description": "Only this start period"
                    },
                    {
                        "name": "teacherId",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "Drop starts where this teacher is busy"
                    },
                    {
                        "name": "excludeClassId",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "Class of the session being edited"
                    },
                    {
                        "name": "excludeDay",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "Day of the session being edited"
                    },
                    {
                        "name": "excludeStart",
                        "in": "query",
                        "required": false,
                        "type": "integer",
                        "description": "Start period of the session being edited"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/timetables/drafts/{id}/slots": {
            "post": {
                "tags": [
                    "Timetable"
                ],
                "summary": "Add a session to a draft",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Draft ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AddSlotRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Placement conflict; meta.conflict carries the coordinates",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "412": {
                        "description": "Stale revision",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "422": {
                        "description": "Invalid span",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "put": {
                "tags": [
                    "Timetable"
                ],
                "summary": "Move a session of a draft",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Draft ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/EditSlotRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Placement conflict; meta.conflict carries the coordinates",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "412": {
                        "description": "Stale revision",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "422": {
                        "description": "Invalid span",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            },
            "delete": {
                "tags": [
                    "Timetable"
                ],
                "summary": "Remove a session from a draft",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Draft ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/RemoveSlotRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "412": {
                        "description": "Stale revision",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/timetables/drafts/{id}/workload": {
            "get": {
                "tags": [
                    "Timetable"
                ],
                "summary": "Weekly workload of every scheduled teacher",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Draft ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/timetables/drafts/{id}/workload/{teacherId}": {
            "get": {
                "tags": [
                    "Timetable"
                ],
                "summary": "Weekly workload of one teacher",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Draft ID"
                    },
                    {
                        "name": "teacherId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "format",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "pdf to download a report"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/timetables/drafts/{id}/export": {
            "get": {
                "tags": [
                    "Timetable"
                ],
                "summary": "Export a draft",
                "produces": [
                    "application/pdf",
                    "text/csv"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Draft ID"
                    },
                    {
                        "name": "format",
                        "in": "query",
                        "required": false,
                        "type": "string",
                        "description": "pdf (default) or csv"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "File download"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/timetables/save": {
            "post": {
                "tags": [
                    "Timetable"
                ],
                "summary": "Store a draft as a new timetable version",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/SaveTimetableRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Placement conflict; meta.conflict carries the coordinates",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/timetables/{id}": {
            "delete": {
                "tags": [
                    "Timetable"
                ],
                "summary": "Delete a stored draft timetable",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Timetable ID"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "Deleted"
                    },
                    "409": {
                        "description": "Only drafts can be deleted",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/timetables/{id}/open": {
            "post": {
                "tags": [
                    "Timetable"
                ],
                "summary": "Open a stored timetable as a draft",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Timetable ID"
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/api/v1/timetables/{id}/publish": {
            "post": {
                "tags": [
                    "Timetable"
                ],
                "summary": "Publish a stored timetable",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Timetable ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Placement conflict; meta.conflict carries the coordinates",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        }
    },
    "definitions": {
        "ClassRequirement": {
            "type": "object",
            "properties": {
                "classId": {
                    "type": "string"
                },
                "teacherId": {
                    "type": "string"
                },
                "courseName": {
                    "type": "string"
                },
                "courseCode": {
                    "type": "string"
                },
                "facultyName": {
                    "type": "string"
                },
                "theory": {
                    "type": "integer"
                },
                "labs": {
                    "type": "integer"
                }
            },
            "required": [
                "classId",
                "teacherId",
                "courseName"
            ]
        },
        "GenerateTimetableRequest": {
            "type": "object",
            "properties": {
                "termId": {
                    "type": "string"
                },
                "section": {
                    "type": "string"
                },
                "classes": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/ClassRequirement"
                    }
                },
                "ignoreReservations": {
                    "type": "boolean"
                }
            },
            "required": [
                "termId",
                "section"
            ]
        },
        "AddSlotRequest": {
            "type": "object",
            "properties": {
                "classId": {
                    "type": "string"
                },
                "teacherId": {
                    "type": "string"
                },
                "courseName": {
                    "type": "string"
                },
                "courseCode": {
                    "type": "string"
                },
                "facultyName": {
                    "type": "string"
                },
                "kind": {
                    "type": "string"
                },
                "day": {
                    "type": "string"
                },
                "start": {
                    "type": "integer"
                },
                "room": {
                    "type": "string"
                },
                "revision": {
                    "type": "integer"
                }
            },
            "required": [
                "classId",
                "teacherId",
                "courseName",
                "day",
                "start",
                "room"
            ]
        },
        "SessionRef": {
            "type": "object",
            "properties": {
                "classId": {
                    "type": "string"
                },
                "day": {
                    "type": "string"
                },
                "start": {
                    "type": "integer"
                }
            },
            "required": [
                "classId",
                "day",
                "start"
            ]
        },
        "EditSlotRequest": {
            "type": "object",
            "properties": {
                "session": {
                    "$ref": "#/definitions/SessionRef"
                },
                "day": {
                    "type": "string"
                },
                "start": {
                    "type": "integer"
                },
                "room": {
                    "type": "string"
                },
                "revision": {
                    "type": "integer"
                }
            },
            "required": [
                "session",
                "day",
                "start",
                "room"
            ]
        },
        "RemoveSlotRequest": {
            "type": "object",
            "properties": {
                "classId": {
                    "type": "string"
                },
                "day": {
                    "type": "string"
                },
                "start": {
                    "type": "integer"
                },
                "revision": {
                    "type": "integer"
                }
            },
            "required": [
                "classId",
                "day",
                "start"
            ]
        },
        "SaveTimetableRequest": {
            "type": "object",
            "properties": {
                "draftId": {
                    "type": "string"
                },
                "publish": {
                    "type": "boolean"
                },
                "note": {
                    "type": "string"
                }
            },
            "required": [
                "draftId"
            ]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {
                    "type": "integer"
                },
                "page_size": {
                    "type": "integer"
                },
                "total_count": {
                    "type": "integer"
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "pagination": {
                    "$ref": "#/definitions/Pagination"
                },
                "meta": {
                    "type": "object"
                }
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
