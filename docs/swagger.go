// Package docs registers the TaskUp OpenAPI description with swag so that
// gin-swagger can serve it under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Tasks", "description": "Task board, table view and task history"},
        {"name": "Points", "description": "Points balance, ledger and leaderboard"},
        {"name": "Achievements", "description": "Achievement catalogue and acknowledgement"},
        {"name": "Metrics", "description": "Points trend and dashboard"},
        {"name": "Rewards", "description": "Reward catalogue and redemptions"},
        {"name": "Goals", "description": "Organization goals and progress"}
    ],
    "paths": {
        "/tasks": {
            "get": {"tags": ["Tasks"], "summary": "List tasks with filters and sorting", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Tasks"], "summary": "Create a task", "responses": {"201": {"description": "Created"}}}
        },
        "/tasks/board": {
            "get": {"tags": ["Tasks"], "summary": "Tasks grouped by status column", "responses": {"200": {"description": "OK"}}}
        },
        "/tasks/{id}": {
            "get": {"tags": ["Tasks"], "summary": "Get a task", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["Tasks"], "summary": "Delete a task, keeping its points history", "responses": {"204": {"description": "No Content"}}}
        },
        "/tasks/{id}/status": {
            "patch": {"tags": ["Tasks"], "summary": "Change status, crediting or reversing points", "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/tasks/{id}/difficulty": {
            "patch": {"tags": ["Tasks"], "summary": "Change difficulty and rebalance points of a done task", "responses": {"200": {"description": "OK"}}}
        },
        "/tasks/{id}/priority": {
            "patch": {"tags": ["Tasks"], "summary": "Change priority", "responses": {"200": {"description": "OK"}}}
        },
        "/tasks/{id}/assignees": {
            "post": {"tags": ["Tasks"], "summary": "Assign a member", "responses": {"200": {"description": "OK"}}}
        },
        "/tasks/{id}/assignees/{user_id}": {
            "delete": {"tags": ["Tasks"], "summary": "Unassign a member", "responses": {"200": {"description": "OK"}}}
        },
        "/tasks/{id}/logs": {
            "get": {"tags": ["Tasks"], "summary": "Task history", "responses": {"200": {"description": "OK"}}}
        },
        "/points/me": {
            "get": {"tags": ["Points"], "summary": "Total, spent and available points", "responses": {"200": {"description": "OK"}}}
        },
        "/points/me/transactions": {
            "get": {"tags": ["Points"], "summary": "Ledger entries, newest first", "responses": {"200": {"description": "OK"}}}
        },
        "/points/leaderboard": {
            "get": {"tags": ["Points"], "summary": "Leaderboard for the current week or month", "responses": {"200": {"description": "OK"}}}
        },
        "/achievements": {
            "get": {"tags": ["Achievements"], "summary": "Evaluate all achievements", "responses": {"200": {"description": "OK"}}}
        },
        "/achievements/acknowledge": {
            "post": {"tags": ["Achievements"], "summary": "Mark achievements as seen", "responses": {"200": {"description": "OK"}}}
        },
        "/metrics/points": {
            "get": {"tags": ["Metrics"], "summary": "Points in the current period against the previous one", "responses": {"200": {"description": "OK"}}}
        },
        "/dashboard": {
            "get": {"tags": ["Metrics"], "summary": "Task counts, goal progress and weekly points", "responses": {"200": {"description": "OK"}}}
        },
        "/rewards": {
            "get": {"tags": ["Rewards"], "summary": "Active rewards", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Rewards"], "summary": "Create a reward", "responses": {"201": {"description": "Created"}, "403": {"description": "Forbidden"}}}
        },
        "/rewards/{id}/redeem": {
            "post": {"tags": ["Rewards"], "summary": "Redeem a reward", "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/redemptions/me": {
            "get": {"tags": ["Rewards"], "summary": "My redemptions", "responses": {"200": {"description": "OK"}}}
        },
        "/redemptions/{id}/status": {
            "patch": {"tags": ["Rewards"], "summary": "Complete or cancel a pending redemption", "responses": {"200": {"description": "OK"}}}
        },
        "/goals": {
            "get": {"tags": ["Goals"], "summary": "Goals with progress", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Goals"], "summary": "Create a goal", "responses": {"201": {"description": "Created"}}}
        },
        "/goals/{id}/tasks": {
            "post": {"tags": ["Goals"], "summary": "Attach a task", "responses": {"200": {"description": "OK"}}}
        },
        "/goals/{id}/assignees": {
            "post": {"tags": ["Goals"], "summary": "Add a member", "responses": {"200": {"description": "OK"}}}
        },
        "/goals/{id}/status": {
            "patch": {"tags": ["Goals"], "summary": "Change goal status", "responses": {"200": {"description": "OK"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "TaskUp API",
	Description:      "Team task tracking with points, achievements and rewards.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
