// Package docs registers the OpenAPI document served by gin-swagger.
//
// Regenerate with `swag init -g cmd/server/main.go -o docs` after changing
// handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/diets": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Diets"],
                "summary": "List diets",
                "operationId": "listDiets",
                "parameters": [
                    {"type": "string", "description": "Owner filter", "name": "userId", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Diet"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Diets"],
                "summary": "Create a diet",
                "operationId": "createDiet",
                "parameters": [
                    {"type": "string", "description": "Client key for safe retries", "name": "Idempotency-Key", "in": "header"},
                    {"description": "Diet", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.DietRequest"}}
                ],
                "responses": {
                    "200": {"description": "Idempotent replay", "schema": {"$ref": "#/definitions/domain.Diet"}},
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.Diet"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/diets/info": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Diets"],
                "summary": "Diet date ranges per user",
                "operationId": "dietsInfo",
                "parameters": [
                    {"type": "string", "description": "Comma separated user ids", "name": "userIds", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"$ref": "#/definitions/domain.DietInfo"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/diets/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Diets"],
                "summary": "Get a diet",
                "operationId": "getDiet",
                "parameters": [
                    {"type": "string", "description": "Diet ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "ETag from a previous read", "name": "If-None-Match", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Diet"}},
                    "304": {"description": "Not Modified"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Diets"],
                "summary": "Replace a diet",
                "operationId": "updateDiet",
                "parameters": [
                    {"type": "string", "description": "Diet ID", "name": "id", "in": "path", "required": true},
                    {"description": "Diet", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.DietRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Diet"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Diets"],
                "summary": "Delete a diet and its shopping lists and recipe references",
                "operationId": "deleteDiet",
                "parameters": [
                    {"type": "string", "description": "Diet ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/diets/{id}/shopping-list": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["ShoppingLists"],
                "summary": "Get the shopping list of a diet",
                "operationId": "getShoppingList",
                "parameters": [
                    {"type": "string", "description": "Diet ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.ShoppingList"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/recipes/batch": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Recipes"],
                "summary": "Get recipes by ids",
                "operationId": "getRecipesBatch",
                "parameters": [
                    {"type": "string", "description": "Comma separated recipe ids", "name": "ids", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Recipe"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/recipes/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Recipes"],
                "summary": "Get a recipe",
                "operationId": "getRecipe",
                "parameters": [
                    {"type": "string", "description": "Recipe ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Recipe"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Recipes"],
                "summary": "Update a recipe",
                "operationId": "updateRecipe",
                "parameters": [
                    {"type": "string", "description": "Recipe ID", "name": "id", "in": "path", "required": true},
                    {"description": "Recipe", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.RecipeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Recipe"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/shopping-lists/{id}/items": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["ShoppingLists"],
                "summary": "Replace shopping list items",
                "operationId": "updateShoppingListItems",
                "parameters": [
                    {"type": "string", "description": "Shopping list ID", "name": "id", "in": "path", "required": true},
                    {"description": "Items", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ItemsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.ShoppingList"}}
                }
            }
        },
        "/shopping-lists/{id}/categories/{category}/items": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["ShoppingLists"],
                "summary": "Add an item to a category",
                "operationId": "addShoppingListItem",
                "parameters": [
                    {"type": "string", "description": "Shopping list ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Category", "name": "category", "in": "path", "required": true},
                    {"description": "Item", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.CategorizedItem"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.ShoppingList"}}
                }
            }
        },
        "/shopping-lists/{id}/categories/{category}/items/{index}": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["ShoppingLists"],
                "summary": "Remove an item from a category",
                "operationId": "removeShoppingListItem",
                "parameters": [
                    {"type": "string", "description": "Shopping list ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "Category", "name": "category", "in": "path", "required": true},
                    {"type": "integer", "description": "Item index", "name": "index", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.Meal": {
            "type": "object",
            "properties": {
                "recipeId": {"type": "string"},
                "mealType": {"type": "string", "enum": ["BREAKFAST", "SECOND_BREAKFAST", "LUNCH", "SNACK", "DINNER"]},
                "time": {"type": "string"}
            }
        },
        "domain.Day": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "meals": {"type": "array", "items": {"$ref": "#/definitions/domain.Meal"}}
            }
        },
        "domain.DietMetadata": {
            "type": "object",
            "properties": {
                "totalDays": {"type": "integer"},
                "fileName": {"type": "string"},
                "fileUrl": {"type": "string"}
            }
        },
        "domain.Diet": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "userId": {"type": "string"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"},
                "days": {"type": "array", "items": {"$ref": "#/definitions/domain.Day"}},
                "metadata": {"$ref": "#/definitions/domain.DietMetadata"}
            }
        },
        "domain.DietInfo": {
            "type": "object",
            "properties": {
                "hasDiet": {"type": "boolean"},
                "startDate": {"type": "string"},
                "endDate": {"type": "string"}
            }
        },
        "domain.NutritionalValues": {
            "type": "object",
            "properties": {
                "calories": {"type": "number"},
                "protein": {"type": "number"},
                "fat": {"type": "number"},
                "carbs": {"type": "number"}
            }
        },
        "domain.Recipe": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "instructions": {"type": "string"},
                "createdAt": {"type": "string"},
                "photos": {"type": "array", "items": {"type": "string"}},
                "nutritionalValues": {"$ref": "#/definitions/domain.NutritionalValues"},
                "parentRecipeId": {"type": "string"}
            }
        },
        "domain.CategorizedItem": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "quantity": {"type": "number"},
                "unit": {"type": "string"},
                "original": {"type": "string"},
                "recipes": {"type": "array", "items": {"type": "object"}}
            }
        },
        "domain.ShoppingList": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "dietId": {"type": "string"},
                "userId": {"type": "string"},
                "items": {"type": "object", "additionalProperties": {"type": "array", "items": {"$ref": "#/definitions/domain.CategorizedItem"}}},
                "createdAt": {"type": "string"},
                "startDate": {"type": "string"},
                "endDate": {"type": "string"},
                "version": {"type": "integer"}
            }
        },
        "handlers.DietRequest": {
            "type": "object",
            "properties": {
                "userId": {"type": "string", "example": "user123"},
                "days": {"type": "array", "items": {"$ref": "#/definitions/domain.Day"}},
                "metadata": {"$ref": "#/definitions/domain.DietMetadata"}
            }
        },
        "handlers.RecipeRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "instructions": {"type": "string"},
                "nutritionalValues": {"$ref": "#/definitions/domain.NutritionalValues"},
                "parentRecipeId": {"type": "string"}
            }
        },
        "handlers.ItemsRequest": {
            "type": "object",
            "required": ["items"],
            "properties": {
                "items": {"type": "object", "additionalProperties": {"type": "array", "items": {"$ref": "#/definitions/domain.CategorizedItem"}}}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string", "example": "not_found"},
                "message": {"type": "string"},
                "request_id": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Diet API",
	Description:      "Diets, recipes and shopping lists.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
