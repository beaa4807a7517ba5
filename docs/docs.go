// Package docs registers the OpenAPI document served under /swagger.
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
        "/api/v1/cart/active": {
            "get": {
                "produces": ["application/json"],
                "tags": ["cart"],
                "summary": "Get or create the active cart",
                "parameters": [{"type": "string", "name": "uid", "in": "query", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/v1/cart": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["cart"],
                "summary": "Change the quantity of one product in the active cart",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}, "409": {"description": "Conflict"}}
            }
        },
        "/api/v1/orders": {
            "get": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "List a user's orders",
                "parameters": [{"type": "string", "name": "uid", "in": "query", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "Place an order from the active cart",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/v1/orders/all": {
            "get": {
                "produces": ["application/json"],
                "tags": ["orders"],
                "summary": "List every order",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/v1/orders/notify": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["text/plain"],
                "tags": ["orders"],
                "summary": "Change an order status and email the customer",
                "description": "Open by default. With auth.guard_notify (and auth.enforce_admin) it requires an admin bearer token and answers 401 or 404 otherwise.",
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "500": {"description": "Internal Server Error"}}
            }
        },
        "/api/v1/payments/sheet": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "Create a Stripe payment sheet",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/v1/payments/paypal": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "Create a PayPal order",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/v1/products": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "List products",
                "parameters": [{"type": "integer", "name": "categoria", "in": "query"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Add a product",
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/v1/products/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Get a product",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Update price and stock",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Delete a product",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/v1/faq": {
            "get": {"produces": ["application/json"], "tags": ["content"], "summary": "List FAQ entries", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["content"], "summary": "Add a FAQ entry", "responses": {"201": {"description": "Created"}}}
        },
        "/api/v1/faq/{id}": {
            "get": {"produces": ["application/json"], "tags": ["content"], "summary": "Get a FAQ entry", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"produces": ["application/json"], "tags": ["content"], "summary": "Delete a FAQ entry", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/api/v1/posts": {
            "get": {"produces": ["application/json"], "tags": ["content"], "summary": "List posts", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["content"], "summary": "Add a post", "responses": {"201": {"description": "Created"}}}
        },
        "/api/v1/posts/{id}": {
            "get": {"produces": ["application/json"], "tags": ["content"], "summary": "Get a post", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"produces": ["application/json"], "tags": ["content"], "summary": "Delete a post", "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/api/v1/users": {
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["users"], "summary": "Register a user and its first cart", "responses": {"200": {"description": "Already registered"}, "201": {"description": "Created"}}}
        },
        "/api/v1/users/{uid}": {
            "get": {"produces": ["application/json"], "tags": ["users"], "summary": "Get a user", "parameters": [{"type": "string", "name": "uid", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["users"], "summary": "Update profile fields", "parameters": [{"type": "string", "name": "uid", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/admin/check": {
            "get": {"produces": ["application/json"], "tags": ["admin"], "summary": "Check that the bearer token belongs to an admin", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "404": {"description": "Not Found"}}}
        },
        "/admin/stats": {
            "get": {"produces": ["application/json"], "tags": ["admin"], "summary": "Sales summary for the dashboard", "parameters": [{"type": "integer", "name": "top", "in": "query"}], "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Tienda API",
	Description:      "Catalog, cart, checkout and order notifications for the Tienda mobile app.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
