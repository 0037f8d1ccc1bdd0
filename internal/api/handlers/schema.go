// GET /schema - static OpenAPI document describing the action endpoint, used
// by vendor platforms that discover function signatures from a schema URL.
package handlers

import "net/http"

const openAPISchema = `{
  "openapi": "3.0.1",
  "info": {
    "title": "Action Agent",
    "description": "Executes identity and access management actions.",
    "version": "1.0.0"
  },
  "paths": {
    "/": {
      "post": {
        "operationId": "executeAction",
        "description": "Execute an identity management action such as create_user, grant_access or assign_group.",
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["inputText"],
                "properties": {
                  "messageVersion": {"type": "string"},
                  "inputText": {"type": "string", "description": "Natural-language description of the action to perform."},
                  "sessionId": {"type": "string"},
                  "actionGroup": {"type": "string"},
                  "function": {"type": "string"},
                  "parameters": {
                    "type": "array",
                    "items": {
                      "type": "object",
                      "properties": {
                        "name": {"type": "string"},
                        "type": {"type": "string"},
                        "value": {"type": "string"}
                      }
                    }
                  }
                }
              }
            }
          }
        },
        "responses": {
          "200": {
            "description": "The agent's text result wrapped in the function-response envelope.",
            "content": {"application/json": {"schema": {"type": "object"}}}
          }
        }
      }
    }
  }
}`

type SchemaHandler struct{}

func NewSchemaHandler() *SchemaHandler {
	return &SchemaHandler{}
}

func (h *SchemaHandler) Get(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(openAPISchema)) //nolint:errcheck
}
