// Package apidoc describes the inventory HTTP API as an OpenAPI 3.0 document
// and serves it together with a Swagger UI page.
package apidoc

const (
	title   = "Inventory Service API"
	version = "1.0.0"
)

func ref(name string) *Schema {
	return &Schema{Ref: "#/components/schemas/" + name}
}

func jsonBody(schema *Schema) map[string]*MediaType {
	return map[string]*MediaType{"application/json": {Schema: schema}}
}

func jsonResponse(description string, schema *Schema) *Response {
	return &Response{Description: description, Content: jsonBody(schema)}
}

func errorResponse(description string) *Response {
	return jsonResponse(description, ref("Error"))
}

func textResponse(description string) *Response {
	return &Response{
		Description: description,
		Content:     map[string]*MediaType{"text/plain": {Schema: &Schema{Type: "string"}}},
	}
}

var idParameter = Parameter{
	Name:     "id",
	In:       "path",
	Required: true,
	Schema:   &Schema{Type: "integer", Format: "int64"},
}

// Build returns the API document. serverURL, if not empty, is advertised as the server.
func Build(serverURL string) *Document {
	doc := &Document{
		OpenAPI: "3.0.3",
		Info: Info{
			Title:       title,
			Description: "Registers inventory items and keeps a photo for each of them.",
			Version:     version,
		},
		Paths:      paths(),
		Components: Components{Schemas: schemas()},
	}
	if serverURL != "" {
		doc.Servers = []Server{{URL: serverURL}}
	}
	return doc
}

func schemas() map[string]*Schema {
	item := func() *Schema {
		return &Schema{
			Type:     "object",
			Required: []string{"id", "name", "description", "photo"},
			Properties: map[string]*Schema{
				"id":          {Type: "integer", Format: "int64", Example: 1},
				"name":        {Type: "string", Example: "Drill"},
				"description": {Type: "string", Example: "Cordless"},
				"photo":       {Type: "string", Nullable: true, Description: "Stored photo name", Example: "photo-01J9Z7K3Q4B5C6D7E8F9G0H1J2.jpg"},
			},
		}
	}
	withLink := item()
	withLink.Properties["photo_link"] = &Schema{Type: "string", Nullable: true, Description: "Path of the photo, null without one", Example: "/inventory/1/photo"}
	withLink.Required = append(withLink.Required, "photo_link")

	searchResult := item()
	searchResult.Properties["photo_link"] = &Schema{Type: "string", Description: "Present only when requested and the item has a photo"}

	return map[string]*Schema{
		"Item":         item(),
		"ItemView":     withLink,
		"SearchResult": searchResult,
		"RegisterForm": {
			Type:     "object",
			Required: []string{"inventory_name"},
			Properties: map[string]*Schema{
				"inventory_name": {Type: "string"},
				"description":    {Type: "string"},
				"photo":          {Type: "string", Format: "binary"},
			},
		},
		"PhotoForm": {
			Type:       "object",
			Required:   []string{"photo"},
			Properties: map[string]*Schema{"photo": {Type: "string", Format: "binary"}},
		},
		"Update": {
			Type: "object",
			Properties: map[string]*Schema{
				"name":        {Type: "string", Description: "Ignored when empty"},
				"description": {Type: "string", Description: "Ignored when empty"},
			},
		},
		"Search": {
			Type:     "object",
			Required: []string{"id"},
			Properties: map[string]*Schema{
				"id":        {Type: "string", Example: "1"},
				"has_photo": {Type: "string", Description: "Any non-empty value adds photo_link"},
			},
		},
		"Error": {
			Type:       "object",
			Properties: map[string]*Schema{"error": {Type: "string"}},
		},
	}
}

func paths() map[string]*PathItem {
	tags := []string{"inventory"}
	return map[string]*PathItem{
		"/register": {
			Post: &Operation{
				Summary:     "Register a new item",
				OperationID: "registerItem",
				Tags:        tags,
				RequestBody: &RequestBody{
					Required: true,
					Content:  map[string]*MediaType{"multipart/form-data": {Schema: ref("RegisterForm")}},
				},
				Responses: map[string]*Response{
					"201": jsonResponse("Item registered", ref("Item")),
					"400": errorResponse("Name is missing"),
					"413": errorResponse("Photo is too large"),
				},
			},
		},
		"/inventory": {
			Get: &Operation{
				Summary:     "List all items",
				OperationID: "listItems",
				Tags:        tags,
				Responses: map[string]*Response{
					"200": jsonResponse("Items in registration order", &Schema{Type: "array", Items: ref("ItemView")}),
				},
			},
		},
		"/inventory/{id}": {
			Parameters: []Parameter{idParameter},
			Get: &Operation{
				Summary:     "Get an item",
				OperationID: "getItem",
				Tags:        tags,
				Responses: map[string]*Response{
					"200": jsonResponse("The item", ref("ItemView")),
					"404": errorResponse("Item not found"),
				},
			},
			Put: &Operation{
				Summary:     "Update name and description",
				OperationID: "updateItem",
				Tags:        tags,
				RequestBody: &RequestBody{
					Content: map[string]*MediaType{
						"application/json":                  {Schema: ref("Update")},
						"application/x-www-form-urlencoded": {Schema: ref("Update")},
					},
				},
				Responses: map[string]*Response{
					"200": jsonResponse("Updated item", ref("Item")),
					"400": errorResponse("Malformed body"),
					"404": errorResponse("Item not found"),
				},
			},
			Delete: &Operation{
				Summary:     "Delete an item",
				OperationID: "deleteItem",
				Tags:        tags,
				Responses: map[string]*Response{
					"200": textResponse("Item deleted"),
					"404": errorResponse("Item not found"),
				},
			},
		},
		"/inventory/{id}/photo": {
			Parameters: []Parameter{idParameter},
			Get: &Operation{
				Summary:     "Get the photo of an item",
				OperationID: "getPhoto",
				Tags:        tags,
				Responses: map[string]*Response{
					"200": {
						Description: "JPEG bytes",
						Content:     map[string]*MediaType{"image/jpeg": {Schema: &Schema{Type: "string", Format: "binary"}}},
					},
					"404": errorResponse("Item or photo not found"),
				},
			},
			Put: &Operation{
				Summary:     "Replace the photo of an item",
				OperationID: "replacePhoto",
				Tags:        tags,
				RequestBody: &RequestBody{
					Required: true,
					Content:  map[string]*MediaType{"multipart/form-data": {Schema: ref("PhotoForm")}},
				},
				Responses: map[string]*Response{
					"200": jsonResponse("Updated item", ref("Item")),
					"400": errorResponse("No photo supplied"),
					"404": errorResponse("Item not found"),
					"413": errorResponse("Photo is too large"),
				},
			},
		},
		"/search": {
			Post: &Operation{
				Summary:     "Find an item by ID",
				OperationID: "searchItem",
				Tags:        tags,
				RequestBody: &RequestBody{
					Required: true,
					Content: map[string]*MediaType{
						"application/x-www-form-urlencoded": {Schema: ref("Search")},
						"application/json":                  {Schema: ref("Search")},
					},
				},
				Responses: map[string]*Response{
					"200": jsonResponse("The item", ref("SearchResult")),
					"400": errorResponse("ID is missing"),
					"404": errorResponse("Item not found"),
				},
			},
		},
	}
}
