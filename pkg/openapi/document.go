package openapi

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// Info is the document metadata.
type Info struct {
	Title   string
	Version string
}

// ComponentName is the components/schemas key for a service's record.
func ComponentName(serviceID string) string {
	return "ApplicationData." + serviceID
}

// Document builds an OpenAPI 3 document with one submission and one edit
// operation per service. Services are emitted in id order.
func Document(info Info, services []schema.Service) *openapi3.T {
	if info.Title == "" {
		info.Title = "formflow"
	}
	if info.Version == "" {
		info.Version = "1.0.0"
	}

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info:    &openapi3.Info{Title: info.Title, Version: info.Version},
		Paths:   openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{
				"Document": openapi3.NewSchemaRef("", documentSchema()),
				"Error":    openapi3.NewSchemaRef("", errorSchema()),
			},
		},
	}

	ordered := append([]schema.Service(nil), services...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	for _, svc := range ordered {
		name := ComponentName(svc.ID)
		data := SchemaFor(svc.FormSchema)
		data.Title = svc.Name
		data.Description = svc.Description
		doc.Components.Schemas[name] = openapi3.NewSchemaRef("", data)

		body := openapi3.NewObjectSchema()
		body.Properties["applicationData"] = openapi3.NewSchemaRef("#/components/schemas/"+name, nil)
		docs := openapi3.NewArraySchema()
		docs.Items = openapi3.NewSchemaRef("#/components/schemas/Document", nil)
		body.Properties["documents"] = openapi3.NewSchemaRef("", docs)
		body.Required = []string{"applicationData"}

		submit := openapi3.NewOperation()
		submit.OperationID = "submit." + svc.ID
		submit.Summary = fmt.Sprintf("Apply for %s", svc.Name)
		submit.Tags = []string{"applications"}
		submit.RequestBody = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(body),
		}
		submit.Responses = responses(http.StatusCreated, "Application created")

		doc.Paths.Set(fmt.Sprintf("/api/services/%s/applications", svc.ID), &openapi3.PathItem{Post: submit})
	}

	doc.Paths.Set("/api/applications/{id}/data", &openapi3.PathItem{Put: editOperation()})
	return doc
}

func editOperation() *openapi3.Operation {
	body := openapi3.NewObjectSchema()
	body.Properties["applicationData"] = openapi3.NewSchemaRef("", openapi3.NewObjectSchema())
	body.Properties["revision"] = openapi3.NewSchemaRef("", openapi3.NewIntegerSchema().WithMin(0))
	body.Required = []string{"applicationData"}

	op := openapi3.NewOperation()
	op.OperationID = "application.edit"
	op.Summary = "Replace application data while editing is enabled"
	op.Tags = []string{"applications"}
	op.Parameters = openapi3.Parameters{
		&openapi3.ParameterRef{Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewStringSchema())},
	}
	op.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(body),
	}
	op.Responses = responses(http.StatusOK, "Application updated")
	return op
}

func responses(status int, description string) *openapi3.Responses {
	errRef := &openapi3.ResponseRef{Value: openapi3.NewResponse().
		WithDescription("Request rejected").
		WithJSONSchemaRef(openapi3.NewSchemaRef("#/components/schemas/Error", nil))}
	return openapi3.NewResponses(
		openapi3.WithStatus(status, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription(description)}),
		openapi3.WithStatus(http.StatusUnprocessableEntity, errRef),
		openapi3.WithStatus(http.StatusConflict, errRef),
	)
}

func documentSchema() *openapi3.Schema {
	s := openapi3.NewObjectSchema()
	s.Properties["type"] = openapi3.NewSchemaRef("", openapi3.NewStringSchema())
	s.Properties["path"] = openapi3.NewSchemaRef("", openapi3.NewStringSchema())
	s.Properties["uploadedAt"] = openapi3.NewSchemaRef("", openapi3.NewDateTimeSchema())
	s.Required = []string{"type", "path"}
	return s
}

func errorSchema() *openapi3.Schema {
	detail := openapi3.NewObjectSchema()
	detail.Properties["message"] = openapi3.NewSchemaRef("", openapi3.NewStringSchema())
	detail.Properties["code"] = openapi3.NewSchemaRef("", openapi3.NewStringSchema())
	detail.Properties["fields"] = openapi3.NewSchemaRef("", openapi3.NewObjectSchema().
		WithAdditionalProperties(openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema())))

	s := openapi3.NewObjectSchema()
	s.Properties["error"] = openapi3.NewSchemaRef("", detail)
	return s
}
