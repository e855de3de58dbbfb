package domain

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// ResourceContent is the payload returned by reading a resource. Either Text
// or Blob is set; Blob is base64-encoded on the wire.
type ResourceContent struct {
	URI      string
	MimeType MimeType
	Text     string
	Blob     []byte
}

// ToWire converts the content to its resources/read wire representation.
func (c *ResourceContent) ToWire() map[string]any {
	wire := map[string]any{
		"uri":      c.URI,
		"mimeType": c.MimeType.String(),
	}
	if c.Blob != nil {
		wire["blob"] = base64.StdEncoding.EncodeToString(c.Blob)
	} else {
		wire["text"] = c.Text
	}
	return wire
}

// ResourceReader produces the content of a resource. The params map carries
// any request parameters supplied by the client.
type ResourceReader func(ctx context.Context, uri string, params map[string]any) (*ResourceContent, error)

// Resource is a readable capability registered with a session, identified by
// URI. Template resources match request URIs by literal prefix.
type Resource struct {
	URI         ResourceURI
	Name        string
	Description string
	MimeType    MimeType
	Reader      ResourceReader
	IsTemplate  bool
	URITemplate string
	CreatedAt   time.Time
}

// NewResource validates the URI and creates a resource. Template detection
// follows the URI's brace check.
func NewResource(uri, name, description string, mimeType MimeType, reader ResourceReader) (*Resource, error) {
	resourceURI, err := NewResourceURI(uri)
	if err != nil {
		return nil, err
	}
	resource := &Resource{
		URI:         resourceURI,
		Name:        name,
		Description: description,
		MimeType:    mimeType,
		Reader:      reader,
		CreatedAt:   time.Now().UTC(),
	}
	if resourceURI.IsTemplate() {
		resource.IsTemplate = true
		resource.URITemplate = uri
	}
	return resource, nil
}

// NewTemplateResource creates a resource from a URI template, marking it as
// a template regardless of brace detection.
func NewTemplateResource(uriTemplate, name, description string, mimeType MimeType, reader ResourceReader) (*Resource, error) {
	resourceURI, err := NewResourceURI(uriTemplate)
	if err != nil {
		return nil, err
	}
	return &Resource{
		URI:         resourceURI,
		Name:        name,
		Description: description,
		MimeType:    mimeType,
		Reader:      reader,
		IsTemplate:  true,
		URITemplate: uriTemplate,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// MatchesURI reports whether the given URI resolves to this resource.
// Non-templates require an exact match. Templates match any URI starting
// with the literal portion before the first brace; this is deliberately
// coarse and not full URI-template expansion.
func (r *Resource) MatchesURI(uri string) bool {
	if !r.IsTemplate {
		return r.URI.String() == uri
	}
	prefix := strings.SplitN(r.URI.String(), "{", 2)[0]
	return strings.HasPrefix(uri, prefix)
}

// Read produces the resource content for the requested URI, which for
// template resources differs from the registered one. A resource without
// a reader returns a placeholder text body instead of failing.
func (r *Resource) Read(ctx context.Context, uri string, params map[string]any) (*ResourceContent, error) {
	if uri == "" {
		uri = r.URI.String()
	}
	if r.Reader == nil {
		return &ResourceContent{
			URI:      uri,
			MimeType: r.MimeType,
			Text:     fmt.Sprintf("No reader configured for resource: %s", r.URI),
		}, nil
	}
	return r.Reader(ctx, uri, params)
}

// ToWire converts the resource to its resources/list wire representation.
func (r *Resource) ToWire() map[string]any {
	wire := map[string]any{
		"uri":      r.URI.String(),
		"name":     r.Name,
		"mimeType": r.MimeType.String(),
	}
	if r.Description != "" {
		wire["description"] = r.Description
	}
	return wire
}

// ToTemplateWire converts the resource to its resources/templates/list wire
// representation, or nil for non-templates.
func (r *Resource) ToTemplateWire() map[string]any {
	if !r.IsTemplate || r.URITemplate == "" {
		return nil
	}
	wire := map[string]any{
		"uriTemplate": r.URITemplate,
		"name":        r.Name,
		"mimeType":    r.MimeType.String(),
	}
	if r.Description != "" {
		wire["description"] = r.Description
	}
	return wire
}
