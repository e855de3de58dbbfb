package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResource(t *testing.T) {
	resource, err := NewResource("config://server", "Config", "Server config", MimeApplicationJSON, nil)
	require.NoError(t, err)

	assert.Equal(t, "config://server", resource.URI.String())
	assert.False(t, resource.IsTemplate)
}

func TestNewResource_InvalidURI(t *testing.T) {
	_, err := NewResource("not-a-uri", "Bad", "", MimeTextPlain, nil)
	assert.Error(t, err)
}

func TestNewTemplateResource(t *testing.T) {
	resource, err := NewTemplateResource("file:///{path}", "File", "A file", MimeTextPlain, nil)
	require.NoError(t, err)

	assert.True(t, resource.IsTemplate)
	assert.Equal(t, "file:///{path}", resource.URITemplate)
}

func TestResource_MatchesURI(t *testing.T) {
	exact, err := NewResource("config://server", "Config", "", MimeApplicationJSON, nil)
	require.NoError(t, err)
	assert.True(t, exact.MatchesURI("config://server"))
	assert.False(t, exact.MatchesURI("config://other"))

	template, err := NewTemplateResource("file:///{path}", "File", "", MimeTextPlain, nil)
	require.NoError(t, err)
	assert.True(t, template.MatchesURI("file:///etc/hosts"))
	assert.False(t, template.MatchesURI("config://server"))
}

func TestResource_Read_NoReader(t *testing.T) {
	resource, err := NewResource("config://server", "Config", "", MimeApplicationJSON, nil)
	require.NoError(t, err)

	content, err := resource.Read(context.Background(), "config://server", nil)
	require.NoError(t, err)
	assert.Contains(t, content.Text, "No reader configured")
}

func TestResource_Read_PassesRequestedURI(t *testing.T) {
	var gotURI string
	reader := func(_ context.Context, uri string, _ map[string]any) (*ResourceContent, error) {
		gotURI = uri
		return &ResourceContent{URI: uri, MimeType: MimeTextPlain, Text: "x"}, nil
	}
	template, err := NewTemplateResource("file:///{path}", "File", "", MimeTextPlain, reader)
	require.NoError(t, err)

	_, err = template.Read(context.Background(), "file:///tmp/a.txt", nil)
	require.NoError(t, err)
	assert.Equal(t, "file:///tmp/a.txt", gotURI)
}

func TestResource_ToWire(t *testing.T) {
	resource, err := NewResource("config://server", "Config", "Server config", MimeApplicationJSON, nil)
	require.NoError(t, err)

	wire := resource.ToWire()
	assert.Equal(t, "config://server", wire["uri"])
	assert.Equal(t, "Config", wire["name"])
	assert.Equal(t, "Server config", wire["description"])

	// Description key is omitted when empty.
	bare, err := NewResource("status://health", "Health", "", MimeApplicationJSON, nil)
	require.NoError(t, err)
	_, hasDescription := bare.ToWire()["description"]
	assert.False(t, hasDescription)
}

func TestResource_ToTemplateWire(t *testing.T) {
	template, err := NewTemplateResource("file:///{path}", "File", "A file", MimeTextPlain, nil)
	require.NoError(t, err)

	wire := template.ToTemplateWire()
	assert.Equal(t, "file:///{path}", wire["uriTemplate"])
	assert.Equal(t, "File", wire["name"])
}

func TestResourceContent_ToWire(t *testing.T) {
	text := &ResourceContent{URI: "config://server", MimeType: MimeApplicationJSON, Text: "{}"}
	wire := text.ToWire()
	assert.Equal(t, "{}", wire["text"])
	_, hasBlob := wire["blob"]
	assert.False(t, hasBlob)

	blob := &ResourceContent{URI: "file:///x.bin", MimeType: MimeOctetStream, Blob: []byte{0x00, 0x01}}
	wire = blob.ToWire()
	assert.NotEmpty(t, wire["blob"])
	_, hasText := wire["text"]
	assert.False(t, hasText)
}
