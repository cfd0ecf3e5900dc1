package apicall

import (
	"encoding/json"
	"encoding/xml"
	"github.com/ansel1/merry"
	goquery "github.com/google/go-querystring/query"
	"gopkg.in/yaml.v3"
	"net/url"
	"strings"
)

// Endpoint bodies are marshaled with a Marshaler (see the JSONBody, XMLBody
// and FormBody options), and response bodies are decoded by the client's
// Unmarshaler.  The Unmarshaler is a black box to the client: whatever
// error it returns is reported as a DecodingFailed error.
//
// If not set, clients use DefaultUnmarshaler, which decodes JSON regardless
// of the response's Content-Type.  MultiUnmarshaler chooses between JSON,
// XML and YAML using the Content-Type.

// DefaultUnmarshaler is used by Client if Client.Unmarshaler is nil.
// nolint:gochecknoglobals
var DefaultUnmarshaler Unmarshaler = &JSONMarshaler{}

// Media types.
const (
	MediaTypeJSON = "application/json"
	MediaTypeXML  = "application/xml"
	MediaTypeYAML = "application/yaml"
	MediaTypeForm = "application/x-www-form-urlencoded"

	HeaderAccept        = "Accept"
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
)

// Marshaler marshals values into a []byte.
//
// If the content type returned is not empty, it
// will be used in the request's Content-Type header.
type Marshaler interface {
	Marshal(v interface{}) (data []byte, contentType string, err error)
}

// Unmarshaler unmarshals a []byte response body into a value.  It is provided
// the value of the Content-Type header from the response.
type Unmarshaler interface {
	Unmarshal(data []byte, contentType string, v interface{}) error
}

// MarshalFunc adapts a function to the Marshaler interface.
type MarshalFunc func(v interface{}) ([]byte, string, error)

// Marshal implements the Marshaler interface.
func (f MarshalFunc) Marshal(v interface{}) ([]byte, string, error) {
	return f(v)
}

// UnmarshalFunc adapts a function to the Unmarshaler interface.
type UnmarshalFunc func(data []byte, contentType string, v interface{}) error

// Apply implements ClientOption.  UnmarshalFunc can be applied as a client option, which
// installs itself as the Unmarshaler.
func (f UnmarshalFunc) Apply(c *Client) error {
	c.Unmarshaler = f
	return nil
}

// Unmarshal implements the Unmarshaler interface.
func (f UnmarshalFunc) Unmarshal(data []byte, contentType string, v interface{}) error {
	return f(data, contentType, v)
}

// JSONMarshaler implement Marshaler and Unmarshaler.  It marshals values to and
// from JSON.  If Indent is true, marshaled JSON will be indented.
type JSONMarshaler struct {
	Indent bool
}

// Unmarshal implements Unmarshaler.
func (m *JSONMarshaler) Unmarshal(data []byte, _ string, v interface{}) error {
	return merry.Wrap(json.Unmarshal(data, v))
}

// Marshal implements Marshaler.
func (m *JSONMarshaler) Marshal(v interface{}) (data []byte, contentType string, err error) {
	if m.Indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}

	return data, MediaTypeJSON, merry.Wrap(err)
}

// Apply implements ClientOption.
func (m *JSONMarshaler) Apply(c *Client) error {
	c.Unmarshaler = m
	return nil
}

// XMLMarshaler implements Marshaler and Unmarshaler.  It marshals values to
// and from XML.  If Indent is true, marshaled XML will be indented.
type XMLMarshaler struct {
	Indent bool
}

// Unmarshal implements Unmarshaler.
func (*XMLMarshaler) Unmarshal(data []byte, _ string, v interface{}) error {
	return merry.Wrap(xml.Unmarshal(data, v))
}

// Marshal implements Marshaler.
func (m *XMLMarshaler) Marshal(v interface{}) (data []byte, contentType string, err error) {
	if m.Indent {
		data, err = xml.MarshalIndent(v, "", "  ")
	} else {
		data, err = xml.Marshal(v)
	}
	return data, MediaTypeXML, merry.Wrap(err)
}

// Apply implements ClientOption.
func (m *XMLMarshaler) Apply(c *Client) error {
	c.Unmarshaler = m
	return nil
}

// YAMLMarshaler implements Marshaler and Unmarshaler, using gopkg.in/yaml.v3.
type YAMLMarshaler struct{}

// Unmarshal implements Unmarshaler.
func (*YAMLMarshaler) Unmarshal(data []byte, _ string, v interface{}) error {
	return merry.Wrap(yaml.Unmarshal(data, v))
}

// Marshal implements Marshaler.
func (*YAMLMarshaler) Marshal(v interface{}) ([]byte, string, error) {
	data, err := yaml.Marshal(v)
	return data, MediaTypeYAML, merry.Wrap(err)
}

// Apply implements ClientOption.
func (m *YAMLMarshaler) Apply(c *Client) error {
	c.Unmarshaler = m
	return nil
}

// FormMarshaler implements Marshaler.  It marshals values into URL-Encoded form data.
//
// The value can be either a map[string][]string, map[string]string, url.Values, or a struct with `url` tags.
type FormMarshaler struct{}

// Marshal implements Marshaler.
func (*FormMarshaler) Marshal(v interface{}) (data []byte, contentType string, err error) {
	switch t := v.(type) {
	case map[string][]string:
		urlV := url.Values(t)
		return []byte(urlV.Encode()), MediaTypeForm, nil
	case map[string]string:
		urlV := url.Values{}
		for key, value := range t {
			urlV.Set(key, value)
		}
		return []byte(urlV.Encode()), MediaTypeForm, nil
	case url.Values:
		return []byte(t.Encode()), MediaTypeForm, nil
	default:
		values, err := goquery.Values(v)
		if err != nil {
			return nil, "", merry.Prepend(err, "invalid form struct")
		}
		return []byte(values.Encode()), MediaTypeForm, nil
	}
}

// MultiUnmarshaler implements Unmarshaler.  It uses the value of the Content-Type header in the
// response to choose between the JSON, XML and YAML unmarshalers.  If Content-Type is something else,
// an error is returned.
type MultiUnmarshaler struct {
	jsonMar JSONMarshaler
	xmlMar  XMLMarshaler
	yamlMar YAMLMarshaler
}

// Unmarshal implements Unmarshaler.
func (m *MultiUnmarshaler) Unmarshal(data []byte, contentType string, v interface{}) error {
	switch {
	case strings.Contains(contentType, "json"):
		return m.jsonMar.Unmarshal(data, contentType, v)
	case strings.Contains(contentType, "xml"):
		return m.xmlMar.Unmarshal(data, contentType, v)
	case strings.Contains(contentType, "yaml"):
		return m.yamlMar.Unmarshal(data, contentType, v)
	}
	return merry.Errorf("unsupported content type: %s", contentType)
}

// Apply implements ClientOption
func (m *MultiUnmarshaler) Apply(c *Client) error {
	c.Unmarshaler = m
	return nil
}
