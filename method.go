package apicall

import "net/http"

// Method is an HTTP method supported by endpoints.
type Method string

// Supported methods.
const (
	GET    Method = http.MethodGet
	POST   Method = http.MethodPost
	PUT    Method = http.MethodPut
	DELETE Method = http.MethodDelete
	PATCH  Method = http.MethodPatch
)

// Valid reports whether m is one of the supported methods.
func (m Method) Valid() bool {
	switch m {
	case GET, POST, PUT, DELETE, PATCH:
		return true
	}
	return false
}

func (m Method) String() string {
	return string(m)
}

// IsSuccess reports whether code is in the success range, [200, 300).
func IsSuccess(code int) bool {
	return code >= 200 && code < 300
}
