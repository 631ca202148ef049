package connect

import "net/http"

var _ RequestSource = HTTPRequest{}

// HTTPRequest adapts an *http.Request to the RequestSource interface.
type HTTPRequest struct {
	r *http.Request
}

func NewHTTPRequest(r *http.Request) HTTPRequest {
	return HTTPRequest{r: r}
}

func (h HTTPRequest) PostParam(name string) string {
	return h.r.PostFormValue(name)
}

func (h HTTPRequest) QueryParam(name string) string {
	return h.r.URL.Query().Get(name)
}
