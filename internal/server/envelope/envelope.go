// Package envelope builds the uniform JSON body returned for every request,
// successful or not.
package envelope

// RequestInfo echoes the request the envelope answers.
type RequestInfo struct {
	IP     string `json:"ip,omitempty"`
	Method string `json:"method"`
	URL    string `json:"url"`
}

// Response is the wire shape of every reply.
type Response struct {
	Success    bool        `json:"success"`
	StatusCode int         `json:"statusCode"`
	Request    RequestInfo `json:"request"`
	Message    string      `json:"message"`
	Data       any         `json:"data"`
	Trace      *Trace      `json:"trace,omitempty"`
}

// Trace carries error detail for non-production deployments.
type Trace struct {
	Error string `json:"error"`
}

// Builder strips the client ip and error trace in production.
type Builder struct {
	production bool
}

func NewBuilder(production bool) *Builder {
	return &Builder{production: production}
}

func (b *Builder) request(r RequestInfo) RequestInfo {
	if b.production {
		r.IP = ""
	}
	return r
}

func (b *Builder) Success(r RequestInfo, status int, message string, data any) Response {
	return Response{
		Success:    true,
		StatusCode: status,
		Request:    b.request(r),
		Message:    message,
		Data:       data,
	}
}

// Failure builds an error envelope. An empty message falls back to
// MsgServerError.
func (b *Builder) Failure(r RequestInfo, status int, message string, err error) Response {
	if message == "" {
		message = MsgServerError
	}
	resp := Response{
		Success:    false,
		StatusCode: status,
		Request:    b.request(r),
		Message:    message,
	}
	if err != nil && !b.production {
		resp.Trace = &Trace{Error: err.Error()}
	}
	return resp
}
