package dispatch

import (
	"io"
	"net/http"

	"github.com/emicklei/go-restful/v3"
	"github.com/golang/glog"
)

// NewHTTPHandler wraps a Dispatcher as a go-restful container exposing
// one catch-all route per supported HTTP method, delegating entirely to
// Dispatch (SPEC_FULL §4.5: "built on github.com/emicklei/go-restful/v3
// ..., registering one catch-all route per supported HTTP method that
// delegates entirely to dispatch.Dispatch"). Grounded on the teacher's
// pkg/apiserver/apiserver.go Handle()/NewAPIGroupVersion(), which builds
// a restful.Container the same way, and pkg/apiserver/handlers.go's
// panic-recovery wrapping.
func (d *Dispatcher) NewHTTPHandler() http.Handler {
	ws := new(restful.WebService)
	ws.Path("/")

	for _, method := range []string{"GET", "POST"} {
		m := method
		route := ws.Method(m).Path("/{subpath:*}").To(func(req *restful.Request, resp *restful.Response) {
			d.serveHTTP(m, req, resp)
		})
		ws.Route(route)
	}

	c := restful.NewContainer()
	c.Router(restful.CurlyRouter{})
	c.Add(ws)
	c.Filter(recoveryFilter)
	return c
}

func (d *Dispatcher) serveHTTP(method string, req *restful.Request, resp *restful.Response) {
	raw := req.Request.URL.Path
	if req.Request.URL.RawQuery != "" {
		raw += "?" + req.Request.URL.RawQuery
	}
	var body []byte
	if method == "POST" {
		b, err := io.ReadAll(req.Request.Body)
		if err != nil {
			resp.WriteErrorString(http.StatusBadRequest, err.Error())
			return
		}
		body = b
	}
	status, out := d.Dispatch(req.Request.Context(), method, raw, body)
	resp.WriteHeader(status)
	_, _ = resp.Write(out)
}

// recoveryFilter converts a panic inside a route handler into a 500
// instead of crashing the server, matching the teacher's own
// panic-recovery middleware in pkg/apiserver/handlers.go.
func recoveryFilter(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	defer func() {
		if r := recover(); r != nil {
			glog.Errorf("dispatch: panic serving %s %s: %v", req.Request.Method, req.Request.URL.Path, r)
			resp.WriteErrorString(http.StatusInternalServerError, "internal error")
		}
	}()
	chain.ProcessFilter(req, resp)
}
