// Package httpmiddleware provides the small HTTP middleware set the
// dashboard server needs: panic recovery, request identifiers, request
// logging, and CORS for the browser-facing API.
package httpmiddleware

import "net/http"

// Middleware decorates an http.Handler.
type Middleware = func(http.Handler) http.Handler

// Wrap applies the middlewares to h so that the first listed runs
// outermost.
func Wrap(h http.Handler, mw ...Middleware) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}
