package httpapi

import (
	"context"
	"net"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
)

// LambdaHandler adapts h to API Gateway HTTP API (payload v2) events.
// Set-Cookie headers are returned in the response's Cookies field.
func LambdaHandler(h http.Handler) func(context.Context, events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return httpadapter.NewV2(withRemotePort(h)).ProxyWithContext
}

// withRemotePort gives a bare source IP a port so gin's ClientIP can parse
// it for rate limiting and access logs.
func withRemotePort(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.RemoteAddr != "" {
			if _, _, err := net.SplitHostPort(r.RemoteAddr); err != nil {
				r.RemoteAddr = net.JoinHostPort(r.RemoteAddr, "0")
			}
		}
		h.ServeHTTP(w, r)
	})
}
