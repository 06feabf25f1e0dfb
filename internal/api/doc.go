// Package api exposes the engine over a small authenticated JSON HTTP
// surface. Handlers translate requests into service calls and map service
// errors to status codes; they hold no state of their own.
package api
