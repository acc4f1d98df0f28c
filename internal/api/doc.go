// Package api handles incoming HTTP requests, request validation and response
// formatting for the practice progression endpoints. Handlers only parse
// parameters and shape responses; all semantics live in the service packages.
package api
