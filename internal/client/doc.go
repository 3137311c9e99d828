// Package client provides a typed HTTP client for the kbase REST API.
//
// The client decodes the {success, data | error, message} envelope used by
// every endpoint and converts wire payloads back into store types. A
// non-success envelope is returned as an *APIError carrying the HTTP
// status and the server's error code and message.
package client
