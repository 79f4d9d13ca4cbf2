/*
Package auth implements SPEC_FULL.md §4.12: password hashing, JWT
bearer token issuance/validation, and the chi middleware that enforces
it on every business endpoint. The Authorization header carries the
token; the request-logging middleware in pkg/httpapi logs no request
headers, so the token never reaches the request log.
*/
package auth
