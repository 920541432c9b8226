// Package twitter implements the platform client: an OAuth 1.0a HMAC-SHA1
// request signer, the chunked media-upload protocol (INIT, sequential
// APPENDs, FINALIZE, STATUS poll), status updates, and the three-legged
// token exchange.
package twitter
