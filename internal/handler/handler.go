// Package handler is the HTTP layer.
//
// It binds requests, calls the service layer and writes the response.
// Form actions answer with a redirect or with the form state to render;
// read endpoints answer with JSON.
package handler
