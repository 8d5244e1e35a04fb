// Package service contains the business logic.
//
// It sits between the handler and repository layers. Form actions return
// a form.Result describing what the client should do next; read paths
// return data or an error for the global error handler.
package service
