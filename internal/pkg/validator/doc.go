// Package validator checks request structs against their `validate` tags.
//
// Business code depends on the Validator interface; V10Validator backs it
// with go-playground/validator v10 and English messages. Field errors are
// keyed by the struct's json tag so they line up with request bodies.
package validator
