// Package example shows generated bindings in use. The localizations
// directory holds a complete en_US and a partial fr_FR translation;
// localizer_gen.go is regenerated with go generate.
package example

//go:generate go run github.com/minios-linux/fluentkit generate --output localizer_gen.go --package example
