// Package testutil provides fakes and fixtures shared by the API and service
// tests: a scriptable transcription engine, a testify mock of the
// transcription service, a recording metrics sink and multipart builders.
package testutil
