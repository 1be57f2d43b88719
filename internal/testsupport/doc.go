// Package testsupport provides shared fixtures for package tests: temp-dir
// backed configs, stub executables on PATH, and small file helpers.
package testsupport
