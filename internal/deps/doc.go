// Package deps checks for the external programs the pipeline shells out to.
package deps
