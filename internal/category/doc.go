// Package category defines the closed set of destination folders a file can be
// sorted into and the parser that coerces free-form classifier replies into it.
package category
