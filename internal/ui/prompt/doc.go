// Package prompt asks the user to confirm destructive commands, such as
// unregistering repositories. Callers check that input is a terminal first.
package prompt
