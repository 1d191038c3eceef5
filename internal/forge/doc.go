// Package forge lists repositories hosted on a git forge so they can be
// registered as gitfleet handles.
//
// Only GitHub is supported. [GitHub] talks to the REST API through
// go-github with a static OAuth2 token; set the base URL for GitHub
// Enterprise. Listed repositories become uncloned handles via [ToRepos].
package forge
