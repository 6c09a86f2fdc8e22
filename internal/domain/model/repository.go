package model

import (
	"fmt"
	"strings"
)

// RepoRef identifies a GitHub repository by owner and name.
type RepoRef struct {
	Owner string
	Name  string
}

// FullName returns the "owner/name" form used in logs and error messages.
func (r RepoRef) FullName() string {
	return r.Owner + "/" + r.Name
}

// ParseRepoRef splits an "owner/name" string into its two components.
func ParseRepoRef(fullName string) (RepoRef, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return RepoRef{}, fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return RepoRef{Owner: parts[0], Name: parts[1]}, nil
}
