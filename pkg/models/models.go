// Package models defines data structures shared across the application.
package models

import (
	"time"
)

// User is the author of an issue, pull request or commit.
type User struct {
	// Name is the display name. For commits it comes from the commit's own
	// author record, for issues it is the login.
	Name string

	// Login is the platform handle, nil when the author is not linked to an account.
	Login *string

	// HTMLURL is the profile URL, nil when the author is not linked to an account.
	HTMLURL *string
}

// Linked reports whether the user is associated with a platform account.
func (u User) Linked() bool {
	return u.Login != nil
}

// Key returns a comparable identity over the full (name, login, url) tuple.
// An absent login never equals an empty one.
func (u User) Key() UserKey {
	k := UserKey{Name: u.Name}
	if u.Login != nil {
		k.HasLogin = true
		k.Login = *u.Login
	}
	if u.HTMLURL != nil {
		k.HasHTMLURL = true
		k.HTMLURL = *u.HTMLURL
	}
	return k
}

// UserKey is the set identity of a User.
type UserKey struct {
	Name       string
	Login      string
	HasLogin   bool
	HTMLURL    string
	HasHTMLURL bool
}

// Issue represents an issue or pull request returned by the search API.
type Issue struct {
	// Number is the issue number in the repository (e.g., 42)
	Number int

	// Title is the issue's title
	Title string

	// HTMLURL is the browser URL of the issue
	HTMLURL string

	// Labels is the de-duplicated list of label names, in the order returned by the API
	Labels []string

	// Author is the issue's creator, nil when the API did not report one
	Author *User

	// CreatedAt is the timestamp when the issue was created
	CreatedAt time.Time
}

// Change is an issue with exactly one assigned category.
type Change struct {
	Issue
	Category string
}

// CommitAuthorsResult holds the unique authors of a commit range.
type CommitAuthorsResult struct {
	// Authors is de-duplicated by full identity, in order of first appearance.
	Authors []User

	// TotalCommits is the sum of the per-page commit counts.
	TotalCommits int

	Diagnostics []Diagnostic
}

// Milestone is a platform milestone.
type Milestone struct {
	Number  int
	Title   string
	HTMLURL string
	State   string
}

// Release is a platform release.
type Release struct {
	TagName string
	Name    string
	HTMLURL string
}

// DiagnosticKind classifies a non-fatal condition.
type DiagnosticKind string

const (
	// DiagnosticUnmappedLabels means none of an issue's labels map to a category.
	DiagnosticUnmappedLabels DiagnosticKind = "unmapped_labels"
	// DiagnosticAppendedCategories means categories present in the data were missing from the configured order.
	DiagnosticAppendedCategories DiagnosticKind = "appended_categories"
	// DiagnosticUnlinkedCommitAuthor means a commit has no associated platform account.
	DiagnosticUnlinkedCommitAuthor DiagnosticKind = "unlinked_commit_author"
)

// Diagnostic is a warning produced alongside a result instead of failing it.
type Diagnostic struct {
	Kind    DiagnosticKind
	Message string

	// Subjects lists the labels, categories or URLs the diagnostic is about.
	Subjects []string
}
