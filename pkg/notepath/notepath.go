// Package notepath maps notes to the relative file paths they occupy in the
// remote repository.
package notepath

import (
	"regexp"
)

const Extension = ".md"

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9 \-_]`)

// Sanitize drops every character outside letters, digits, space, hyphen and underscore.
func Sanitize(s string) string {
	return unsafeChars.ReplaceAllString(s, "")
}

// FilePath returns "<folder>/<name>.md", or "<name>.md" when the folder is
// empty after sanitizing. A name that sanitizes to nothing becomes
// "note-<id>", with the id sanitized the same way.
func FilePath(id, name, folder string) string {
	file := Sanitize(name)
	if file == "" {
		file = "note-" + Sanitize(id)
	}
	file += Extension

	if dir := Sanitize(folder); dir != "" {
		return dir + "/" + file
	}
	return file
}
