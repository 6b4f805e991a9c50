// Package file provides the file-based schema template store.
// Templates are JSON index-creation documents with substitution
// placeholders, shipped as embedded defaults and materialised to a
// user-editable directory on first use.
package file
