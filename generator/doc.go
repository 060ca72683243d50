// Package generator renders the repository and contract stubs for a model and
// writes them into the target project. Stubs are plain text with $KEY$
// placeholders; a file pair is only written when neither file exists yet.
package generator
