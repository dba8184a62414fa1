// Package manifest reads the setup(...) call of a setup.py packaging
// manifest without executing it.
//
// The source is tokenized with a small Python lexer (comments, all string
// literal forms, numbers, names, punctuation), the first setup( call that is
// not a "def" is located, and its keyword arguments are evaluated as Python
// literals. Values computed at runtime (names, calls, operators,
// comprehensions, f-strings) are not guessed: their keywords are listed in
// Manifest.Unresolved instead.
package manifest
