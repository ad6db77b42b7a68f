// Package deck assembles card records into the minimal pair deck. The
// deck and note type identifiers, fields and template are fixed so that
// every generated package maps onto the same deck in Anki.
package deck
