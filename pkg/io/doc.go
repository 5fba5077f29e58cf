// Package io reads and writes commit-log files.
//
// The checker itself is format-agnostic; this package is the collaborator
// that turns files into declaration sequences. Two encodings are supported:
//
// JSON - a single object with a "commits" array:
//
//	{
//	  "commits": [
//	    {"id": "root", "parents": []},
//	    {"id": "feat", "parents": ["root"]}
//	  ]
//	}
//
// NDJSON - one commit object per line, blank lines ignored:
//
//	{"id": "root", "parents": []}
//	{"id": "feat", "parents": ["root"]}
//
// Declarations are returned in file order with duplicates preserved, so
// last-write-wins override resolution happens downstream in
// [commit.History], exactly as for any other input source.
package io
