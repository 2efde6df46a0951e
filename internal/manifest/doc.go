// Package manifest projects a dependency-ordered chunk sequence into the
// assets manifest: a singly-linked chain with one node per chunk.
//
// # Manifest Format
//
// Each node carries the chunk id, one array per configured extension with the
// chunk's files for that extension, and the next node (null on the last one):
//
//	{
//	  "id": "runtime",
//	  "js": ["/static/runtime.js"],
//	  "css": [],
//	  "next": {
//	    "id": "main",
//	    "js": ["/static/main.js"],
//	    "css": ["/static/main.css"],
//	    "next": null
//	  }
//	}
//
// # Usage
//
//	sorted, err := toposort.Sort(chunks)
//	if err != nil {
//	    return err
//	}
//	head := manifest.Project(sorted, manifest.Options{
//	    Extensions: []string{"js", "css"},
//	    BasePath:   "/static/",
//	})
//
// Project trusts its input order and never fails. A nil head means the
// compilation produced no chunks.
package manifest
