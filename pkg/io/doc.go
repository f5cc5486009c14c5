// Package io reads and writes scene files.
//
// # JSON Format
//
// A scene file holds either a lone node or a list of nodes in the design
// tool's export shape:
//
//	[
//	  {
//	    "name": "1. Button",
//	    "type": "RECTANGLE",
//	    "node": {
//	      "color": {"r": 0, "g": 0, "b": 1},
//	      "position": {"x": 200, "y": 200},
//	      "width": 100,
//	      "height": 40
//	    }
//	  }
//	]
//
// Colors may also be written as hex strings ("#0000ff"). GROUP and FRAME
// nodes carry their children under node.children; every property the scene
// model does not know is kept verbatim, so import followed by export
// preserves the file's content.
//
// # Import
//
// Use [ImportJSON] to read a scene from a file path, or [ReadJSON] to read
// from any io.Reader:
//
//	s, err := io.ImportJSON("training.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Malformed files fail with MALFORMED_SCENE_SHAPE or MALFORMED_COLOR errors
// naming the offending path, for example "$[0].node.children[1].node.color".
//
// # Export
//
// Use [ExportJSON] to write a scene to a file, or [WriteJSON] to write to any
// io.Writer. Output is indented and uses RGB channel colors, matching what the
// design tool produces.
package io
