/*
Package flowchart renders visual-programming block graphs as indented text
flowcharts.

# Overview

A project is a list of block tuples. Each block has an id, a kind, optional
literal arguments and an ordered list of connection slots. The last slot
continues the main flow; the others are arguments or nested bodies whose
meaning depends on the kind. Graphs may contain cycles, shared children and
references to blocks that do not exist.

	[
	  [0, ["start", {"id": 1, "xcor": 0, "ycor": 0}], 100, 100, [null, 1, null]],
	  [1, "forward", 0, 0, [0, 2, null]],
	  [2, ["number", {"value": 100}], 0, 0, [1]]
	]

renders as

	Start of Project
	├── Start Block --> {ID: 1, Position: (0.00, 0.00), Heading: 0°, ...}
	│   ├── Move Forward → 100 Steps
	│

# Basic Usage

	lines, err := flowchart.ConvertJSON(projectJSON)
	if err != nil {
	    // not JSON at all
	}
	fmt.Println(flowchart.Text(lines))

Conversion never fails once the input is decoded. Input that is not a list,
or holds no usable blocks, yields a single diagnostic line. Unresolvable
operands render as "?" and a rule that fails renders
"Error processing {kind}: {message}" in place of the block.

# Traversal

The walk starts at the first "start" block (or the first block when there is
none). Argument slots are drawn one level deeper, the continuation slot at
the same level. Every block is drawn at most once, at its first encounter.
"vspace" and "hidden" blocks draw nothing and splice their children in
place; "number", "drumname" and "solfege" blocks only feed values to their
parents. Blocks the root walk never reached are drawn afterwards as orphan
trees, in input order. Conversion time is linear in the number of blocks.

# Customization

	conv := flowchart.New(
	    flowchart.WithNoiseLines(`├── Print: ""`),
	    flowchart.WithRule("settimbre", func(n *flowchart.Node) (*flowchart.Rendering, error) {
	        name, _ := n.Store.Text(n.Block.Slot(1))
	        return &flowchart.Rendering{Text: "Set Instrument → " + name}, nil
	    }),
	)

# Thread Safety

Converter is immutable after New and safe for concurrent use.
*/
package flowchart
