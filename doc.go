// Package gtecetl converts tabular biomedical study metadata into
// linked DATS JSON documents and answers queries over them.
//
// # Pipeline
//
// The module is a two-stage pipeline with a serialized document as the
// interchange format between the stages:
//
//	┌──────────────────────────────┐
//	│        dats-convert          │  subject, sample, variable,
//	│  (bundle JSON → DATS JSON)   │  consent, and file extracts
//	└──────────────┬───────────────┘
//	               │ one self-contained document
//	               ↓
//	┌──────────────────────────────┐
//	│         dats-query           │  triple index, join chains,
//	│  (DATS JSON → TSV reports)   │  canned study reports
//	└──────────────────────────────┘
//
// The conversion side builds typed nodes in a store that deduplicates
// structurally identical nodes, then serializes the graph depth-first
// with exactly one full emission per node identity; later occurrences
// become references. Group members can optionally link back to their
// groups, which makes the document cyclic; references keep the
// serialization finite.
//
// The query side loads a document into an immutable triple index and
// evaluates typed join chains over it, plus a set of canned reports
// (child datasets, study variables, study group members, full dump).
//
// # Packages
//
// Core:
//   - dats: typed nodes, structural identity, the node store, and the
//     order-preserving document encoder and decoder
//   - graph: triple extraction and the subject/predicate index
//   - graph/query: the join chain engine and canned reports
//   - convert: tabular extracts to linked nodes
//   - vocabulary: the node types and property names of the documents
//
// Infrastructure:
//   - config: tool configuration with defaults and JSON overlay
//   - errors: structured error classification (invalid vs fatal)
//   - metric: Prometheus metrics
//   - testutil: shared graph fixtures for tests
//
// # Binaries
//
// Convert a study bundle and report on the result:
//
//	dats-convert --input=study_bundle.json --output=study.json --pretty
//	dats-query --dats-file=study.json --query=variables --dataset-id=phs000001.v1
package gtecetl
