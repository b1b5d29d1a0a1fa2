// Package filter decides which articles make it into a digest and under which
// topic.
//
// The stages run in a fixed order:
//   - Deduplicate drops headlines that are near-duplicates of an earlier one.
//   - Classifier assigns every article to each topic whose keywords it contains.
//   - Scorer asks a completion service how relevant each (topic, article) pair
//     is and keeps the pairs at or above a threshold. Without a completion
//     service it passes everything through.
//   - Resolver keeps an article only in its most specific topic.
//
// Pipeline wires the stages together and caps every topic list.
package filter
