// Package content defines the site content configuration: hero and letter
// text, gate questions, memory timeline, highlight cards, playlist entries,
// and the seed data applied to an empty database on first start.
//
// Content is loaded once from an optional YAML file and never mutated at
// runtime.
package content
