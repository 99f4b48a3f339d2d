// Package countries resolves ISO alpha-3 country codes against the REST
// Countries API, with an in-memory cache backed by a JSON file on disk so
// the API is hit at most once per deployment.
package countries
