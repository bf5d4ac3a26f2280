// Package patterns holds the rule tables used to read activity statements:
// ticket id patterns, duration patterns, the action verb to status table and
// the project indicator words.
//
// Rules are plain data and can be loaded from YAML. Compile validates and
// compiles them into an immutable Library which the extractor and the matcher
// share. A Library never changes after construction, so tests can substitute
// their own rule sets without touching package state.
//
// # Usage
//
//	lib, err := patterns.Compile(patterns.DefaultRules())
//	if err != nil {
//	    return err // malformed tables are a startup failure
//	}
//	id, ok := lib.FindTicket("Working on PROJ-456")
package patterns
