// Package core defines the shared domain records, chat context primitives and
// error taxonomy used across the frontdesk runtime. It has no knowledge of
// storage backends, model providers or the conversational loop; higher level
// packages (store, state, handoff, session) build on these types.
package core
