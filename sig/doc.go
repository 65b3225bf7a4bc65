/*
Package sig implements acquisition and extraction of YouTube player signature
and throttling-parameter deobfuscation routines.

The package fetches the current player release, locates the two obfuscation
functions embedded in it (the "sig" transform and the "nsig" transform) by
pattern matching against the player source, and exposes the result as a
single atomically-updated State.

# Architecture

1. Fetch layer (Fetcher)
  - Retrieves the landing page to discover the current player id.
  - Retrieves the player JavaScript itself.
  - Transparently decodes gzip/brotli response bodies.

2. Extraction layer (Extract)
  - Locates the nsig function name, array index and body via an ordered
    family of regular expressions, newest player shape first.
  - Locates the sig function name, body and helper object the same way.
  - Stitches the located fragments into two self-contained script programs.

3. State layer (State)
  - Holds the most recently extracted artifacts behind a single mutex.
  - Commits are all-or-nothing across the five content fields.

4. Update layer (Updater)
  - Orchestrates Fetch -> Extract -> Commit.
  - Deduplicates concurrent update requests against an unchanged player id.
  - Optionally delegates extraction entirely to an external helper process.

# Error handling

Extraction and fetch errors are returned as *Error values carrying a stable
Code, a human Message and optional Details, in the style used throughout
this module's supporting packages. PlayerAlreadyUpdated is not a failure; it
is returned to let a caller distinguish "no work was needed" from "it
worked".

# Limitations

Player shapes drift with every release; the regex families here reflect
shapes observed at the time this package was written and are expected to
need new entries over time. A miss on an optional step (e.g. no sig function
found) degrades to passthrough rather than failing the whole update.
*/
package sig
